package handlers

import (
	"FieldScribe/internal/config"
	"FieldScribe/internal/errs"
	"FieldScribe/internal/middleware"
	"FieldScribe/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler — регистрация, вход и профиль.
type UserHandler struct {
	Service *service.UserService
	Logger  *zap.SugaredLogger
	Config  *config.Config
}

// NewUserHandler создаёт хендлер пользователей
func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{Service: userService, Logger: logger, Config: cfg}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type passwordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Register создаёт пользователя и сразу выдаёт cookie
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, "Register", err)
		return
	}
	user, err := h.Service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, h.Logger, "Register", err)
		return
	}
	if err := middleware.SetLoginCookie(w, user.ID, h.Config.AuthSecret); err != nil {
		writeError(w, h.Logger, "Register", errs.External("token signer", err))
		return
	}
	h.Logger.Infow("Register: user created", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

// Login проверяет пароль и выдаёт cookie
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, "Login", err)
		return
	}
	user, err := h.Service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.Logger.Warnw("Login: failed", "username", req.Username, "error", err)
		writeError(w, h.Logger, "Login", err)
		return
	}
	if err := middleware.SetLoginCookie(w, user.ID, h.Config.AuthSecret); err != nil {
		writeError(w, h.Logger, "Login", errs.External("token signer", err))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout стирает cookie. Работает и для анонимного запроса.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearLoginCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me возвращает текущего пользователя
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.Service)
	if err != nil {
		writeError(w, h.Logger, "Me", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ChangePassword меняет пароль текущего пользователя
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.Service)
	if err != nil {
		writeError(w, h.Logger, "ChangePassword", err)
		return
	}
	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, "ChangePassword", err)
		return
	}
	if err := h.Service.ChangePassword(r.Context(), user, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, h.Logger, "ChangePassword", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
