package handlers

import (
	"FieldScribe/internal/guard"
	"FieldScribe/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// AdminHandler — управление пользователями и модерация записей.
type AdminHandler struct {
	Users   *service.UserService
	Entries *service.EntryService
	Logger  *zap.SugaredLogger
}

func NewAdminHandler(users *service.UserService, entries *service.EntryService, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{Users: users, Entries: entries, Logger: logger}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "ListUsers", err)
		return
	}
	users, err := h.Users.ListUsers(r.Context(), actor)
	if err != nil {
		writeError(w, h.Logger, "ListUsers", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateAdmin заводит нового администратора
func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "CreateAdmin", err)
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, "CreateAdmin", err)
		return
	}
	user, err := h.Users.CreateAdmin(r.Context(), actor, req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, h.Logger, "CreateAdmin", err)
		return
	}
	h.Logger.Infow("CreateAdmin: admin created", "actor_id", actor.ID, "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

func (h *AdminHandler) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "ToggleAdmin", err)
		return
	}
	targetID, err := pathID(r, "id", "user")
	if err != nil {
		writeError(w, h.Logger, "ToggleAdmin", err)
		return
	}
	user, err := h.Users.ToggleAdmin(r.Context(), actor, targetID)
	if err != nil {
		writeError(w, h.Logger, "ToggleAdmin", err)
		return
	}
	h.Logger.Infow("ToggleAdmin: rights changed", "actor_id", actor.ID, "user_id", user.ID, "is_admin", user.IsAdmin)
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser удаляет пользователя вместе с его записями
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "DeleteUser", err)
		return
	}
	targetID, err := pathID(r, "id", "user")
	if err != nil {
		writeError(w, h.Logger, "DeleteUser", err)
		return
	}
	if err := h.Users.DeleteUser(r.Context(), actor, targetID); err != nil {
		writeError(w, h.Logger, "DeleteUser", err)
		return
	}
	h.Logger.Infow("DeleteUser: user deleted", "actor_id", actor.ID, "user_id", targetID)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEntry — удаление чужой записи администратором
func (h *AdminHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "AdminDeleteEntry", err)
		return
	}
	if err := guard.CanAdminister(actor).Err(); err != nil {
		writeError(w, h.Logger, "AdminDeleteEntry", err)
		return
	}
	id, err := pathID(r, "id", "entry")
	if err != nil {
		writeError(w, h.Logger, "AdminDeleteEntry", err)
		return
	}
	if err := h.Entries.Delete(r.Context(), actor, id); err != nil {
		writeError(w, h.Logger, "AdminDeleteEntry", err)
		return
	}
	h.Logger.Infow("AdminDeleteEntry: entry deleted", "actor_id", actor.ID, "entry_id", id)
	w.WriteHeader(http.StatusNoContent)
}
