package handlers

import (
	"FieldScribe/internal/errs"
	"FieldScribe/internal/middleware"
	"FieldScribe/internal/model"
	"FieldScribe/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// errorResponse — тело ответа с ошибкой.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindAuth:
		return http.StatusUnauthorized
	case errs.KindExternal:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError отвечает клиенту по виду ошибки. Полный текст остаётся только в логе.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	kind := errs.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		logger.Errorw(op+": service error", "kind", kind.String(), "error", err)
	} else {
		logger.Debugw(op+": rejected", "kind", kind.String(), "error", err)
	}
	msg, field := errs.Public(err)
	writeJSON(w, status, errorResponse{Error: msg, Field: field})
}

// decodeJSON читает тело запроса; пустое или битое тело — ошибка валидации.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return errs.Validation("", "request body too large")
		}
		return errs.Validation("", "invalid request body")
	}
	return nil
}

// pathID разбирает числовой параметр маршрута. Нечисловой идентификатор не может существовать.
func pathID(r *http.Request, name, resource string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NotFound(resource)
	}
	return id, nil
}

// queryInt возвращает fallback для пустого или нечислового значения.
func queryInt(r *http.Request, name string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return fallback
	}
	return n
}

// currentUser загружает пользователя из cookie. Удалённый пользователь с живой cookie получает 401.
func currentUser(r *http.Request, users *service.UserService) (*model.User, error) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return nil, errs.Auth("authentication required")
	}
	return users.Principal(r.Context(), uid)
}
