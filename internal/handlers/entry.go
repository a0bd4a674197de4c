package handlers

import (
	"FieldScribe/internal/config"
	"FieldScribe/internal/errs"
	"FieldScribe/internal/model"
	"FieldScribe/internal/service"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// EntryHandler — записи, вложения и экспорт.
type EntryHandler struct {
	Entries *service.EntryService
	Users   *service.UserService
	Logger  *zap.SugaredLogger
	Config  *config.Config
}

// NewEntryHandler создаёт хендлер записей
func NewEntryHandler(entries *service.EntryService, users *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *EntryHandler {
	return &EntryHandler{Entries: entries, Users: users, Logger: logger, Config: cfg}
}

// entryResponse — запись для владельца: с признаком и адресом публичной ссылки.
type entryResponse struct {
	*model.Entry
	Shared   bool   `json:"shared"`
	ShareURL string `json:"share_url,omitempty"`
}

type entryPageResponse struct {
	Entries  []entryResponse `json:"entries"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Total    int64           `json:"total"`
}

func (h *EntryHandler) view(e *model.Entry) entryResponse {
	resp := entryResponse{Entry: e, Shared: e.Shared()}
	if resp.Shared {
		resp.ShareURL = h.Config.ShareURL(*e.ShareToken)
	}
	return resp
}

// readEntry разбирает JSON или multipart/form-data. В multipart теги приходят строкой через запятую,
// файл — в поле file.
func (h *EntryHandler) readEntry(w http.ResponseWriter, r *http.Request) (service.EntryInput, *service.Upload, error) {
	var in service.EntryInput
	if !isMultipart(r) {
		return in, nil, decodeJSON(r, &in)
	}
	up, err := h.readMultipart(w, r)
	if err != nil {
		return in, nil, err
	}
	in = service.EntryInput{
		Project:     r.FormValue("project"),
		Title:       r.FormValue("title"),
		Location:    r.FormValue("location"),
		Context:     r.FormValue("context"),
		Observation: r.FormValue("observation"),
		Reflection:  r.FormValue("reflection"),
		Tags:        service.SplitTags(r.FormValue("tags")),
	}
	return in, up, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// readMultipart возвращает nil, если файла в форме нет.
func (h *EntryHandler) readMultipart(w http.ResponseWriter, r *http.Request) (*service.Upload, error) {
	limit := h.Config.MediaMaxBytes()
	// Лимит общего тела запроса: файл плюс текстовые поля
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, errs.Validation("file", fmt.Sprintf("file exceeds the upload limit of %d bytes", limit))
		}
		h.Logger.Warnw("readMultipart: invalid multipart form", "error", err)
		return nil, errs.Validation("", "invalid multipart form")
	}
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Validation("file", "invalid file")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		h.Logger.Warnw("readMultipart: failed to read file", "error", err)
		return nil, errs.Validation("file", "failed to read file")
	}
	return &service.Upload{Filename: header.Filename, Data: data}, nil
}

// List — страница записей текущего пользователя
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "ListEntries", err)
		return
	}
	page, err := h.Entries.List(r.Context(), user, queryInt(r, "page", 1), queryInt(r, "page_size", service.DefaultPageSize))
	if err != nil {
		writeError(w, h.Logger, "ListEntries", err)
		return
	}
	resp := entryPageResponse{
		Entries:  make([]entryResponse, 0, len(page.Entries)),
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	}
	for i := range page.Entries {
		resp.Entries = append(resp.Entries, h.view(&page.Entries[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "CreateEntry", err)
		return
	}
	in, up, err := h.readEntry(w, r)
	if err != nil {
		writeError(w, h.Logger, "CreateEntry", err)
		return
	}
	entry, err := h.Entries.Create(r.Context(), user, in, up)
	if err != nil {
		writeError(w, h.Logger, "CreateEntry", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(entry))
}

func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.target(w, r, "GetEntry")
	if !ok {
		return
	}
	entry, err := h.Entries.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, h.Logger, "GetEntry", err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(entry))
}

// Update заменяет поля и набор тегов целиком
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.target(w, r, "UpdateEntry")
	if !ok {
		return
	}
	in, up, err := h.readEntry(w, r)
	if err != nil {
		writeError(w, h.Logger, "UpdateEntry", err)
		return
	}
	entry, err := h.Entries.Update(r.Context(), user, id, in, up)
	if err != nil {
		writeError(w, h.Logger, "UpdateEntry", err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(entry))
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.target(w, r, "DeleteEntry")
	if !ok {
		return
	}
	if err := h.Entries.Delete(r.Context(), user, id); err != nil {
		writeError(w, h.Logger, "DeleteEntry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttachMedia загружает новое вложение вместо текущего
func (h *EntryHandler) AttachMedia(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.target(w, r, "AttachMedia")
	if !ok {
		return
	}
	if !isMultipart(r) {
		writeError(w, h.Logger, "AttachMedia", errs.Validation("file", "no file selected"))
		return
	}
	up, err := h.readMultipart(w, r)
	if err == nil && up == nil {
		err = errs.Validation("file", "no file selected")
	}
	if err != nil {
		writeError(w, h.Logger, "AttachMedia", err)
		return
	}
	entry, err := h.Entries.AttachMedia(r.Context(), user, id, up)
	if err != nil {
		writeError(w, h.Logger, "AttachMedia", err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(entry))
}

func (h *EntryHandler) OpenMedia(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.target(w, r, "OpenMedia")
	if !ok {
		return
	}
	mediaID, err := pathID(r, "mediaID", "media")
	if err != nil {
		writeError(w, h.Logger, "OpenMedia", err)
		return
	}
	media, rc, err := h.Entries.OpenMedia(r.Context(), user, id, mediaID)
	if err != nil {
		writeError(w, h.Logger, "OpenMedia", err)
		return
	}
	h.stream(w, media, rc)
}

func (h *EntryHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "DeleteMedia", err)
		return
	}
	mediaID, err := pathID(r, "mediaID", "media")
	if err != nil {
		writeError(w, h.Logger, "DeleteMedia", err)
		return
	}
	if err := h.Entries.DeleteMedia(r.Context(), user, mediaID); err != nil {
		writeError(w, h.Logger, "DeleteMedia", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export отдаёт запись в PDF
func (h *EntryHandler) Export(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.target(w, r, "ExportEntry")
	if !ok {
		return
	}
	pdf, err := h.Entries.Export(r.Context(), user, id)
	if err != nil {
		writeError(w, h.Logger, "ExportEntry", err)
		return
	}
	writePDF(w, "entry-"+strconv.FormatInt(id, 10)+".pdf", pdf)
}

// target загружает пользователя и идентификатор записи из маршрута.
func (h *EntryHandler) target(w http.ResponseWriter, r *http.Request, op string) (*model.User, int64, bool) {
	user, err := currentUser(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, op, err)
		return nil, 0, false
	}
	id, err := pathID(r, "id", "entry")
	if err != nil {
		writeError(w, h.Logger, op, err)
		return nil, 0, false
	}
	return user, id, true
}

func (h *EntryHandler) stream(w http.ResponseWriter, media *model.Media, rc io.ReadCloser) {
	defer rc.Close()
	w.Header().Set("Content-Type", media.MediaType)
	if media.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(media.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Warnw("stream: copy interrupted", "media_id", media.ID, "error", err)
	}
}

func writePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
