package handlers

import (
	"FieldScribe/internal/errs"
	"FieldScribe/internal/export"
	"FieldScribe/internal/model"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type shareResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// sharedEntry — публичный вид записи, без владельца и служебных полей.
type sharedEntry struct {
	ID          int64         `json:"id"`
	Project     string        `json:"project"`
	Title       string        `json:"title"`
	Location    string        `json:"location,omitempty"`
	Context     string        `json:"context,omitempty"`
	Observation string        `json:"observation"`
	Reflection  string        `json:"reflection,omitempty"`
	Tags        []string      `json:"tags"`
	Media       []model.Media `json:"media"`
	CreatedAt   string        `json:"created_at"`
}

// PublishShare выдаёт новую публичную ссылку. Прежняя перестаёт работать.
func (h *EntryHandler) PublishShare(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.target(w, r, "PublishShare")
	if !ok {
		return
	}
	token, err := h.Entries.PublishShare(r.Context(), user, id)
	if err != nil {
		writeError(w, h.Logger, "PublishShare", err)
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{Token: token, URL: h.Config.ShareURL(token)})
}

func (h *EntryHandler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.target(w, r, "RevokeShare")
	if !ok {
		return
	}
	if err := h.Entries.RevokeShare(r.Context(), user, id); err != nil {
		writeError(w, h.Logger, "RevokeShare", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Shared — просмотр записи по токену, без входа
func (h *EntryHandler) Shared(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Entries.GetByShareToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, h.Logger, "Shared", err)
		return
	}
	view := export.NewEntryView(entry, h.Config.Location)
	writeJSON(w, http.StatusOK, sharedEntry{
		ID:          entry.ID,
		Project:     entry.Project,
		Title:       entry.Title,
		Location:    entry.Location,
		Context:     entry.Context,
		Observation: entry.Observation,
		Reflection:  entry.Reflection,
		Tags:        view.Tags,
		Media:       entry.Media,
		CreatedAt:   view.Created,
	})
}

func (h *EntryHandler) ExportShared(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.Entries.ExportShared(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, h.Logger, "ExportShared", err)
		return
	}
	writePDF(w, "shared-entry.pdf", pdf)
}

func (h *EntryHandler) OpenSharedMedia(w http.ResponseWriter, r *http.Request) {
	mediaID, err := pathID(r, "mediaID", "media")
	if err != nil {
		writeError(w, h.Logger, "OpenSharedMedia", errs.NotFound("entry"))
		return
	}
	media, rc, err := h.Entries.OpenSharedMedia(r.Context(), chi.URLParam(r, "token"), mediaID)
	if err != nil {
		writeError(w, h.Logger, "OpenSharedMedia", err)
		return
	}
	h.stream(w, media, rc)
}
