package handlers

import (
	"FieldScribe/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// AnalysisHandler — тематический анализ записей.
type AnalysisHandler struct {
	Analyses *service.AnalysisService
	Users    *service.UserService
	Logger   *zap.SugaredLogger
}

func NewAnalysisHandler(analyses *service.AnalysisService, users *service.UserService, logger *zap.SugaredLogger) *AnalysisHandler {
	return &AnalysisHandler{Analyses: analyses, Users: users, Logger: logger}
}

// Analyze запускает анализ по всем записям пользователя
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "Analyze", err)
		return
	}
	rec, err := h.Analyses.Analyze(r.Context(), user)
	if err != nil {
		writeError(w, h.Logger, "Analyze", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *AnalysisHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "ListAnalyses", err)
		return
	}
	recs, err := h.Analyses.List(r.Context(), user)
	if err != nil {
		writeError(w, h.Logger, "ListAnalyses", err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "GetAnalysis", err)
		return
	}
	id, err := pathID(r, "id", "analysis")
	if err != nil {
		writeError(w, h.Logger, "GetAnalysis", err)
		return
	}
	rec, err := h.Analyses.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, h.Logger, "GetAnalysis", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Export отдаёт последний результат анализа в PDF
func (h *AnalysisHandler) Export(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "ExportAnalysis", err)
		return
	}
	pdf, err := h.Analyses.ExportLatest(r.Context(), user)
	if err != nil {
		writeError(w, h.Logger, "ExportAnalysis", err)
		return
	}
	writePDF(w, "analysis.pdf", pdf)
}
