package service

import (
	"FieldScribe/internal/analysis"
	"FieldScribe/internal/errs"
	"FieldScribe/internal/guard"
	"FieldScribe/internal/model"
	"FieldScribe/internal/repo"
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// DefaultAnalysisTimeout ограничивает один вызов анализатора.
const DefaultAnalysisTimeout = 60 * time.Second

// Analyzer — внешний сервис тематического анализа.
type Analyzer interface {
	Analyze(ctx context.Context, entries []analysis.EntryView) (*analysis.Summary, error)
}

// AnalysisRecord — сохранённый результат в виде для клиента.
type AnalysisRecord struct {
	ID        int64            `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Summary   analysis.Summary `json:"summary"`
}

// AnalysisService запускает анализ записей пользователя и хранит результаты.
type AnalysisService struct {
	store    repo.Store
	analyzer Analyzer
	renderer Renderer
	timeout  time.Duration
	logger   *zap.SugaredLogger
}

func NewAnalysisService(store repo.Store, analyzer Analyzer, renderer Renderer, timeout time.Duration, logger *zap.SugaredLogger) *AnalysisService {
	if timeout <= 0 {
		timeout = DefaultAnalysisTimeout
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AnalysisService{store: store, analyzer: analyzer, renderer: renderer, timeout: timeout, logger: logger}
}

// Analyze анализирует все записи пользователя. При сбое анализатора ничего не сохраняется.
func (s *AnalysisService) Analyze(ctx context.Context, requester *model.User) (*AnalysisRecord, error) {
	if requester == nil {
		return nil, errs.Auth("authentication required")
	}
	entries, err := s.store.Entries().ListAllByOwner(ctx, requester.ID)
	if err != nil {
		return nil, storeErr("load entries", err)
	}
	if len(entries) == 0 {
		return nil, errs.Validation("entries", "no entries to analyze yet")
	}
	views := make([]analysis.EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, analysis.EntryView{
			Title:       e.Title,
			Project:     e.Project,
			Location:    e.Location,
			Observation: e.Observation,
			Reflection:  e.Reflection,
			Tags:        e.TagNames(),
			CreatedAt:   e.CreatedAt,
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	summary, err := s.analyzer.Analyze(callCtx, views)
	if err != nil {
		analysisRunsTotal.WithLabelValues("failed").Inc()
		s.logger.Errorw("analysis failed", "user", requester.ID, "entries", len(views), "error", err)
		return nil, errs.External("analysis service", err)
	}

	content, err := json.Marshal(summary)
	if err != nil {
		return nil, errs.External("analysis service", err)
	}
	res, err := s.store.Analyses().Create(ctx, &model.AnalysisResult{UserID: requester.ID, Content: string(content)})
	if err != nil {
		return nil, storeErr("save analysis", err)
	}
	analysisRunsTotal.WithLabelValues("ok").Inc()
	return &AnalysisRecord{ID: res.ID, CreatedAt: res.CreatedAt, Summary: *summary}, nil
}

func (s *AnalysisService) List(ctx context.Context, requester *model.User) ([]AnalysisRecord, error) {
	if requester == nil {
		return nil, errs.Auth("authentication required")
	}
	results, err := s.store.Analyses().ListByUser(ctx, requester.ID)
	if err != nil {
		return nil, storeErr("list analyses", err)
	}
	out := make([]AnalysisRecord, 0, len(results))
	for i := range results {
		rec, err := decodeRecord(&results[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// Get — результат доступен владельцу и администратору.
func (s *AnalysisService) Get(ctx context.Context, requester *model.User, id int64) (*AnalysisRecord, error) {
	if requester == nil {
		return nil, errs.Auth("authentication required")
	}
	res, err := s.store.Analyses().GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("analysis", "load analysis", err)
	}
	if err := guard.CanAccess(requester, res.UserID).Err(); err != nil {
		return nil, err
	}
	return decodeRecord(res)
}

// ExportLatest — PDF последнего результата пользователя.
func (s *AnalysisService) ExportLatest(ctx context.Context, requester *model.User) ([]byte, error) {
	if requester == nil {
		return nil, errs.Auth("authentication required")
	}
	res, err := s.store.Analyses().Latest(ctx, requester.ID)
	if err != nil {
		return nil, lookupErr("analysis", "load analysis", err)
	}
	rec, err := decodeRecord(res)
	if err != nil {
		return nil, err
	}
	out, err := s.renderer.RenderAnalysis(rec.Summary, rec.CreatedAt)
	if err != nil {
		return nil, errs.External("pdf renderer", err)
	}
	return out, nil
}

func decodeRecord(res *model.AnalysisResult) (*AnalysisRecord, error) {
	rec := &AnalysisRecord{ID: res.ID, CreatedAt: res.CreatedAt}
	if err := json.Unmarshal([]byte(res.Content), &rec.Summary); err != nil {
		return nil, errs.Persistence("decode analysis", err)
	}
	return rec, nil
}
