package service

import (
	"FieldScribe/internal/analysis"
	"FieldScribe/internal/export"
	"FieldScribe/internal/model"
	"FieldScribe/internal/repo"
	"FieldScribe/internal/storage"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const goodPassword = "Passw0rd!"

// fakeRenderer запоминает последний вид и отдаёт заданный результат.
type fakeRenderer struct {
	mu        sync.Mutex
	err       error
	lastEntry export.EntryView
	lastSum   analysis.Summary
}

func (r *fakeRenderer) RenderEntry(v export.EntryView) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastEntry = v
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-entry"), nil
}

func (r *fakeRenderer) RenderAnalysis(s analysis.Summary, _ time.Time) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSum = s
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-analysis"), nil
}

type testEnv struct {
	db       *gorm.DB
	store    repo.Store
	blobs    *storage.MemoryStore
	renderer *fakeRenderer
	users    *UserService
	entries  *EntryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	logger := zap.NewNop().Sugar()
	store := repo.NewStore(db)
	blobs := storage.NewMemoryStore()
	renderer := &fakeRenderer{}
	return &testEnv{
		db:       db,
		store:    store,
		blobs:    blobs,
		renderer: renderer,
		users:    NewUserService(store, &BcryptHasher{Cost: bcrypt.MinCost}, blobs, logger),
		entries:  NewEntryService(store, blobs, renderer, EntryOptions{MaxUploadBytes: 1 << 10}, logger),
	}
}

func (e *testEnv) user(t *testing.T, name string, admin bool) *model.User {
	t.Helper()
	ctx := context.Background()
	u, err := e.users.Register(ctx, name, name+"@example.com", goodPassword)
	require.NoError(t, err)
	if admin {
		require.NoError(t, e.store.Users().SetAdmin(ctx, u.ID, true))
		u.IsAdmin = true
	}
	return u
}

func (e *testEnv) entry(t *testing.T, owner *model.User, title string, tags ...string) *model.Entry {
	t.Helper()
	got, err := e.entries.Create(context.Background(), owner, EntryInput{
		Project:     "Field",
		Title:       title,
		Observation: "observed",
		Tags:        tags,
	}, nil)
	require.NoError(t, err)
	return got
}

func png(name string) *Upload {
	return &Upload{Filename: name, Data: []byte("\x89PNG fake")}
}
