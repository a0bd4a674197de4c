package repo

import (
	"FieldScribe/internal/model"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mustUser(t *testing.T, s Store, name string) *model.User {
	t.Helper()
	u, err := s.Users().CreateUser(context.Background(), &model.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return u
}

func mustEntry(t *testing.T, s Store, owner int64, title string) *model.Entry {
	t.Helper()
	e, err := s.Entries().Create(context.Background(), &model.Entry{
		UserID:      owner,
		Project:     "p",
		Title:       title,
		Observation: "o",
	})
	require.NoError(t, err)
	return e
}

func TestDialectorSelection(t *testing.T) {
	assert.True(t, isPostgresDSN("postgres://u:p@localhost/db"))
	assert.True(t, isPostgresDSN("postgresql://localhost/db"))
	assert.True(t, isPostgresDSN("host=localhost user=u dbname=db"))
	assert.False(t, isPostgresDSN("fieldscribe.db"))
	assert.False(t, isPostgresDSN("file:x?mode=memory"))

	assert.Equal(t, "file:a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", withSQLitePragmas("a.db"))
	assert.Equal(t, "file:x?mode=memory&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", withSQLitePragmas("file:x?mode=memory"))
	assert.Equal(t, "file:x?_pragma=foreign_keys(0)", withSQLitePragmas("file:x?_pragma=foreign_keys(0)"))
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newTestDB(t))
	users := s.Users()

	alice := mustUser(t, s, "alice")
	assert.NotZero(t, alice.ID)

	_, err := users.CreateUser(ctx, &model.User{Username: "alice", Email: "other@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = users.CreateUser(ctx, &model.User{Username: "bob", Email: "alice@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = users.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, IsNotFound(err))

	n, err := users.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, users.SetAdmin(ctx, alice.ID, true))
	n, err = users.CountAdmins(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, users.UpdatePassword(ctx, alice.ID, "new-hash"))
	got, err = users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.True(t, got.IsAdmin)

	assert.True(t, IsNotFound(users.SetAdmin(ctx, 999, true)))

	require.NoError(t, users.Delete(ctx, alice.ID))
	assert.True(t, IsNotFound(users.Delete(ctx, alice.ID)))
}

func TestTagRepository_CreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tags := NewStore(newTestDB(t)).Tags()

	first, err := tags.Create(ctx, "work")
	require.NoError(t, err)
	second, err := tags.Create(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// регистр имеет значение
	upper, err := tags.Create(ctx, "Work")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, upper.ID)

	_, err = tags.FindByName(ctx, "missing")
	assert.True(t, IsNotFound(err))

	list, err := tags.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestEntryRepository_TagsAndShare(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newTestDB(t))
	u := mustUser(t, s, "alice")
	e := mustEntry(t, s, u.ID, "first")

	zeta, err := s.Tags().Create(ctx, "zeta")
	require.NoError(t, err)
	alpha, err := s.Tags().Create(ctx, "alpha")
	require.NoError(t, err)
	require.NoError(t, s.Entries().AttachTag(ctx, e.ID, zeta.ID))
	require.NoError(t, s.Entries().AttachTag(ctx, e.ID, alpha.ID))
	assert.ErrorIs(t, s.Entries().AttachTag(ctx, e.ID, alpha.ID), ErrDuplicate)

	got, err := s.Entries().GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, got.TagNames())
	assert.False(t, got.Shared())

	require.NoError(t, s.Entries().DetachTag(ctx, e.ID, zeta.ID))
	got, err = s.Entries().GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, got.TagNames())

	token := "tok"
	require.NoError(t, s.Entries().SetShareToken(ctx, e.ID, &token))
	shared, err := s.Entries().GetByShareToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, e.ID, shared.ID)

	other := mustEntry(t, s, u.ID, "second")
	assert.ErrorIs(t, s.Entries().SetShareToken(ctx, other.ID, &token), ErrDuplicate)

	require.NoError(t, s.Entries().SetShareToken(ctx, e.ID, nil))
	_, err = s.Entries().GetByShareToken(ctx, "tok")
	assert.True(t, IsNotFound(err))
	_, err = s.Entries().GetByShareToken(ctx, "")
	assert.True(t, IsNotFound(err))
}

func TestEntryRepository_ListByOwner(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newTestDB(t))
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, mustEntry(t, s, alice.ID, "a").ID)
	}
	mustEntry(t, s, bob.ID, "b")

	page, total, err := s.Entries().ListByOwner(ctx, alice.ID, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[4], page[0].ID)
	assert.Equal(t, ids[3], page[1].ID)

	page, _, err = s.Entries().ListByOwner(ctx, alice.ID, 4, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[0], page[0].ID)

	all, err := s.Entries().ListAllByOwner(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, bob.ID, all[0].UserID)

	owned, err := s.Entries().IDsByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, owned)
}

func TestEntryRepository_DeleteKeepsTags(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newTestDB(t))
	u := mustUser(t, s, "alice")
	e1 := mustEntry(t, s, u.ID, "one")
	e2 := mustEntry(t, s, u.ID, "two")
	tag, err := s.Tags().Create(ctx, "shared")
	require.NoError(t, err)
	require.NoError(t, s.Entries().AttachTag(ctx, e1.ID, tag.ID))
	require.NoError(t, s.Entries().AttachTag(ctx, e2.ID, tag.ID))

	_, err = s.Media().Create(ctx, &model.Media{EntryID: e1.ID, Filename: "a.png", MediaType: "image/png"})
	require.NoError(t, err)

	err = s.Transaction(ctx, func(tx Store) error {
		if err := tx.Media().DeleteByEntry(ctx, e1.ID); err != nil {
			return err
		}
		return tx.Entries().Delete(ctx, e1.ID)
	})
	require.NoError(t, err)

	_, err = s.Entries().GetByID(ctx, e1.ID)
	assert.True(t, IsNotFound(err))
	media, err := s.Media().ListByEntry(ctx, e1.ID)
	require.NoError(t, err)
	assert.Empty(t, media)

	got, err := s.Entries().GetByID(ctx, e2.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, got.TagNames())
	_, err = s.Tags().FindByName(ctx, "shared")
	assert.NoError(t, err)
}

func TestStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newTestDB(t))
	u := mustUser(t, s, "alice")

	err := s.Transaction(ctx, func(tx Store) error {
		e := mustEntry(t, tx, u.ID, "doomed")
		_, err := tx.Media().Create(ctx, &model.Media{EntryID: e.ID, Filename: "x.png", MediaType: "image/png"})
		require.NoError(t, err)
		_, err = tx.Media().Create(ctx, &model.Media{EntryID: e.ID, Filename: "x.png", MediaType: "image/png"})
		return err
	})
	require.ErrorIs(t, err, ErrDuplicate)

	list, _, err := s.Entries().ListByOwner(ctx, u.ID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAnalysisRepository(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newTestDB(t))
	u := mustUser(t, s, "alice")

	_, err := s.Analyses().Latest(ctx, u.ID)
	assert.True(t, IsNotFound(err))

	first, err := s.Analyses().Create(ctx, &model.AnalysisResult{UserID: u.ID, Content: `{"summary":"a"}`})
	require.NoError(t, err)
	second, err := s.Analyses().Create(ctx, &model.AnalysisResult{UserID: u.ID, Content: `{"summary":"b"}`})
	require.NoError(t, err)

	latest, err := s.Analyses().Latest(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	list, err := s.Analyses().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[1].ID)

	require.NoError(t, s.Analyses().DeleteByUser(ctx, u.ID))
	list, err = s.Analyses().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGormLogger_SkipsRecordNotFound(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	db, err := Open("file:"+uuid.NewString()+"?mode=memory&cache=shared", NewGormLogger(zap.New(core)))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	logs.TakeAll()
	s := NewStore(db)
	ctx := context.Background()

	_, err = s.Tags().FindByName(ctx, "missing")
	assert.True(t, IsNotFound(err))
	_, err = s.Users().GetByUsername(ctx, "nobody")
	assert.True(t, IsNotFound(err))
	assert.Zero(t, logs.Len())

	// настоящие ошибки запросов по-прежнему попадают в лог
	assert.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	assert.Equal(t, 1, logs.FilterMessageSnippet("no_such_table").Len())
}
