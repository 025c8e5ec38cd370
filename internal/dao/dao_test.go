package dao

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/fast-note-share-service/internal/domain"

	"github.com/google/uuid"
	"github.com/gookit/goutil/dump"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := NewDBEngineWithConfig(DatabaseConfig{Type: "sqlite", Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	d := New(db, true, zap.NewNop())
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func strPtr(s string) *string { return &s }

func newNote(uid int64, public bool, token, slug string) *domain.Note {
	n := &domain.Note{
		ID:       uuid.NewString(),
		UID:      uid,
		Title:    "T",
		Content:  "C",
		Language: "en",
		Sharing:  domain.SharingFrom(false, nil),
	}
	if public {
		n.Sharing = n.Sharing.Publish(token)
	}
	if slug != "" {
		n.CustomSlug = strPtr(slug)
	}
	return n
}

func TestNoteRepositoryCreateAndResolve(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDao(t))

	created, err := repo.Create(ctx, newNote(1, true, "tok-a", "my-note"))
	require.NoError(t, err)
	dump.P(created)

	got, err := repo.GetPublicByToken(ctx, "tok-a")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, domain.SharingPublished, got.Sharing.State())

	got, err = repo.GetPublicBySlug(ctx, "my-note")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.GetByID(ctx, created.ID, 2)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestNoteRepositoryUniqueIndexes(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDao(t))

	_, err := repo.Create(ctx, newNote(1, true, "tok-a", "taken"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newNote(2, true, "tok-b", "taken"))
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)

	_, err = repo.Create(ctx, newNote(2, true, "tok-a", ""))
	assert.ErrorIs(t, err, domain.ErrDuplicateShareToken)

	// NULL 不受唯一约束
	_, err = repo.Create(ctx, newNote(3, false, "", ""))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newNote(3, false, "", ""))
	require.NoError(t, err)
}

func TestNoteRepositoryUnpublishedNotResolvable(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDao(t))

	n, err := repo.Create(ctx, newNote(1, true, "tok-a", "slug-a"))
	require.NoError(t, err)

	n.Sharing = n.Sharing.Unpublish()
	n.CustomSlug = nil
	updated, err := repo.Update(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, domain.SharingUnpublished, updated.Sharing.State())
	assert.Equal(t, "tok-a", updated.Sharing.Token())
	assert.Nil(t, updated.CustomSlug)

	_, err = repo.GetPublicByToken(ctx, "tok-a")
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	_, err = repo.GetPublicBySlug(ctx, "slug-a")
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestNoteRepositoryUpdateMissing(t *testing.T) {
	repo := NewNoteRepository(newTestDao(t))
	_, err := repo.Update(context.Background(), newNote(1, false, "", ""))
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestNoteRepositorySoftDeleteReleasesSlug(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDao(t))

	n, err := repo.Create(ctx, newNote(1, true, "tok-a", "reuse-me"))
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(ctx, n.ID, 1))
	assert.ErrorIs(t, repo.SoftDelete(ctx, n.ID, 1), domain.ErrNoteNotFound)

	_, err = repo.GetByID(ctx, n.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	_, err = repo.GetPublicByToken(ctx, "tok-a")
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	_, err = repo.Create(ctx, newNote(2, true, "tok-b", "reuse-me"))
	require.NoError(t, err)

	removed, err := repo.DeletePhysicalByTime(ctx, time.Now().Add(time.Minute).UnixMilli())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestNoteRepositoryListAndViews(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDao(t))

	var ids []string
	for i := 0; i < 3; i++ {
		n := newNote(9, false, "", "")
		n.Title = []string{"alpha", "beta", "alphabet"}[i]
		created, err := repo.Create(ctx, n)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	_, err := repo.Create(ctx, newNote(10, false, "", ""))
	require.NoError(t, err)

	filter := domain.NoteListFilter{UID: 9, Keyword: "alpha", Page: 1, PageSize: 10}
	list, err := repo.List(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	count, err := repo.Count(ctx, domain.NoteListFilter{UID: 9})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, repo.IncrViewCount(ctx, map[string]int64{ids[0]: 3}))
	require.NoError(t, repo.IncrViewCount(ctx, map[string]int64{ids[0]: 2}))
	got, err := repo.GetByID(ctx, ids[0], 9)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ViewCount)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDao(t))

	u, err := repo.Create(ctx, &domain.User{Username: "alice", Email: "a@example.com", Password: "hash"})
	require.NoError(t, err)
	assert.NotZero(t, u.UID)

	_, err = repo.Create(ctx, &domain.User{Username: "alice", Email: "other@example.com", Password: "hash"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	_, err = repo.Create(ctx, &domain.User{Username: "bob", Email: "a@example.com", Password: "hash"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUserEmail)

	require.NoError(t, repo.UpdatePassword(ctx, "new-hash", u.UID))
	got, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.Password)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(newTestDao(t))

	mk := func(slug, lang string, published bool, tags ...string) *domain.Post {
		p, err := repo.Create(ctx, &domain.Post{
			ID: uuid.NewString(), UID: 1, Title: slug, Slug: slug,
			Language: lang, Tags: tags, IsPublished: published,
		})
		require.NoError(t, err)
		return p
	}
	first := mk("go-intro", "en", true, "go", "web")
	mk("go-db", "en", true, "go", "db")
	mk("draft", "en", false, "go")
	mk("zh-post", "zh", true, "go")

	_, err := repo.Create(ctx, &domain.Post{ID: uuid.NewString(), UID: 1, Title: "x", Slug: "go-intro", Language: "en"})
	assert.ErrorIs(t, err, domain.ErrDuplicatePostSlug)

	got, err := repo.GetBySlug(ctx, "go-intro")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, got.Tags)

	filter := domain.PostListFilter{PublishedOnly: true, Language: "en", Tag: "go", Page: 1, PageSize: 10}
	list, err := repo.List(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	published, err := repo.ListPublishedByLanguage(ctx, "en")
	require.NoError(t, err)
	assert.Len(t, published, 2)

	first.Title = "Go Intro"
	updated, err := repo.Update(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "Go Intro", updated.Title)

	require.NoError(t, repo.Delete(ctx, first.ID, 1))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID, 1), domain.ErrPostNotFound)
}
