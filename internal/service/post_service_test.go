package service

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/fast-note-share-service/internal/dao"
	"github.com/haierkeys/fast-note-share-service/internal/dto"
	"github.com/haierkeys/fast-note-share-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPostService(t *testing.T) PostService {
	t.Helper()
	return NewPostService(dao.NewPostRepository(newTestDao(t)), zap.NewNop())
}

func postReq(slug, lang string, published bool, tags ...string) *dto.PostCreateRequest {
	return &dto.PostCreateRequest{
		Title: "Post " + slug, Slug: slug, Summary: "s", Content: "content of " + slug,
		Language: lang, Tags: tags, IsPublished: published,
	}
}

func TestPostCreateAndOwnership(t *testing.T) {
	ctx := context.Background()
	svc := newPostService(t)

	post, err := svc.Create(ctx, 1, postReq("hello", "en", false, "Go", "go", " web "))
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, post.Tags)

	_, err = svc.Create(ctx, 2, postReq("hello", "en", true))
	assert.ErrorIs(t, err, code.ErrorPostSlugConflict)

	// 草稿仅作者可见
	_, err = svc.Get(ctx, 0, "hello")
	assert.ErrorIs(t, err, code.ErrorPostNotFound)
	_, err = svc.Get(ctx, 2, "hello")
	assert.ErrorIs(t, err, code.ErrorPostNotFound)
	got, err := svc.Get(ctx, 1, "hello")
	require.NoError(t, err)
	assert.Equal(t, "content of hello", got.Content)

	_, err = svc.Update(ctx, 2, &dto.PostUpdateRequest{ID: post.ID, PostCreateRequest: *postReq("hello", "en", true)})
	assert.ErrorIs(t, err, code.ErrorPostNotFound)
	updated, err := svc.Update(ctx, 1, &dto.PostUpdateRequest{ID: post.ID, PostCreateRequest: *postReq("hello", "en", true)})
	require.NoError(t, err)
	assert.True(t, updated.IsPublished)

	_, err = svc.Get(ctx, 0, "hello")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, 2, post.ID), code.ErrorPostNotFound)
	require.NoError(t, svc.Delete(ctx, 1, post.ID))
	_, err = svc.Get(ctx, 1, "hello")
	assert.ErrorIs(t, err, code.ErrorPostNotFound)
}

func TestPostValidation(t *testing.T) {
	svc := newPostService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &dto.PostCreateRequest{Title: " ", Slug: "a", Language: "en"})
	assert.ErrorIs(t, err, code.ErrorPostTitleEmpty)
	_, err = svc.Create(ctx, 1, &dto.PostCreateRequest{Title: "t", Slug: "a b", Language: "en"})
	assert.ErrorIs(t, err, code.ErrorPostSlugInvalid)
	_, err = svc.Create(ctx, 1, &dto.PostCreateRequest{Title: "t", Slug: "ab", Language: "xx"})
	assert.ErrorIs(t, err, code.ErrorNoteLanguageInvalid)
}

func TestPostListPublishedOnly(t *testing.T) {
	ctx := context.Background()
	svc := newPostService(t)

	for _, r := range []*dto.PostCreateRequest{
		postReq("a", "en", true, "go"),
		postReq("b", "en", false, "go"),
		postReq("c", "zh", true, "go", "db"),
	} {
		_, err := svc.Create(ctx, 1, r)
		require.NoError(t, err)
	}

	list, total, err := svc.List(ctx, &dto.PostListRequest{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, p := range list {
		assert.Empty(t, p.Content)
	}

	list, total, err = svc.List(ctx, &dto.PostListRequest{Language: "zh-CN"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "c", list[0].Slug)

	_, total, err = svc.List(ctx, &dto.PostListRequest{Tag: "DB"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestPostRelated(t *testing.T) {
	ctx := context.Background()
	svc := newPostService(t)

	create := func(r *dto.PostCreateRequest) {
		_, err := svc.Create(ctx, 1, r)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}
	create(postReq("base", "en", true, "go", "web", "db"))
	create(postReq("one-tag", "en", true, "go"))
	create(postReq("two-tags", "en", true, "go", "web"))
	create(postReq("newer-one-tag", "en", true, "db"))
	create(postReq("no-overlap", "en", true, "rust"))
	create(postReq("draft", "en", false, "go", "web", "db"))
	create(postReq("other-lang", "zh", true, "go", "web", "db"))

	related, err := svc.Related(ctx, "base", 0)
	require.NoError(t, err)

	slugs := make([]string, 0, len(related))
	for _, p := range related {
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"two-tags", "newer-one-tag", "one-tag"}, slugs)

	related, err = svc.Related(ctx, "base", 1)
	require.NoError(t, err)
	assert.Len(t, related, 1)

	_, err = svc.Related(ctx, "draft", 5)
	assert.ErrorIs(t, err, code.ErrorPostNotFound)
}
