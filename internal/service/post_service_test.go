package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Lingo_Community/internal/pkg"
)

func TestCreatePostRequiresMembership(t *testing.T) {
	db, _, founder, c := newCommunityFixture(t)
	ctx := context.Background()
	posts := NewPostService(db)
	v := seedUser(t, db, "user_v", "user")

	if _, err := posts.CreatePost(ctx, v.ID, CreatePostInput{CommunityID: c.ID, Title: "hi"}); !errors.Is(err, pkg.ErrForbidden) {
		t.Fatalf("non-member post: expected forbidden, got %v", err)
	}
	if _, err := posts.CreatePost(ctx, founder.ID, CreatePostInput{CommunityID: c.ID, Title: " "}); !errors.Is(err, pkg.ErrValidation) {
		t.Fatalf("empty title: expected validation, got %v", err)
	}
	p, err := posts.CreatePost(ctx, founder.ID, CreatePostInput{CommunityID: c.ID, Title: "welcome", Category: "general"})
	if err != nil {
		t.Fatalf("member post: %v", err)
	}
	if p.CommunityID == nil || *p.CommunityID != c.ID {
		t.Fatalf("community id %v", p.CommunityID)
	}

	list, err := posts.List(ctx, c.ID, "general", 1, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("list %+v err=%v", list, err)
	}
	list, err = posts.List(ctx, c.ID, "grammar", 1, 10)
	if err != nil || len(list) != 0 {
		t.Fatalf("category filter %+v err=%v", list, err)
	}

	got, err := posts.Get(ctx, p.ID)
	if err != nil || got.ViewCount != 1 {
		t.Fatalf("get %+v err=%v", got, err)
	}
	if _, err = posts.Get(ctx, 999); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("missing post: expected not found, got %v", err)
	}
}

func TestDeletePostAuthorOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	posts := NewPostService(db)
	author := seedUser(t, db, "author", "user")
	v := seedUser(t, db, "user_v", "user")
	p := seedPost(t, db, author.ID, "mine")

	if err := posts.DeletePost(ctx, v.ID, p.ID); !errors.Is(err, pkg.ErrForbidden) {
		t.Fatalf("stranger delete: expected forbidden, got %v", err)
	}
	if err := posts.DeletePost(ctx, author.ID, p.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if err := posts.DeletePost(ctx, author.ID, p.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
	if _, err := posts.AddComment(ctx, v.ID, p.ID, "late"); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("comment on deleted post: expected not found, got %v", err)
	}
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	posts := NewPostService(db)
	author := seedUser(t, db, "author", "user")
	v := seedUser(t, db, "user_v", "user")
	p := seedPost(t, db, author.ID, "draft")

	title, content, category := "final", "edited body", "grammar"
	blank := "  "
	cases := []struct {
		name   string
		userID uint64
		postID uint64
		in     UpdatePostInput
		want   error
	}{
		{"nothing to update", author.ID, p.ID, UpdatePostInput{}, pkg.ErrValidation},
		{"blank title", author.ID, p.ID, UpdatePostInput{Title: &blank}, pkg.ErrValidation},
		{"missing post", author.ID, 999, UpdatePostInput{Title: &title}, pkg.ErrNotFound},
		{"stranger", v.ID, p.ID, UpdatePostInput{Title: &title}, pkg.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := posts.UpdatePost(ctx, tc.userID, tc.postID, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if got := loadPost(t, db, p.ID); got.Title != "draft" || got.Content != "body" {
		t.Fatalf("rejected updates changed the post: %+v", got)
	}

	got, err := posts.UpdatePost(ctx, author.ID, p.ID, UpdatePostInput{Title: &title, Category: &category})
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if got.Title != "final" || got.Category != "grammar" || got.Content != "body" {
		t.Fatalf("partial update %+v", got)
	}
	if got, err = posts.UpdatePost(ctx, author.ID, p.ID, UpdatePostInput{Content: &content}); err != nil || got.Content != "edited body" || got.Title != "final" {
		t.Fatalf("content update %+v err=%v", got, err)
	}
	if got.Author == nil || got.Author.Username != "author" {
		t.Fatalf("author view %+v", got.Author)
	}
}

type fakeLikeCache struct {
	mu     sync.Mutex
	counts map[uint64]int64
}

func (f *fakeLikeCache) GetLikeCountCached(_ context.Context, postID uint64) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.counts[postID]
	return v, ok, nil
}

func (f *fakeLikeCache) SetLikeCount(_ context.Context, postID uint64, cnt int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[postID] = cnt
	return nil
}

func (f *fakeLikeCache) DeleteCount(_ context.Context, postID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.counts, postID)
	return nil
}

func TestPostLikeToggle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cache := &fakeLikeCache{counts: map[uint64]int64{}}
	lock := newFakeLocker()
	svc := NewPostLikeService(db, cache, lock)
	author := seedUser(t, db, "author", "user")
	v := seedUser(t, db, "user_v", "user")
	p := seedPost(t, db, author.ID, "likeable")

	st, err := svc.Toggle(ctx, v.ID, p.ID)
	if err != nil || !st.Liked || st.Count != 1 {
		t.Fatalf("like %+v err=%v", st, err)
	}
	if cache.counts[p.ID] != 1 {
		t.Fatalf("cache should hold fresh count, got %d", cache.counts[p.ID])
	}
	if _, err = svc.Toggle(ctx, author.ID, p.ID); err != nil {
		t.Fatal(err)
	}

	st, err = svc.Toggle(ctx, v.ID, p.ID)
	if err != nil || st.Liked || st.Count != 1 {
		t.Fatalf("unlike %+v err=%v", st, err)
	}

	st, err = svc.Status(ctx, author.ID, p.ID)
	if err != nil || !st.Liked || st.Count != 1 {
		t.Fatalf("status %+v err=%v", st, err)
	}
	if len(lock.held) != 0 {
		t.Fatalf("locks not released: %v", lock.held)
	}

	// 拿不到锁时删掉计数，读侧回源
	lock.deny = true
	if _, err = svc.Toggle(ctx, v.ID, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.counts[p.ID]; ok {
		t.Fatal("count key should be dropped when the lock is busy")
	}
	start := time.Now()
	st, err = svc.Status(ctx, v.ID, p.ID)
	if err != nil || !st.Liked || st.Count != 2 {
		t.Fatalf("status without lock %+v err=%v", st, err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("status should not block on a busy lock")
	}

	if _, err = svc.Toggle(ctx, v.ID, 999); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("missing post: expected not found, got %v", err)
	}
}
