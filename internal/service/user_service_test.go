package service

import (
	"context"
	"errors"
	"testing"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"

	"golang.org/x/crypto/bcrypt"
)

type memSessions struct {
	tokens map[uint64]string
}

func (m *memSessions) AddUserToken(_ context.Context, userID uint64, token string) error {
	m.tokens[userID] = token
	return nil
}

func (m *memSessions) GetUserToken(_ context.Context, userID uint64) (string, error) {
	tok, ok := m.tokens[userID]
	if !ok {
		return "", errors.New("token not found")
	}
	return tok, nil
}

func (m *memSessions) ExtendUserToken(context.Context, uint64) error { return nil }

func (m *memSessions) DeleteUserToken(_ context.Context, userID uint64) error {
	delete(m.tokens, userID)
	return nil
}

func TestUserSyncAndSession(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	sessions := &memSessions{tokens: map[uint64]string{}}
	svc := NewUserService(db, pkg.NewJWTManager("access-secret", "refresh-secret"), sessions, "")

	res, err := svc.Sync(ctx, SyncInput{ClerkUserID: "user_abc", Username: "ana", Email: "ana@lingo.test"})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !res.Created || res.User.Role != model.RoleUser || res.Tokens == nil {
		t.Fatalf("first sync %+v", res)
	}

	chat := int64(4242)
	res, err = svc.Sync(ctx, SyncInput{ClerkUserID: "user_abc", Username: "ana2", Email: "ana@lingo.test", Role: model.RoleAdmin, TelegramChatID: &chat})
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if res.Created || res.User.Username != "ana2" || !res.User.IsAdmin() || res.User.TelegramChatID == nil || *res.User.TelegramChatID != chat {
		t.Fatalf("resync %+v", res.User)
	}

	u, err := svc.Authenticate(ctx, res.Tokens.AccessToken)
	if err != nil || u.ClerkUserID != "user_abc" {
		t.Fatalf("authenticate %+v err=%v", u, err)
	}
	if _, err = svc.Authenticate(ctx, "garbage"); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("bad token: expected unauthorized, got %v", err)
	}
	if _, err = svc.Authenticate(ctx, res.Tokens.RefreshToken); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("refresh token as access: expected unauthorized, got %v", err)
	}

	pair, err := svc.Refresh(ctx, res.Tokens.RefreshToken)
	if err != nil || pair.AccessToken == "" {
		t.Fatalf("refresh %+v err=%v", pair, err)
	}
	if _, err = svc.Refresh(ctx, pair.AccessToken); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("access token as refresh: expected unauthorized, got %v", err)
	}

	if err = svc.Logout(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if _, err = svc.Authenticate(ctx, pair.AccessToken); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Fatalf("after logout: expected unauthorized, got %v", err)
	}
}

func TestUserSyncValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewUserService(db, pkg.NewJWTManager("a", "r"), nil, "")

	if _, err := svc.Sync(ctx, SyncInput{ClerkUserID: "  "}); !errors.Is(err, pkg.ErrValidation) {
		t.Fatalf("empty clerk id: expected validation, got %v", err)
	}
	if _, err := svc.Sync(ctx, SyncInput{ClerkUserID: "user_x", Role: "root"}); !errors.Is(err, pkg.ErrValidation) {
		t.Fatalf("bad role: expected validation, got %v", err)
	}
	if _, err := svc.ByClerkID(ctx, "nobody"); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("unknown clerk id: expected not found, got %v", err)
	}
}

func TestCheckSyncKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	svc := NewUserService(nil, nil, nil, string(hash))
	if err = svc.CheckSyncKey("s3cret"); err != nil {
		t.Fatalf("valid key: %v", err)
	}
	for _, key := range []string{"", "wrong"} {
		if err = svc.CheckSyncKey(key); !errors.Is(err, pkg.ErrUnauthorized) {
			t.Fatalf("key %q: expected unauthorized, got %v", key, err)
		}
	}
	if err = NewUserService(nil, nil, nil, "").CheckSyncKey(""); err != nil {
		t.Fatalf("no hash configured should pass, got %v", err)
	}
}
