package service

import (
	"context"
	"errors"
	"strings"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	repo        *sqldb.UserRepository
	jwt         *pkg.JWTManager
	sessions    SessionStore
	syncKeyHash []byte
}

// NewUserService syncKeyHash 为空时不校验同步密钥；sessions 为 nil 时不做单点登录态
func NewUserService(db *gorm.DB, jwt *pkg.JWTManager, sessions SessionStore, syncKeyHash string) *UserService {
	return &UserService{
		repo:        &sqldb.UserRepository{DB: db},
		jwt:         jwt,
		sessions:    sessions,
		syncKeyHash: []byte(syncKeyHash),
	}
}

type SyncInput struct {
	ClerkUserID    string
	Username       string
	Email          string
	Role           string
	TelegramChatID *int64
}

type SyncResult struct {
	User    *model.User `json:"user"`
	Created bool        `json:"created"`
	Tokens  *pkg.Pair   `json:"tokens"`
}

// CheckSyncKey 身份服务回调时带的共享密钥
func (s *UserService) CheckSyncKey(key string) error {
	if len(s.syncKeyHash) == 0 {
		return nil
	}
	if key == "" {
		return pkg.Unauthorized("missing sync key")
	}
	if bcrypt.CompareHashAndPassword(s.syncKeyHash, []byte(key)) != nil {
		return pkg.Unauthorized("invalid sync key")
	}
	return nil
}

// Sync 按 clerkUserId upsert 用户并签发 token
func (s *UserService) Sync(ctx context.Context, in SyncInput) (*SyncResult, error) {
	in.ClerkUserID = strings.TrimSpace(in.ClerkUserID)
	if in.ClerkUserID == "" {
		return nil, pkg.Validation("clerkUserId is required")
	}
	switch in.Role {
	case "":
		in.Role = model.RoleUser
	case model.RoleUser, model.RoleAdmin:
	default:
		return nil, pkg.Validation("role must be user or admin", map[string]any{"role": in.Role})
	}

	u := &model.User{
		ClerkUserID:    in.ClerkUserID,
		Username:       in.Username,
		Email:          in.Email,
		Role:           in.Role,
		TelegramChatID: in.TelegramChatID,
	}
	created, err := s.repo.Upsert(ctx, u)
	if err != nil {
		return nil, err
	}

	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	return &SyncResult{User: u, Created: created, Tokens: pair}, nil
}

func (s *UserService) ByClerkID(ctx context.Context, clerkUserID string) (*model.User, error) {
	u, err := s.repo.FindByClerkID(ctx, clerkUserID)
	if err != nil {
		return nil, notFoundOr(err, "user %q not found", clerkUserID)
	}
	return u, nil
}

func (s *UserService) ByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user %d not found", id)
	}
	return u, nil
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	pair, claims, err := s.jwt.Refresh(refreshToken)
	if err != nil {
		return nil, pkg.Unauthorized(err.Error())
	}
	if s.sessions != nil {
		if err = s.sessions.AddUserToken(ctx, claims.UserID, pair.AccessToken); err != nil {
			return nil, err
		}
	}
	return pair, nil
}

// Authenticate 校验 access token；启用了会话存储时 token 必须是最近签发的那个
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	claims, err := s.jwt.ParseAccess(accessToken)
	if err != nil {
		return nil, pkg.Unauthorized(err.Error())
	}
	if s.sessions != nil {
		stored, err := s.sessions.GetUserToken(ctx, claims.UserID)
		if err != nil || stored != accessToken {
			return nil, pkg.Unauthorized("session expired")
		}
		_ = s.sessions.ExtendUserToken(ctx, claims.UserID)
	}
	return s.ByID(ctx, claims.UserID)
}

func (s *UserService) Logout(ctx context.Context, userID uint64) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.DeleteUserToken(ctx, userID)
}

func (s *UserService) issue(ctx context.Context, u *model.User) (*pkg.Pair, error) {
	if s.jwt == nil {
		return nil, errors.New("jwt manager not configured")
	}
	pair, err := s.jwt.GeneratePair(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	if s.sessions != nil {
		if err = s.sessions.AddUserToken(ctx, u.ID, pair.AccessToken); err != nil {
			return nil, err
		}
	}
	return pair, nil
}
