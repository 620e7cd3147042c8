package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"

	"gorm.io/gorm"
)

type CommunityService struct {
	repo       *sqldb.CommunityRepository
	memberRepo *sqldb.CommunityMemberRepository
	users      *sqldb.UserRepository
	clock      pkg.Clock
}

func NewCommunityService(db *gorm.DB, clock pkg.Clock) *CommunityService {
	if clock == nil {
		clock = pkg.SystemClock{}
	}
	return &CommunityService{
		repo:       &sqldb.CommunityRepository{DB: db},
		memberRepo: &sqldb.CommunityMemberRepository{DB: db},
		users:      &sqldb.UserRepository{DB: db},
		clock:      clock,
	}
}

// CreateCommunity 创建者直接是 accepted 成员，member_count 从 1 开始
func (s *CommunityService) CreateCommunity(ctx context.Context, creatorID uint64, name, desc string, established time.Time) (*model.Community, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkg.Validation("community name required")
	}
	if err := s.requireUser(ctx, creatorID); err != nil {
		return nil, err
	}
	if established.IsZero() {
		established = s.clock.Now()
	}

	community := &model.Community{
		Name:            name,
		Description:     desc,
		EstablishedBy:   creatorID,
		EstablishedDate: established.UTC(),
	}
	if _, err := s.repo.Create(ctx, community, s.clock.Now()); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkg.Conflict("community %q already exists", name)
		}
		return nil, err
	}
	return community, nil
}

// RequestJoin 任何状态的成员行存在都算冲突
func (s *CommunityService) RequestJoin(ctx context.Context, userID, communityID uint64) (*model.CommunityMember, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, communityID); err != nil {
		return nil, err
	}
	m, err := s.memberRepo.RequestJoin(ctx, communityID, userID, s.clock.Now())
	if err != nil {
		return nil, s.mapMemberErr(err, communityID, userID)
	}
	return m, nil
}

func (s *CommunityService) Approve(ctx context.Context, communityID, userID uint64) (*model.CommunityMember, error) {
	m, err := s.memberRepo.Approve(ctx, communityID, userID, s.clock.Now())
	if err != nil {
		return nil, s.mapMemberErr(err, communityID, userID)
	}
	return m, nil
}

func (s *CommunityService) Reject(ctx context.Context, communityID, userID uint64) error {
	return s.mapMemberErr(s.memberRepo.Reject(ctx, communityID, userID, s.clock.Now()), communityID, userID)
}

func (s *CommunityService) Kick(ctx context.Context, communityID, userID uint64) error {
	return s.mapMemberErr(s.memberRepo.Kick(ctx, communityID, userID, s.clock.Now()), communityID, userID)
}

func (s *CommunityService) Leave(ctx context.Context, userID, communityID uint64) error {
	return s.mapMemberErr(s.memberRepo.Leave(ctx, communityID, userID, s.clock.Now()), communityID, userID)
}

func (s *CommunityService) Get(ctx context.Context, id uint64) (*model.Community, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "community %d not found", id)
	}
	return c, nil
}

func (s *CommunityService) List(ctx context.Context, page, size int) ([]model.Community, error) {
	offset, limit := pageOf(page, size)
	return s.repo.List(ctx, offset, limit)
}

func (s *CommunityService) Available(ctx context.Context, userID uint64) ([]model.Community, error) {
	return s.repo.Available(ctx, userID)
}

func (s *CommunityService) Joined(ctx context.Context, userID uint64) ([]model.Community, error) {
	return s.repo.Joined(ctx, userID)
}

// Requests 待审批的加入申请
func (s *CommunityService) Requests(ctx context.Context, communityID uint64) ([]model.CommunityMember, error) {
	if _, err := s.Get(ctx, communityID); err != nil {
		return nil, err
	}
	return s.memberRepo.ListByStatus(ctx, communityID, model.MemberPending)
}

func (s *CommunityService) Membership(ctx context.Context, communityID, userID uint64) (*model.CommunityMember, error) {
	m, err := s.memberRepo.Find(ctx, communityID, userID)
	if err != nil {
		return nil, notFoundOr(err, "user %d has no membership in community %d", userID, communityID)
	}
	return m, nil
}

// CanManage 全局管理员，或者该社区 role=1 的 accepted 成员
func (s *CommunityService) CanManage(ctx context.Context, user *model.User, communityID uint64) (bool, error) {
	if user.IsAdmin() {
		return true, nil
	}
	m, err := s.memberRepo.Find(ctx, communityID, user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.Status == model.MemberAccepted && m.Role == 1, nil
}

func (s *CommunityService) requireUser(ctx context.Context, userID uint64) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.NotFound("user %d not found", userID)
	}
	return nil
}

func (s *CommunityService) mapMemberErr(err error, communityID, userID uint64) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkg.NotFound("membership of user %d in community %d not found", userID, communityID)
	case errors.Is(err, sqldb.ErrAlreadyMember):
		return pkg.Conflict("user is already a member or has a pending request")
	case errors.Is(err, sqldb.ErrNotPending):
		return pkg.Conflict("membership is not pending")
	case errors.Is(err, sqldb.ErrNotAccepted):
		return pkg.Conflict("membership is not accepted")
	case errors.Is(err, sqldb.ErrFounder):
		return pkg.Validation("the founder cannot be removed from the community")
	}
	return err
}
