package service

import (
	"context"
	"errors"
	"strings"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"

	"gorm.io/gorm"
)

type ModerationService struct {
	repo  *sqldb.ModerationRepository
	posts *sqldb.PostRepository
	users *sqldb.UserRepository
	clock pkg.Clock
}

func NewModerationService(db *gorm.DB, clock pkg.Clock) *ModerationService {
	if clock == nil {
		clock = pkg.SystemClock{}
	}
	return &ModerationService{
		repo:  &sqldb.ModerationRepository{DB: db},
		posts: &sqldb.PostRepository{DB: db},
		users: &sqldb.UserRepository{DB: db},
		clock: clock,
	}
}

// Report 多次举报会累积，帖子一律置 reported=true
func (s *ModerationService) Report(ctx context.Context, postID, reporterID uint64, reason, details string) (*model.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkg.Validation("reason is required")
	}
	ok, err := s.users.Exists(ctx, reporterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkg.NotFound("user %d not found", reporterID)
	}

	rep := &model.Report{
		PostID:       postID,
		ReporterID:   reporterID,
		Reason:       reason,
		Details:      details,
		DateReported: s.clock.Now(),
	}
	if err = s.repo.Report(ctx, rep); err != nil {
		return nil, notFoundOr(err, "post %d not found", postID)
	}
	return rep, nil
}

// Approve 举报不成立：reported=false, reportResolved=true
func (s *ModerationService) Approve(ctx context.Context, postID, moderatorID uint64, note string) (*model.Post, error) {
	return s.moderate(ctx, model.ModerationApprove, postID, moderatorID, note)
}

// Delete 返回的是删除前的帖子；note 留在审计表里
func (s *ModerationService) Delete(ctx context.Context, postID, moderatorID uint64, note string) (*model.Post, error) {
	return s.moderate(ctx, model.ModerationDelete, postID, moderatorID, note)
}

// Resolve 只标记已处理，reported 保持不变
func (s *ModerationService) Resolve(ctx context.Context, postID, moderatorID uint64, note string) (*model.Post, error) {
	return s.moderate(ctx, model.ModerationResolve, postID, moderatorID, note)
}

func (s *ModerationService) moderate(ctx context.Context, action string, postID, moderatorID uint64, note string) (*model.Post, error) {
	post, err := s.repo.Moderate(ctx, action, postID, moderatorID, note, s.clock.Now())
	if err != nil {
		return nil, notFoundOr(err, "post %d not found", postID)
	}
	return post, nil
}

func (s *ModerationService) Pending(ctx context.Context) ([]ReportedPost, error) {
	posts, err := s.repo.Pending(ctx)
	if err != nil {
		return nil, err
	}
	return s.withLatestReports(ctx, posts)
}

func (s *ModerationService) Resolved(ctx context.Context) ([]ReportedPost, error) {
	posts, err := s.repo.Resolved(ctx)
	if err != nil {
		return nil, err
	}
	return s.withLatestReports(ctx, posts)
}

func (s *ModerationService) withLatestReports(ctx context.Context, posts []model.Post) ([]ReportedPost, error) {
	ids := make([]uint64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	latest, err := s.repo.LatestReports(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ReportedPost, 0, len(posts))
	for _, p := range posts {
		item := ReportedPost{Post: p}
		if rep, ok := latest[p.ID]; ok {
			item.LatestReport = &rep
		}
		out = append(out, item)
	}
	return out, nil
}

// ReportedDetail 单个被举报帖子；reported=false 按不存在处理
func (s *ModerationService) ReportedDetail(ctx context.Context, postID uint64) (*ReportedPost, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "reported post %d not found", postID)
	}
	if !post.Reported {
		return nil, pkg.NotFound("reported post %d not found", postID)
	}
	item := &ReportedPost{Post: *post}
	rep, err := s.repo.LatestReport(ctx, postID)
	if err == nil {
		item.LatestReport = rep
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return item, nil
}

func (s *ModerationService) LatestReport(ctx context.Context, postID uint64) (*model.Report, error) {
	rep, err := s.repo.LatestReport(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "no report for post %d", postID)
	}
	return rep, nil
}

func (s *ModerationService) Reports(ctx context.Context, postID uint64) ([]model.Report, error) {
	return s.repo.Reports(ctx, postID)
}

// Audit 帖子删除后也能查
func (s *ModerationService) Audit(ctx context.Context, postID uint64) ([]model.ModerationAudit, error) {
	return s.repo.Audit(ctx, postID)
}
