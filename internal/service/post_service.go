package service

import (
	"context"
	"strings"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"

	"gorm.io/gorm"
)

type PostService struct {
	repo        *sqldb.PostRepository
	commentRepo *sqldb.CommentRepository
	memberRepo  *sqldb.CommunityMemberRepository
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		repo:        &sqldb.PostRepository{DB: db},
		commentRepo: &sqldb.CommentRepository{DB: db},
		memberRepo:  &sqldb.CommunityMemberRepository{DB: db},
	}
}

type CreatePostInput struct {
	CommunityID uint64
	Title       string
	Content     string
	Category    string
}

func (s *PostService) CreatePost(ctx context.Context, userID uint64, in CreatePostInput) (*model.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, pkg.Validation("title required")
	}

	post := &model.Post{
		AuthorID: userID,
		Title:    title,
		Content:  in.Content,
		Category: in.Category,
	}
	// 发到社区的帖子要求是 accepted 成员
	if in.CommunityID > 0 {
		ok, err := s.memberRepo.IsMember(ctx, in.CommunityID, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, pkg.Forbidden("not a member of this community")
		}
		cid := in.CommunityID
		post.CommunityID = &cid
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) List(ctx context.Context, communityID uint64, category string, page, size int) ([]model.Post, error) {
	offset, limit := pageOf(page, size)
	return s.repo.List(ctx, communityID, category, offset, limit)
}

// Get 读帖子顺带 view_count + 1
func (s *PostService) Get(ctx context.Context, postID uint64) (*model.Post, error) {
	if err := s.repo.IncrementView(ctx, postID); err != nil {
		return nil, err
	}
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "post %d not found", postID)
	}
	return post, nil
}

// UpdatePostInput nil 表示不改
type UpdatePostInput struct {
	Title    *string
	Content  *string
	Category *string
}

// UpdatePost 只有作者能改
func (s *PostService) UpdatePost(ctx context.Context, userID, postID uint64, in UpdatePostInput) (*model.Post, error) {
	fields := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, pkg.Validation("title required")
		}
		fields["title"] = title
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if len(fields) == 0 {
		return nil, pkg.Validation("nothing to update")
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "post %d not found", postID)
	}
	if post.AuthorID != userID {
		return nil, pkg.Forbidden("no permission")
	}
	if err = s.repo.Update(ctx, postID, fields); err != nil {
		return nil, err
	}
	post, err = s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "post %d not found", postID)
	}
	return post, nil
}

// DeletePost 只有作者能删
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint64) error {
	affected, err := s.repo.DeleteByAuthor(ctx, postID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		ok, err := s.repo.Exists(ctx, postID)
		if err != nil {
			return err
		}
		if !ok {
			return pkg.NotFound("post %d not found", postID)
		}
		return pkg.Forbidden("no permission")
	}
	return nil
}

func (s *PostService) Comments(ctx context.Context, postID uint64) ([]model.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *PostService) AddComment(ctx context.Context, userID, postID uint64, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkg.Validation("content required")
	}
	ok, err := s.repo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkg.NotFound("post %d not found", postID)
	}
	c := &model.Comment{PostID: postID, AuthorID: userID, Content: content}
	if err = s.commentRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
