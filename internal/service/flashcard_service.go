package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var cardDifficulties = map[string]bool{"": true, "easy": true, "medium": true, "hard": true}

type FlashcardService struct {
	repo *sqldb.FlashcardRepository
}

func NewFlashcardService(db *gorm.DB) *FlashcardService {
	return &FlashcardService{repo: &sqldb.FlashcardRepository{DB: db}}
}

func (s *FlashcardService) Categories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *FlashcardService) CreateCategory(ctx context.Context, desc string) (*model.Category, error) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return nil, pkg.Validation("description required")
	}
	c := &model.Category{Description: desc}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListSets categoryID=0 返回全部
func (s *FlashcardService) ListSets(ctx context.Context, categoryID uint64) ([]model.FlashcardSet, error) {
	return s.repo.ListSets(ctx, categoryID)
}

func (s *FlashcardService) GetSet(ctx context.Context, id uint64) (*model.FlashcardSet, error) {
	set, err := s.repo.FindSet(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "flashcard set %d not found", id)
	}
	return set, nil
}

type SetInput struct {
	Title       string
	Description string
	CategoryID  uint64
}

func (s *FlashcardService) CreateSet(ctx context.Context, userID uint64, in SetInput) (*model.FlashcardSet, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, pkg.Validation("title required")
	}
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	set := &model.FlashcardSet{
		UserID:      userID,
		CategoryID:  in.CategoryID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
	}
	if err := s.repo.CreateSet(ctx, set); err != nil {
		return nil, err
	}
	return s.GetSet(ctx, set.ID)
}

// UpdateSet 只有创建者或管理员能改
func (s *FlashcardService) UpdateSet(ctx context.Context, user *model.User, id uint64, in SetInput) (*model.FlashcardSet, error) {
	set, err := s.ownedSet(ctx, user, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if t := strings.TrimSpace(in.Title); t != "" {
		updates["title"] = t
	}
	if in.Description != "" {
		updates["description"] = in.Description
	}
	if in.CategoryID > 0 && in.CategoryID != set.CategoryID {
		if err = s.requireCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = in.CategoryID
	}
	if len(updates) > 0 {
		if err = s.repo.UpdateSet(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return s.GetSet(ctx, id)
}

func (s *FlashcardService) Cards(ctx context.Context, setID uint64) ([]model.Flashcard, error) {
	if _, err := s.GetSet(ctx, setID); err != nil {
		return nil, err
	}
	return s.repo.ListCards(ctx, setID)
}

func (s *FlashcardService) GetCard(ctx context.Context, id uint64) (*CardView, error) {
	c, err := s.repo.FindCard(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "flashcard %d not found", id)
	}
	return toCardView(c), nil
}

type CardInput struct {
	SetID      uint64
	FrontText  string
	BackText   string
	Difficulty string
}

func (in *CardInput) validate() error {
	in.FrontText = strings.TrimSpace(in.FrontText)
	in.BackText = strings.TrimSpace(in.BackText)
	in.Difficulty = strings.ToLower(strings.TrimSpace(in.Difficulty))
	if in.FrontText == "" || in.BackText == "" {
		return pkg.Validation("frontText and backText are required")
	}
	if !cardDifficulties[in.Difficulty] {
		return pkg.Validation("difficulty must be easy, medium or hard", map[string]any{"difficulty": in.Difficulty})
	}
	return nil
}

func (s *FlashcardService) CreateCard(ctx context.Context, user *model.User, in CardInput) (*CardView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.ownedSet(ctx, user, in.SetID); err != nil {
		return nil, err
	}
	card := &model.Flashcard{
		SetID:      in.SetID,
		FrontText:  in.FrontText,
		BackText:   in.BackText,
		Difficulty: in.Difficulty,
	}
	if err := s.repo.CreateCard(ctx, card); err != nil {
		return nil, err
	}
	return s.GetCard(ctx, card.ID)
}

func (s *FlashcardService) UpdateCard(ctx context.Context, user *model.User, id uint64, in CardInput) (*CardView, error) {
	card, err := s.repo.FindCard(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "flashcard %d not found", id)
	}
	if _, err = s.ownedSet(ctx, user, card.SetID); err != nil {
		return nil, err
	}
	if in.FrontText == "" {
		in.FrontText = card.FrontText
	}
	if in.BackText == "" {
		in.BackText = card.BackText
	}
	if in.Difficulty == "" {
		in.Difficulty = card.Difficulty
	}
	if err = in.validate(); err != nil {
		return nil, err
	}
	if err = s.repo.UpdateCard(ctx, id, map[string]any{
		"front_text": in.FrontText,
		"back_text":  in.BackText,
		"difficulty": in.Difficulty,
	}); err != nil {
		return nil, err
	}
	return s.GetCard(ctx, id)
}

func (s *FlashcardService) DeleteCard(ctx context.Context, user *model.User, id uint64) error {
	card, err := s.repo.FindCard(ctx, id)
	if err != nil {
		return notFoundOr(err, "flashcard %d not found", id)
	}
	if _, err = s.ownedSet(ctx, user, card.SetID); err != nil {
		return err
	}
	return notFoundOr(s.repo.DeleteCard(ctx, id), "flashcard %d not found", id)
}

// ImportResult 导入统计，Skipped 记录被跳过的行号（从 1 开始，含表头）
type ImportResult struct {
	Imported int   `json:"imported"`
	Skipped  []int `json:"skipped"`
}

// ImportXLSX 读取第一个工作表：A 正面，B 背面，C 难度（可选）；首行是表头时跳过
func (s *FlashcardService) ImportXLSX(ctx context.Context, user *model.User, setID uint64, r io.Reader) (*ImportResult, error) {
	if _, err := s.ownedSet(ctx, user, setID); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, pkg.Validation("not a valid xlsx file", map[string]any{"error": err.Error()})
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, pkg.Validation("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, pkg.Validation("cannot read sheet", map[string]any{"sheet": sheets[0]})
	}

	res := &ImportResult{Skipped: []int{}}
	cards := make([]model.Flashcard, 0, len(rows))
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		in := CardInput{SetID: setID, FrontText: cell(row, 0), BackText: cell(row, 1), Difficulty: cell(row, 2)}
		if in.FrontText == "" && in.BackText == "" && in.Difficulty == "" {
			continue
		}
		if err = in.validate(); err != nil {
			res.Skipped = append(res.Skipped, i+1)
			continue
		}
		cards = append(cards, model.Flashcard{
			SetID:      setID,
			FrontText:  in.FrontText,
			BackText:   in.BackText,
			Difficulty: in.Difficulty,
		})
	}
	if len(cards) == 0 {
		return nil, pkg.Validation("no importable rows", map[string]any{"skipped": res.Skipped})
	}
	if err = s.repo.CreateCards(ctx, cards); err != nil {
		return nil, fmt.Errorf("import flashcards: %w", err)
	}
	res.Imported = len(cards)
	return res, nil
}

func isHeaderRow(row []string) bool {
	h := strings.ToLower(strings.TrimSpace(cell(row, 0)))
	return h == "front" || h == "fronttext" || h == "front text"
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func (s *FlashcardService) requireCategory(ctx context.Context, id uint64) error {
	ok, err := s.repo.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.NotFound("category %d not found", id)
	}
	return nil
}

func (s *FlashcardService) ownedSet(ctx context.Context, user *model.User, id uint64) (*model.FlashcardSet, error) {
	set, err := s.GetSet(ctx, id)
	if err != nil {
		return nil, err
	}
	if set.UserID != user.ID && !user.IsAdmin() {
		return nil, pkg.Forbidden("not the owner of this set")
	}
	return set, nil
}
