package sqldb

import (
	"context"

	"Lingo_Community/internal/model"

	"gorm.io/gorm"
)

type FlashcardRepository struct {
	DB *gorm.DB
}

func (r *FlashcardRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var list []model.Category
	err := r.DB.WithContext(ctx).Order("description ASC").Find(&list).Error
	return list, err
}

func (r *FlashcardRepository) CreateCategory(ctx context.Context, c *model.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *FlashcardRepository) CategoryExists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *FlashcardRepository) ListSets(ctx context.Context, categoryID uint64) ([]model.FlashcardSet, error) {
	var list []model.FlashcardSet
	q := r.DB.WithContext(ctx).Preload("Category").Preload("Flashcards")
	if categoryID > 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	err := q.Order("updated_at DESC").Find(&list).Error
	return list, err
}

func (r *FlashcardRepository) FindSet(ctx context.Context, id uint64) (*model.FlashcardSet, error) {
	var set model.FlashcardSet
	err := r.DB.WithContext(ctx).Preload("Category").Preload("Flashcards").First(&set, id).Error
	return &set, err
}

func (r *FlashcardRepository) CreateSet(ctx context.Context, set *model.FlashcardSet) error {
	return r.DB.WithContext(ctx).Create(set).Error
}

func (r *FlashcardRepository) UpdateSet(ctx context.Context, id uint64, updates map[string]any) error {
	return r.DB.WithContext(ctx).Model(&model.FlashcardSet{}).Where("id = ?", id).Updates(updates).Error
}

func (r *FlashcardRepository) ListCards(ctx context.Context, setID uint64) ([]model.Flashcard, error) {
	var list []model.Flashcard
	err := r.DB.WithContext(ctx).Where("set_id = ?", setID).Order("id ASC").Find(&list).Error
	return list, err
}

// FindCard 带上 set 和 category
func (r *FlashcardRepository) FindCard(ctx context.Context, id uint64) (*model.Flashcard, error) {
	var card model.Flashcard
	err := r.DB.WithContext(ctx).Preload("Set.Category").First(&card, id).Error
	return &card, err
}

func (r *FlashcardRepository) CardExists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Flashcard{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *FlashcardRepository) CreateCard(ctx context.Context, card *model.Flashcard) error {
	return r.DB.WithContext(ctx).Create(card).Error
}

// CreateCards 批量导入，一个事务
func (r *FlashcardRepository) CreateCards(ctx context.Context, cards []model.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(cards, 100).Error; err != nil {
			return err
		}
		return tx.Model(&model.FlashcardSet{}).Where("id = ?", cards[0].SetID).
			Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
	})
}

func (r *FlashcardRepository) UpdateCard(ctx context.Context, id uint64, updates map[string]any) error {
	return r.DB.WithContext(ctx).Model(&model.Flashcard{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteCard 连同复习进度一起删
func (r *FlashcardRepository) DeleteCard(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", id).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Flashcard{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
