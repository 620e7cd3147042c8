package sqldb

import (
	"context"

	"Lingo_Community/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRepository struct {
	DB *gorm.DB
}

func (r *QuizRepository) withQuestions(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Preload("Questions.Choices").
		Preload("Questions.MatchPairs")
}

func (r *QuizRepository) List(ctx context.Context) ([]model.Quiz, error) {
	var list []model.Quiz
	err := r.withQuestions(r.DB.WithContext(ctx)).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *QuizRepository) FindByID(ctx context.Context, id uint64) (*model.Quiz, error) {
	var q model.Quiz
	err := r.withQuestions(r.DB.WithContext(ctx)).First(&q, id).Error
	return &q, err
}

func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(q).Error
}

// AddQuestion 题目连同选项/配对一起写入
func (r *QuizRepository) AddQuestion(ctx context.Context, q *model.QuizQuestion) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quiz model.Quiz
		if err := tx.Select("id").First(&quiz, q.QuizID).Error; err != nil {
			return err
		}
		return tx.Create(q).Error
	})
}

func (r *QuizRepository) FindQuestion(ctx context.Context, id uint64) (*model.QuizQuestion, error) {
	var q model.QuizQuestion
	err := r.DB.WithContext(ctx).Preload("Choices").Preload("MatchPairs").First(&q, id).Error
	return &q, err
}

func (r *QuizRepository) AddChoice(ctx context.Context, c *model.QuizChoice) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *QuizRepository) DeleteQuestion(ctx context.Context, quizID, questionID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q model.QuizQuestion
		if err := tx.Where("id = ? AND quiz_id = ?", questionID, quizID).First(&q).Error; err != nil {
			return err
		}
		return deleteQuestions(tx, []uint64{q.ID})
	})
}

func (r *QuizRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quiz model.Quiz
		if err := tx.Select("id").First(&quiz, id).Error; err != nil {
			return err
		}
		var ids []uint64
		if err := tx.Model(&model.QuizQuestion{}).Where("quiz_id = ?", id).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if err := deleteQuestions(tx, ids); err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&model.QuizAttempt{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Quiz{}, id).Error
	})
}

func deleteQuestions(tx *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("question_id IN ?", ids).Delete(&model.QuizChoice{}).Error; err != nil {
		return err
	}
	if err := tx.Where("question_id IN ?", ids).Delete(&model.QuizMatchPair{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&model.QuizQuestion{}).Error
}

// UpsertAttempt 每个 (quiz, user) 只保留最近一次成绩
func (r *QuizRepository) UpsertAttempt(ctx context.Context, a *model.QuizAttempt) (*model.QuizAttempt, error) {
	var out model.QuizAttempt
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "quiz_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"result", "completed_at"}),
		}).Create(a).Error; err != nil {
			return err
		}
		return tx.Where("quiz_id = ? AND user_id = ?", a.QuizID, a.UserID).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *QuizRepository) Attempts(ctx context.Context, quizID, userID uint64) ([]model.QuizAttempt, error) {
	var list []model.QuizAttempt
	q := r.DB.WithContext(ctx).Where("quiz_id = ?", quizID)
	if userID > 0 {
		q = q.Where("user_id = ?", userID)
	}
	err := q.Order("completed_at DESC").Find(&list).Error
	return list, err
}
