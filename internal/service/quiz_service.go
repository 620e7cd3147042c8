package service

import (
	"context"
	"strings"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"

	"gorm.io/gorm"
)

type QuizService struct {
	repo  *sqldb.QuizRepository
	clock pkg.Clock
}

func NewQuizService(db *gorm.DB, clock pkg.Clock) *QuizService {
	if clock == nil {
		clock = pkg.SystemClock{}
	}
	return &QuizService{repo: &sqldb.QuizRepository{DB: db}, clock: clock}
}

func (s *QuizService) List(ctx context.Context) ([]model.Quiz, error) {
	return s.repo.List(ctx)
}

func (s *QuizService) Get(ctx context.Context, id uint64) (*model.Quiz, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "quiz %d not found", id)
	}
	return q, nil
}

func (s *QuizService) Create(ctx context.Context, userID uint64, q *model.Quiz) (*model.Quiz, error) {
	q.Title = strings.TrimSpace(q.Title)
	if q.Title == "" {
		return nil, pkg.Validation("title required")
	}
	q.ID = 0
	q.UserID = userID
	questions := q.Questions
	q.Questions = nil
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	for i := range questions {
		if _, err := s.AddQuestion(ctx, q.ID, &questions[i]); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, q.ID)
}

// AddQuestion mcq 至少一个正确选项，match 至少一组配对
func (s *QuizService) AddQuestion(ctx context.Context, quizID uint64, q *model.QuizQuestion) (*model.QuizQuestion, error) {
	if strings.TrimSpace(q.Question) == "" {
		return nil, pkg.Validation("question text required")
	}
	switch q.Type {
	case model.QuestionMCQ:
		correct := false
		for _, c := range q.Choices {
			correct = correct || c.IsCorrect
		}
		if !correct {
			return nil, pkg.Validation("mcq question needs a correct choice")
		}
	case model.QuestionMatch:
		if len(q.MatchPairs) == 0 {
			return nil, pkg.Validation("match question needs at least one pair")
		}
	case model.QuestionOpen:
	default:
		return nil, pkg.Validation("type must be mcq, match or open", map[string]any{"type": q.Type})
	}

	q.ID = 0
	q.QuizID = quizID
	if err := s.repo.AddQuestion(ctx, q); err != nil {
		return nil, notFoundOr(err, "quiz %d not found", quizID)
	}
	return q, nil
}

func (s *QuizService) AddChoice(ctx context.Context, questionID uint64, text string, correct bool) (*model.QuizChoice, error) {
	if strings.TrimSpace(text) == "" {
		return nil, pkg.Validation("choice text required")
	}
	q, err := s.repo.FindQuestion(ctx, questionID)
	if err != nil {
		return nil, notFoundOr(err, "question %d not found", questionID)
	}
	if q.Type != model.QuestionMCQ {
		return nil, pkg.Validation("choices only apply to mcq questions")
	}
	c := &model.QuizChoice{QuestionID: questionID, Text: text, IsCorrect: correct}
	if err = s.repo.AddChoice(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *QuizService) DeleteQuestion(ctx context.Context, quizID, questionID uint64) error {
	return notFoundOr(s.repo.DeleteQuestion(ctx, quizID, questionID), "question %d not found in quiz %d", questionID, quizID)
}

func (s *QuizService) Delete(ctx context.Context, id uint64) error {
	return notFoundOr(s.repo.Delete(ctx, id), "quiz %d not found", id)
}

// SubmitAttempt 同一用户重复提交覆盖旧成绩
func (s *QuizService) SubmitAttempt(ctx context.Context, quizID, userID uint64, result int) (*model.QuizAttempt, error) {
	if result < 0 {
		return nil, pkg.Validation("result must not be negative")
	}
	if _, err := s.Get(ctx, quizID); err != nil {
		return nil, err
	}
	return s.repo.UpsertAttempt(ctx, &model.QuizAttempt{
		QuizID:      quizID,
		UserID:      userID,
		Result:      result,
		CompletedAt: s.clock.Now(),
	})
}

func (s *QuizService) Attempts(ctx context.Context, quizID, userID uint64) ([]model.QuizAttempt, error) {
	return s.repo.Attempts(ctx, quizID, userID)
}
