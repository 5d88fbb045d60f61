package repository

import (
	"context"
	"errors"

	"lughati_backend/internal/model"

	"gorm.io/gorm"
)

type JourneyRepository struct {
	DB *gorm.DB
}

func NewJourneyRepository(db *gorm.DB) *JourneyRepository {
	return &JourneyRepository{DB: db}
}

// GetOrCreate returns the user's progress row, creating the initial
// one (item 0 current, nothing completed) on first sight.
func (r *JourneyRepository) GetOrCreate(ctx context.Context, userID string) (*model.UserJourneyProgress, error) {
	var progress model.UserJourneyProgress
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	progress = model.UserJourneyProgress{
		UserID:           userID,
		CurrentItemIndex: 0,
		CompletedItems:   []int{},
		PassedQuizzes:    []int{},
		FailedQuizzes:    []int{},
		QuizScores:       map[int]int{},
		GameScores:       map[int]int{},
		LessonCompletion: map[int]bool{},
		NavigationLog:    []model.NavigationEvent{},
	}
	if err := r.DB.WithContext(ctx).Create(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *JourneyRepository) Save(ctx context.Context, progress *model.UserJourneyProgress) error {
	return r.DB.WithContext(ctx).Save(progress).Error
}
