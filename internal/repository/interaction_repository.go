package repository

import (
	"context"

	"lughati_backend/internal/model"

	"gorm.io/gorm"
)

type InteractionRepository struct {
	DB *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{DB: db}
}

func (r *InteractionRepository) Create(ctx context.Context, interaction *model.UserInteraction) error {
	return r.DB.WithContext(ctx).Create(interaction).Error
}

// RecentQuestions returns the newest questions recorded against one
// lesson key, excluding the row with id excludeID.
func (r *InteractionRepository) RecentQuestions(ctx context.Context, lessonKey string, excludeID uint, limit int) ([]string, error) {
	var questions []string
	err := r.DB.WithContext(ctx).Model(&model.UserInteraction{}).
		Where("lesson_key = ? AND id <> ?", lessonKey, excludeID).
		Order("created_at DESC").
		Limit(limit).
		Pluck("user_question", &questions).Error
	return questions, err
}

func (r *InteractionRepository) CountForKey(ctx context.Context, lessonKey string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.UserInteraction{}).
		Where("lesson_key = ?", lessonKey).
		Count(&count).Error
	return count, err
}
