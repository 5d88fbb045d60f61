package repository

import (
	"context"
	"errors"
	"time"

	"lughati_backend/internal/model"
	"lughati_backend/internal/util"
	"lughati_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizCacheRepository struct {
	DB *gorm.DB
}

func NewQuizCacheRepository(db *gorm.DB) *QuizCacheRepository {
	return &QuizCacheRepository{DB: db}
}

// Get returns the cached quiz or util.ErrCacheMiss; a hit bumps
// usage_count by one.
func (r *QuizCacheRepository) Get(ctx context.Context, key string) (*model.CachedQuiz, error) {
	var quiz model.CachedQuiz
	err := r.DB.WithContext(ctx).Where("quiz_key = ?", key).First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCacheMiss
		}
		return nil, err
	}

	if err := r.DB.WithContext(ctx).Model(&model.CachedQuiz{}).
		Where("quiz_key = ?", key).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error; err != nil {
		logger.Log.Error("Failed to increment quiz usage count",
			zap.String("quizKey", key), zap.Error(err))
	} else {
		quiz.UsageCount++
	}

	return &quiz, nil
}

// Put overwrites the full record, resetting usage_count.
func (r *QuizCacheRepository) Put(ctx context.Context, quiz *model.CachedQuiz) error {
	quiz.CreatedAt = time.Now()
	err := r.DB.WithContext(ctx).
		Where("quiz_key = ?", quiz.QuizKey).
		Delete(&model.CachedQuiz{}).Error
	if err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Create(quiz).Error
}
