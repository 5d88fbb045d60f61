package repository

import (
	"context"

	"lughati_backend/internal/model"

	"gorm.io/gorm"
)

type EnhancementRepository struct {
	DB *gorm.DB
}

func NewEnhancementRepository(db *gorm.DB) *EnhancementRepository {
	return &EnhancementRepository{DB: db}
}

func (r *EnhancementRepository) Create(ctx context.Context, enhancement *model.LessonEnhancement) error {
	return r.DB.WithContext(ctx).Create(enhancement).Error
}

// ListPending returns triggers not yet shipped to object storage.
func (r *EnhancementRepository) ListPending(ctx context.Context) ([]model.LessonEnhancement, error) {
	var enhancements []model.LessonEnhancement
	err := r.DB.WithContext(ctx).
		Where("exported = ?", false).
		Order("created_at ASC").
		Find(&enhancements).Error
	return enhancements, err
}

func (r *EnhancementRepository) MarkExported(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&model.LessonEnhancement{}).
		Where("id IN ?", ids).
		Update("exported", true).Error
}
