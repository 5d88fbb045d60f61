package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lughati_backend/internal/model"
	"lughati_backend/internal/util"
	"lughati_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LessonCacheRepository is the durable key→content store for
// generated lessons, with a redis hot layer in front of MySQL.
// Redis is optional; a nil client degrades to plain DB reads.
type LessonCacheRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
	TTL time.Duration
}

func NewLessonCacheRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) *LessonCacheRepository {
	return &LessonCacheRepository{DB: db, RDB: rdb, TTL: ttl}
}

func (r *LessonCacheRepository) redisKey(lessonKey string) string {
	return "lesson_cache:" + lessonKey
}

// Get returns the cached lesson for key or util.ErrCacheMiss. A hit
// increments usage_count by exactly 1 before the record is returned.
func (r *LessonCacheRepository) Get(ctx context.Context, key string) (*model.CachedLesson, error) {
	lesson, err := r.fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	// The bump is the observable hit side effect. A failed bump is a
	// persistence problem, not a reason to withhold the content.
	if err := r.DB.WithContext(ctx).Model(&model.CachedLesson{}).
		Where("lesson_key = ?", key).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error; err != nil {
		logger.Log.Error("Failed to increment usage count",
			zap.String("lessonKey", key), zap.Error(err))
		return lesson, nil
	}

	// The record may have come from a hot copy whose counter lags the
	// durable one; read the counter back so every hit reports the true
	// count, and refresh the hot copy with it.
	var count int64
	if err := r.DB.WithContext(ctx).Model(&model.CachedLesson{}).
		Where("lesson_key = ?", key).
		Select("usage_count").Scan(&count).Error; err != nil {
		lesson.UsageCount++
	} else {
		lesson.UsageCount = count
		r.warmRedis(ctx, lesson)
	}

	return lesson, nil
}

func (r *LessonCacheRepository) fetch(ctx context.Context, key string) (*model.CachedLesson, error) {
	if r.RDB != nil {
		raw, err := r.RDB.Get(ctx, r.redisKey(key)).Bytes()
		if err == nil {
			var lesson model.CachedLesson
			if err := json.Unmarshal(raw, &lesson); err == nil {
				return &lesson, nil
			}
			// Corrupt hot entry, fall through to the DB.
			r.RDB.Del(ctx, r.redisKey(key))
		}
	}

	var lesson model.CachedLesson
	err := r.DB.WithContext(ctx).Where("lesson_key = ?", key).First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCacheMiss
		}
		return nil, err
	}

	r.warmRedis(ctx, &lesson)
	return &lesson, nil
}

func (r *LessonCacheRepository) warmRedis(ctx context.Context, lesson *model.CachedLesson) {
	if r.RDB == nil {
		return
	}
	raw, err := json.Marshal(lesson)
	if err != nil {
		return
	}
	if err := r.RDB.Set(ctx, r.redisKey(lesson.LessonKey), raw, r.TTL).Err(); err != nil {
		logger.Log.Warn("Failed to warm lesson hot cache",
			zap.String("lessonKey", lesson.LessonKey), zap.Error(err))
	}
}

// Put upserts the full record: overwrite semantics, no partial merge.
// An overwrite resets usage_count, enhancement log and improvement
// score along with the content (last write wins).
func (r *LessonCacheRepository) Put(ctx context.Context, lesson *model.CachedLesson) error {
	if lesson.EnhancementLog == nil {
		lesson.EnhancementLog = []string{}
	}
	if lesson.ImprovementScore == 0 {
		lesson.ImprovementScore = 1.0
	}
	lesson.CreatedAt = time.Now()

	err := r.DB.WithContext(ctx).
		Where("lesson_key = ?", lesson.LessonKey).
		Delete(&model.CachedLesson{}).Error
	if err == nil {
		err = r.DB.WithContext(ctx).Create(lesson).Error
	}
	if err != nil {
		return err
	}

	if r.RDB != nil {
		r.RDB.Del(ctx, r.redisKey(lesson.LessonKey))
	}
	return nil
}

// AppendEnhancementLog appends one trigger entry to the lesson's
// enhancement log.
func (r *LessonCacheRepository) AppendEnhancementLog(ctx context.Context, key, trigger string) error {
	var lesson model.CachedLesson
	err := r.DB.WithContext(ctx).Where("lesson_key = ?", key).First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrLessonNotFound
		}
		return err
	}

	// Save goes through the model so the json serializer encodes the
	// slice; a raw column update would write an unreadable value.
	lesson.EnhancementLog = append(lesson.EnhancementLog, trigger)
	if err := r.DB.WithContext(ctx).Save(&lesson).Error; err != nil {
		return err
	}

	if r.RDB != nil {
		r.RDB.Del(ctx, r.redisKey(key))
	}
	return nil
}

// FindByKeys loads cached lessons for the given keys.
func (r *LessonCacheRepository) FindByKeys(ctx context.Context, keys []string) ([]model.CachedLesson, error) {
	var lessons []model.CachedLesson
	err := r.DB.WithContext(ctx).Where("lesson_key IN ?", keys).Find(&lessons).Error
	return lessons, err
}

// All returns every cached lesson. The corpus is bounded by the
// 100-item curriculum, so a full scan is acceptable for search.
func (r *LessonCacheRepository) All(ctx context.Context) ([]model.CachedLesson, error) {
	var lessons []model.CachedLesson
	err := r.DB.WithContext(ctx).Find(&lessons).Error
	return lessons, err
}
