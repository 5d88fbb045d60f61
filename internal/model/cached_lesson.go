package model

import (
	"time"
)

// CachedLesson is one unit of generated content, keyed by the
// deterministic lesson key. Records are created on first generation,
// overwritten wholesale on re-generation (last write wins) and never
// deleted in normal operation.
type CachedLesson struct {
	LessonKey        string        `gorm:"primaryKey;size:191" json:"lessonKey"`
	Topic            string        `gorm:"size:255" json:"topic"`
	UserLevel        string        `gorm:"size:30;index" json:"userLevel"`
	LessonContent    LessonContent `gorm:"serializer:json;type:json" json:"lessonContent"`
	UsageCount       int64         `gorm:"default:0" json:"usageCount"`
	EnhancementLog   []string      `gorm:"serializer:json;type:json" json:"enhancementLog"`
	ImprovementScore float64       `gorm:"default:1.0" json:"improvementScore"`
	Embedding        []float32     `gorm:"serializer:json;type:json" json:"-"`
	IsFallback       bool          `gorm:"default:false" json:"isFallback"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

func (CachedLesson) TableName() string {
	return "cached_lessons"
}
