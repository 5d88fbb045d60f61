package model

import "time"

// CachedQuiz stores a generated quiz under its cache key, with the
// same overwrite and usage-count semantics as cached lessons. A failed
// quiz is overwritten wholesale on the next attempt.
type CachedQuiz struct {
	QuizKey    string    `gorm:"primaryKey;size:191" json:"quizKey"`
	QuizType   string    `gorm:"size:20" json:"quizType"`
	Content    Quiz      `gorm:"serializer:json;type:json" json:"content"`
	UsageCount int64     `gorm:"default:0" json:"usageCount"`
	IsFallback bool      `gorm:"default:false" json:"isFallback"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (CachedQuiz) TableName() string {
	return "cached_quizzes"
}
