package model

import "time"

// UserInteraction records one tutoring turn against a cached lesson.
// Rows are immutable after creation; frequency is computed on the
// aggregate query, not incremented per row.
type UserInteraction struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LessonKey     string    `gorm:"size:191;index" json:"lessonKey"`
	UserQuestion  string    `gorm:"type:text" json:"userQuestion"`
	TutorResponse string    `gorm:"type:text" json:"tutorResponse"`
	Frequency     int       `gorm:"default:1" json:"frequency"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
}

func (UserInteraction) TableName() string {
	return "user_interactions"
}
