package model

import "time"

// Enhancement trigger methods.
const (
	EnhancementMethodRepeatedQuestions = "repeated_questions"
)

// LessonEnhancement is an advisory signal that a cached lesson drew
// repeated similar questions. Reaching the threshold never invalidates
// the cache; rows here feed later offline reprocessing.
type LessonEnhancement struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LessonKey          string    `gorm:"size:191;index" json:"lessonKey"`
	EnhancementTrigger string    `gorm:"type:text" json:"enhancementTrigger"`
	EnhancementMethod  string    `gorm:"size:50" json:"enhancementMethod"`
	Exported           bool      `gorm:"default:false" json:"exported"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (LessonEnhancement) TableName() string {
	return "lesson_enhancements"
}
