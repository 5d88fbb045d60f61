package model

import "time"

// Journey item types.
const (
	ItemTypeLesson = "lesson"
	ItemTypeGame   = "game"
	ItemTypeQuiz   = "quiz"
)

// JourneyItem is one of the 100 sequential curriculum units. Items are
// synthesized from the fixed curriculum layout plus a user's progress
// row; they are never persisted themselves.
type JourneyItem struct {
	ID          string   `json:"id"`
	Index       int      `json:"index"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	TitleArabic string   `json:"titleArabic"`
	Unlocked    bool     `json:"unlocked"`
	Completed   bool     `json:"completed"`
	Locked      bool     `json:"locked"` // quiz-only terminal state
	LockReason  string   `json:"lockReason,omitempty"`
	Prereqs     []string `json:"prerequisites,omitempty"`
}

// NavigationEvent is one entry in a user's navigation history.
type NavigationEvent struct {
	From      int       `json:"from"`
	To        int       `json:"to"`
	Direction string    `json:"direction"`
	At        time.Time `json:"at"`
}

// UserJourneyProgress is the single per-user progress row. One active
// writer per user is assumed; there is no per-user lock.
type UserJourneyProgress struct {
	UserID           string            `gorm:"primaryKey;size:191" json:"userId"`
	CurrentItemIndex int               `gorm:"default:0" json:"currentItemIndex"`
	CompletedItems   []int             `gorm:"serializer:json;type:json" json:"completedItems"`
	PassedQuizzes    []int             `gorm:"serializer:json;type:json" json:"passedQuizzes"`
	FailedQuizzes    []int             `gorm:"serializer:json;type:json" json:"failedQuizzes"`
	TotalScore       int               `gorm:"default:0" json:"totalScore"`
	QuizScores       map[int]int       `gorm:"serializer:json;type:json" json:"quizScores"`
	GameScores       map[int]int       `gorm:"serializer:json;type:json" json:"gameScores"`
	LessonCompletion map[int]bool      `gorm:"serializer:json;type:json" json:"lessonCompletion"`
	NavigationLog    []NavigationEvent `gorm:"serializer:json;type:json" json:"navigationHistory"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func (UserJourneyProgress) TableName() string {
	return "user_journey_progress"
}

// HasCompleted reports whether item n is in the completed set.
func (p *UserJourneyProgress) HasCompleted(n int) bool {
	for _, c := range p.CompletedItems {
		if c == n {
			return true
		}
	}
	return false
}

// HasPassedQuiz reports whether the quiz at item n was passed.
func (p *UserJourneyProgress) HasPassedQuiz(n int) bool {
	for _, q := range p.PassedQuizzes {
		if q == n {
			return true
		}
	}
	return false
}

// HasFailedQuiz reports whether the quiz at item n has a recorded
// failure that was not superseded by a pass.
func (p *UserJourneyProgress) HasFailedQuiz(n int) bool {
	if p.HasPassedQuiz(n) {
		return false
	}
	for _, q := range p.FailedQuizzes {
		if q == n {
			return true
		}
	}
	return false
}
