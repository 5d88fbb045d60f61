package model

import "time"

// Quiz types.
const (
	QuizTypeRegular = "regular"
	QuizTypeFinal   = "final"
)

// Assessment tiers, ordered worst to best.
const (
	TierFailed    = "failed"
	TierPass      = "pass"
	TierGood      = "good"
	TierExcellent = "excellent"
)

// Animation hints carried alongside a tier.
const (
	AnimationCelebration   = "celebration"
	AnimationEncouragement = "encouragement"
	AnimationFailure       = "failure"
)

// Quiz is a generated assessment. Regular quizzes carry 20 questions,
// the final exam 60.
type Quiz struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	ItemIndex      int            `json:"itemIndex"`
	TotalQuestions int            `json:"totalQuestions"`
	PassingScore   int            `json:"passingScore"`
	MaxScore       int            `json:"maxScore"`
	Questions      []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	ID             string   `json:"id"`
	Question       string   `json:"question"`
	QuestionArabic string   `json:"questionArabic"`
	Options        []string `json:"options"`
	CorrectAnswer  string   `json:"correctAnswer"`
	Explanation    string   `json:"explanation"`
}

// UserAnswer is one answer inside a quiz submission.
type UserAnswer struct {
	QuestionID            string   `json:"questionId"`
	UserAnswer            string   `json:"userAnswer"`
	IsCorrect             bool     `json:"isCorrect"`
	PronunciationAccuracy *float64 `json:"pronunciationAccuracy,omitempty"`
	TimeSpent             int      `json:"timeSpent"`
}

// AssessmentResult is the tiered outcome of a scored quiz attempt.
// Messages are bilingual because quiz results reach the end user.
type AssessmentResult struct {
	Score         int     `json:"score"`
	TotalPossible int     `json:"totalPossible"`
	Percentage    float64 `json:"percentage"`
	Result        string  `json:"result"`
	Message       string  `json:"message"`
	MessageArabic string  `json:"messageArabic"`
	AnimationType string  `json:"animationType"`
}

// QuizAttempt persists one graded submission.
type QuizAttempt struct {
	ID            string       `gorm:"primaryKey;size:36" json:"id"`
	QuizID        string       `gorm:"size:191;index" json:"quizId"`
	UserID        string       `gorm:"size:191;index" json:"userId"`
	Score         int          `json:"score"`
	TotalPossible int          `json:"totalPossible"`
	Percentage    float64      `json:"percentage"`
	Result        string       `gorm:"size:20" json:"result"`
	Answers       []UserAnswer `gorm:"serializer:json;type:json" json:"answers"`
	CreatedAt     time.Time    `json:"createdAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
