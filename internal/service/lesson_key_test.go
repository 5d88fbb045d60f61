package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestDeriveLessonKey(t *testing.T) {
	tests := []struct {
		name         string
		topic        string
		level        string
		lessonNumber *int
		want         string
	}{
		{
			name:  "general lesson without a number",
			topic: "greetings", level: "beginner",
			want: "lesson_greetings_beginner_general",
		},
		{
			name:  "numbered lesson",
			topic: "greetings", level: "beginner", lessonNumber: intPtr(3),
			want: "lesson_greetings_beginner_3",
		},
		{
			name:  "topic is lowercased",
			topic: "Greetings", level: "Beginner",
			want: "lesson_greetings_beginner_general",
		},
		{
			name:  "punctuation and spaces are stripped",
			topic: "Food & Dining!", level: "intermediate", lessonNumber: intPtr(7),
			want: "lesson_fooddining_intermediate_7",
		},
		{
			name:  "arabic letters are stripped along with other non-ascii",
			topic: "تحيات greetings 101", level: "advanced",
			want: "lesson_greetings101_advanced_general",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveLessonKey(tt.topic, tt.level, tt.lessonNumber))
		})
	}
}

func TestDeriveLessonKey_Deterministic(t *testing.T) {
	a := DeriveLessonKey("Travel and Directions", "beginner", intPtr(12))
	b := DeriveLessonKey("Travel and Directions", "beginner", intPtr(12))
	assert.Equal(t, a, b)
}

func TestDeriveLessonKey_NormalizationCollides(t *testing.T) {
	// Topics that normalize identically share one cache slot.
	a := DeriveLessonKey("Food & Dining", "beginner", nil)
	b := DeriveLessonKey("food dining", "beginner", nil)
	assert.Equal(t, a, b)
}

func TestDeriveQuizKey(t *testing.T) {
	assert.Equal(t, "quiz_checkpoint11_regular", DeriveQuizKey("Checkpoint-11", "Regular"))
	assert.Equal(t, "quiz_finalexam_final", DeriveQuizKey("final exam", "final"))
}
