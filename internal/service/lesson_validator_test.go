package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"lughati_backend/internal/model"
	"lughati_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLessonJSON(exampleCount int) json.RawMessage {
	examples := make([]model.LessonExample, exampleCount)
	for i := range examples {
		examples[i] = model.LessonExample{
			English: fmt.Sprintf("Good morning, example %d.", i+1),
			Arabic:  "صباح الخير.",
		}
	}
	raw, _ := json.Marshal(map[string]any{
		"title":             "Greetings",
		"titleArabic":       "التحيات",
		"explanation":       "How to greet people in English.",
		"explanationArabic": "كيفية تحية الناس باللغة الإنجليزية.",
		"examples":          examples,
	})
	return raw
}

func TestValidateLesson(t *testing.T) {
	lesson, err := ValidateLesson(validLessonJSON(5))
	require.NoError(t, err)
	assert.Equal(t, "Greetings", lesson.Title)
	assert.Equal(t, "التحيات", lesson.TitleArabic)
	assert.Len(t, lesson.Examples, 5)
}

func TestValidateLesson_Rejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"title":`},
		{"missing arabic title", `{"title":"Greetings","explanation":"x","explanationArabic":"س","examples":[]}`},
		{"empty title", `{"title":"","titleArabic":"التحيات","explanation":"x","explanationArabic":"س","examples":[]}`},
		{"example missing arabic", `{"title":"Greetings","titleArabic":"التحيات","explanation":"x","explanationArabic":"س","examples":[{"english":"Hello."}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateLesson(json.RawMessage(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, util.ErrInvalidLessonShape))
		})
	}
}

func TestNormalizeExamples_PadsShortLessons(t *testing.T) {
	lesson, err := ValidateLesson(validLessonJSON(5))
	require.NoError(t, err)

	NormalizeExamples(lesson, "greetings", "beginner")

	require.Len(t, lesson.Examples, model.LessonExampleCount)
	// The generated examples survive in order; only the tail is padded.
	assert.Equal(t, "Good morning, example 1.", lesson.Examples[0].English)
	assert.NotEmpty(t, lesson.Examples[19].English)
	assert.NotEmpty(t, lesson.Examples[19].Arabic)
}

func TestNormalizeExamples_TruncatesLongLessons(t *testing.T) {
	lesson, err := ValidateLesson(validLessonJSON(30))
	require.NoError(t, err)

	NormalizeExamples(lesson, "greetings", "beginner")

	require.Len(t, lesson.Examples, model.LessonExampleCount)
	assert.Equal(t, "Good morning, example 20.", lesson.Examples[19].English)
}

func TestParseExamples(t *testing.T) {
	bare := json.RawMessage(`[{"english":"Hello.","arabic":"مرحبا."}]`)
	examples, err := ParseExamples(bare)
	require.NoError(t, err)
	assert.Len(t, examples, 1)

	wrapped := json.RawMessage(`{"examples":[{"english":"Hello.","arabic":"مرحبا."},{"english":"Goodbye.","arabic":"وداعا."}]}`)
	examples, err = ParseExamples(wrapped)
	require.NoError(t, err)
	assert.Len(t, examples, 2)

	_, err = ParseExamples(json.RawMessage(`"nope"`))
	assert.Error(t, err)
}

func TestFallbackLesson(t *testing.T) {
	lesson := FallbackLesson("weather", "beginner")

	assert.NotEmpty(t, lesson.Title)
	assert.NotEmpty(t, lesson.TitleArabic)
	assert.NotEmpty(t, lesson.Explanation)
	assert.NotEmpty(t, lesson.ExplanationArabic)
	assert.Len(t, lesson.Examples, model.LessonExampleCount)

	// The fallback must itself pass the validation it substitutes for.
	raw, err := json.Marshal(lesson)
	require.NoError(t, err)
	_, err = ValidateLesson(raw)
	assert.NoError(t, err)
}
