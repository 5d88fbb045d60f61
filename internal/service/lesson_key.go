package service

import (
	"fmt"
	"strings"
)

// DeriveLessonKey maps (topic, level, lesson number) to the cache key
// `lesson_{topic}_{level}_{n|general}`. Pure and deterministic: the
// topic is lowercased and stripped of non-alphanumerics, so two
// requests that normalize identically are deliberately de-duplicated.
func DeriveLessonKey(topic, level string, lessonNumber *int) string {
	suffix := "general"
	if lessonNumber != nil {
		suffix = fmt.Sprintf("%d", *lessonNumber)
	}
	return fmt.Sprintf("lesson_%s_%s_%s", normalizeTopic(topic), strings.ToLower(level), suffix)
}

// DeriveQuizKey maps a quiz id and type to its cache key.
func DeriveQuizKey(quizID, quizType string) string {
	return fmt.Sprintf("quiz_%s_%s", normalizeTopic(quizID), strings.ToLower(quizType))
}

func normalizeTopic(topic string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(topic) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
