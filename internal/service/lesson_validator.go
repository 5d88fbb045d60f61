package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"lughati_backend/internal/model"
	"lughati_backend/internal/util"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// lessonSchema enforces the required bilingual fields before a
// generated lesson is accepted. The 20-example invariant is handled
// separately by NormalizeExamples so short responses can be topped up
// instead of rejected outright.
const lessonSchema = `{
	"type": "object",
	"required": ["title", "titleArabic", "explanation", "explanationArabic", "examples"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"titleArabic": {"type": "string", "minLength": 1},
		"explanation": {"type": "string", "minLength": 1},
		"explanationArabic": {"type": "string", "minLength": 1},
		"grammarRules": {"type": "array", "items": {"type": "string"}},
		"examples": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["english", "arabic"],
				"properties": {
					"english": {"type": "string", "minLength": 1},
					"arabic": {"type": "string", "minLength": 1},
					"difficulty": {"type": "string"},
					"explanation": {"type": "string"}
				}
			}
		},
		"pronunciationTips": {"type": "array", "items": {"type": "string"}},
		"commonMistakes": {"type": "array", "items": {"type": "string"}},
		"practiceExercises": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["question", "answer"]
			}
		}
	}
}`

var (
	compiledLessonSchema *jsonschema.Schema
	lessonSchemaOnce     sync.Once
)

func getLessonSchema() *jsonschema.Schema {
	lessonSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(lessonSchema))
		if err != nil {
			panic(fmt.Sprintf("lesson schema is not valid JSON: %v", err))
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://lesson.json", doc); err != nil {
			panic(fmt.Sprintf("add lesson schema resource: %v", err))
		}
		s, err := c.Compile("schema://lesson.json")
		if err != nil {
			panic(fmt.Sprintf("compile lesson schema: %v", err))
		}
		compiledLessonSchema = s
	})
	return compiledLessonSchema
}

// ValidateLesson parses raw engine output into a LessonContent,
// rejecting anything that misses the required bilingual fields.
// Callers substitute the fallback lesson on error.
func ValidateLesson(raw json.RawMessage) (*model.LessonContent, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidLessonShape, err)
	}

	if err := getLessonSchema().Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidLessonShape, err)
	}

	var lesson model.LessonContent
	if err := json.Unmarshal(raw, &lesson); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidLessonShape, err)
	}
	return &lesson, nil
}

// ParseExamples parses the output of a supplementary "generate N more
// examples" call. Accepts either a bare array or {"examples": [...]}.
func ParseExamples(raw json.RawMessage) ([]model.LessonExample, error) {
	var examples []model.LessonExample
	if err := json.Unmarshal(raw, &examples); err == nil {
		return examples, nil
	}

	var wrapped struct {
		Examples []model.LessonExample `json:"examples"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidLessonShape, err)
	}
	return wrapped.Examples, nil
}

// NormalizeExamples pads or truncates to exactly LessonExampleCount
// examples so downstream consumers never branch on count. Padding
// synthesizes placeholder examples in the lesson's topic.
func NormalizeExamples(lesson *model.LessonContent, topic, level string) {
	if len(lesson.Examples) > model.LessonExampleCount {
		lesson.Examples = lesson.Examples[:model.LessonExampleCount]
		return
	}
	for i := len(lesson.Examples); i < model.LessonExampleCount; i++ {
		lesson.Examples = append(lesson.Examples, placeholderExample(topic, level, i))
	}
}

func placeholderExample(topic, level string, index int) model.LessonExample {
	return model.LessonExample{
		English:     fmt.Sprintf("Practice sentence %d about %s.", index+1, topic),
		Arabic:      fmt.Sprintf("جملة تدريبية %d حول %s.", index+1, topic),
		Difficulty:  level,
		Explanation: "Placeholder example; regenerate this lesson for richer material.",
	}
}

// FallbackLesson synthesizes a shape-complete placeholder lesson used
// when the generation engine is unreachable or returns output that
// fails validation. It is cached like any other generation so repeated
// failures do not hammer the engine.
func FallbackLesson(topic, level string) *model.LessonContent {
	lesson := &model.LessonContent{
		Title:             fmt.Sprintf("Lesson: %s", topic),
		TitleArabic:       fmt.Sprintf("درس: %s", topic),
		Explanation:       fmt.Sprintf("This lesson about %s is temporarily unavailable in full. The material below is placeholder content.", topic),
		ExplanationArabic: fmt.Sprintf("هذا الدرس حول %s غير متوفر بالكامل مؤقتًا. المحتوى أدناه هو محتوى مؤقت.", topic),
		GrammarRules: []string{
			fmt.Sprintf("Core grammar for %s will appear here once generation succeeds.", topic),
		},
		PronunciationTips: []string{
			"Listen to native speakers and repeat slowly.",
		},
		CommonMistakes: []string{
			"Relying on word-for-word translation between Arabic and English.",
		},
		PracticeExercises: []model.PracticeExercise{
			{
				Question:    fmt.Sprintf("Write one sentence in English about %s.", topic),
				Answer:      "Answers vary.",
				Explanation: "Free practice while full content is regenerated.",
			},
		},
	}
	NormalizeExamples(lesson, topic, level)
	return lesson
}
