package model

// User levels accepted by the generation endpoints.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// LessonExampleCount is the number of examples every delivered lesson
// must carry. The generation path pads or truncates to this count
// before a lesson is considered complete.
const LessonExampleCount = 20

// LessonContent is the structured blob stored in cached_lessons and
// returned by the generate-lesson endpoint. All user-facing text is
// bilingual (English + Arabic).
type LessonContent struct {
	Title             string             `json:"title"`
	TitleArabic       string             `json:"titleArabic"`
	Explanation       string             `json:"explanation"`
	ExplanationArabic string             `json:"explanationArabic"`
	GrammarRules      []string           `json:"grammarRules"`
	Examples          []LessonExample    `json:"examples"`
	PronunciationTips []string           `json:"pronunciationTips"`
	CommonMistakes    []string           `json:"commonMistakes"`
	PracticeExercises []PracticeExercise `json:"practiceExercises"`
}

type LessonExample struct {
	English     string `json:"english"`
	Arabic      string `json:"arabic"`
	Difficulty  string `json:"difficulty"` // beginner, intermediate, advanced
	Explanation string `json:"explanation"`
}

type PracticeExercise struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
}
