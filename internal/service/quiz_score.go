package service

import "lughati_backend/internal/model"

// Tier thresholds (inclusive lower bounds). Regular quizzes carry 20
// questions, the final exam 60.
const (
	RegularQuestionCount = 20
	RegularPassScore     = 12
	regularGoodScore     = 17
	regularExcellent     = 19

	FinalQuestionCount = 60
	FinalPassScore     = 40
	finalGoodScore     = 48
	finalExcellent     = 54
)

type tierMessages struct {
	english   string
	arabic    string
	animation string
}

var messagesByTier = map[string]tierMessages{
	model.TierExcellent: {
		english:   "Outstanding! You have mastered this material.",
		arabic:    "ممتاز! لقد أتقنت هذه المادة.",
		animation: model.AnimationCelebration,
	},
	model.TierGood: {
		english:   "Great work! You know this material well.",
		arabic:    "عمل رائع! أنت تعرف هذه المادة جيدًا.",
		animation: model.AnimationCelebration,
	},
	model.TierPass: {
		english:   "You passed. Keep practicing to strengthen your skills.",
		arabic:    "لقد نجحت. واصل التدريب لتقوية مهاراتك.",
		animation: model.AnimationEncouragement,
	},
	model.TierFailed: {
		english:   "Not this time. Review the lessons and try a fresh quiz.",
		arabic:    "ليس هذه المرة. راجع الدروس وحاول في اختبار جديد.",
		animation: model.AnimationFailure,
	},
}

// ScoreQuiz maps a correct-answer count onto the tiered result. Pure:
// persistence of the attempt is the caller's responsibility.
func ScoreQuiz(correctCount, maxScore, passingScore int, isFinalExam bool) model.AssessmentResult {
	tier := tierFor(correctCount, isFinalExam)
	msgs := messagesByTier[tier]

	percentage := 0.0
	if maxScore > 0 {
		percentage = float64(correctCount) / float64(maxScore) * 100
	}

	return model.AssessmentResult{
		Score:         correctCount,
		TotalPossible: maxScore,
		Percentage:    percentage,
		Result:        tier,
		Message:       msgs.english,
		MessageArabic: msgs.arabic,
		AnimationType: msgs.animation,
	}
}

func tierFor(score int, isFinalExam bool) string {
	if isFinalExam {
		switch {
		case score >= finalExcellent:
			return model.TierExcellent
		case score >= finalGoodScore:
			return model.TierGood
		case score >= FinalPassScore:
			return model.TierPass
		default:
			return model.TierFailed
		}
	}
	switch {
	case score >= regularExcellent:
		return model.TierExcellent
	case score >= regularGoodScore:
		return model.TierGood
	case score >= RegularPassScore:
		return model.TierPass
	default:
		return model.TierFailed
	}
}
