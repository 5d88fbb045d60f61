package service

import (
	"context"
	"fmt"
	"time"

	"lughati_backend/internal/model"
	"lughati_backend/internal/repository"
	"lughati_backend/internal/util"
	"lughati_backend/pkg/logger"

	"go.uber.org/zap"
)

// TotalJourneyItems is the fixed length of the curriculum.
const TotalJourneyItems = 100

// FinalExamIndex is the last curriculum item, a 60-question exam.
const FinalExamIndex = 99

// quizIndices are the fixed positions of the periodic 20-question
// quizzes. The final exam at index 99 is handled separately.
var quizIndices = map[int]bool{
	11: true, 23: true, 34: true, 45: true,
	56: true, 67: true, 78: true, 89: true,
}

// IsQuizIndex reports whether curriculum item i is a quiz (periodic
// or final exam).
func IsQuizIndex(i int) bool {
	return quizIndices[i] || i == FinalExamIndex
}

// curriculumThemes names the ten units of the journey, one per block
// of ten items.
var curriculumThemes = []struct {
	English string
	Arabic  string
}{
	{"Greetings and Introductions", "التحيات والتعارف"},
	{"Family and Home", "العائلة والمنزل"},
	{"Food and Dining", "الطعام وتناول الوجبات"},
	{"Travel and Directions", "السفر والاتجاهات"},
	{"Work and Daily Routine", "العمل والروتين اليومي"},
	{"Shopping and Money", "التسوق والمال"},
	{"Health and Body", "الصحة والجسم"},
	{"Weather and Nature", "الطقس والطبيعة"},
	{"Culture and Celebrations", "الثقافة والاحتفالات"},
	{"Stories and Conversation", "القصص والمحادثة"},
}

// JourneyService applies the progression state machine over the
// 100-item curriculum: accessibility, completion, quiz locking and
// step navigation. Updates are assumed serial per user; there is no
// per-user lock.
type JourneyService struct {
	JourneyRepo *repository.JourneyRepository
}

func NewJourneyService(journeyRepo *repository.JourneyRepository) *JourneyService {
	return &JourneyService{JourneyRepo: journeyRepo}
}

// itemType returns the curriculum type at index i: quizzes sit at the
// fixed indices, every third remaining item is a game, the rest are
// lessons.
func itemType(i int) string {
	if IsQuizIndex(i) {
		return model.ItemTypeQuiz
	}
	if i%3 == 2 {
		return model.ItemTypeGame
	}
	return model.ItemTypeLesson
}

func itemTitle(i int) (string, string) {
	theme := curriculumThemes[(i/10)%len(curriculumThemes)]
	switch {
	case i == FinalExamIndex:
		return "Final Exam", "الامتحان النهائي"
	case IsQuizIndex(i):
		return fmt.Sprintf("Checkpoint Quiz: %s", theme.English),
			fmt.Sprintf("اختبار المرحلة: %s", theme.Arabic)
	case itemType(i) == model.ItemTypeGame:
		return fmt.Sprintf("Game %d: %s", i+1, theme.English),
			fmt.Sprintf("لعبة %d: %s", i+1, theme.Arabic)
	default:
		return fmt.Sprintf("Lesson %d: %s", i+1, theme.English),
			fmt.Sprintf("درس %d: %s", i+1, theme.Arabic)
	}
}

// IsAccessible applies the lookahead rule: exactly one item past the
// user's current position is unlocked.
func IsAccessible(i, currentItemIndex int) bool {
	return i <= currentItemIndex+1
}

// BuildJourney materializes all 100 items against a user's progress.
func BuildJourney(progress *model.UserJourneyProgress) []model.JourneyItem {
	items := make([]model.JourneyItem, TotalJourneyItems)
	for i := range items {
		title, titleArabic := itemTitle(i)
		item := model.JourneyItem{
			ID:          fmt.Sprintf("item_%d", i),
			Index:       i,
			Type:        itemType(i),
			Title:       title,
			TitleArabic: titleArabic,
			Unlocked:    IsAccessible(i, progress.CurrentItemIndex),
			Completed:   progress.HasCompleted(i),
		}
		if i > 0 {
			item.Prereqs = []string{fmt.Sprintf("item_%d", i-1)}
		}
		if item.Type == model.ItemTypeQuiz && progress.HasPassedQuiz(i) {
			item.Locked = true
			item.LockReason = "Quiz passed"
		}
		items[i] = item
	}
	return items
}

func (s *JourneyService) GetJourney(ctx context.Context, userID string) ([]model.JourneyItem, error) {
	progress, err := s.JourneyRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildJourney(progress), nil
}

func (s *JourneyService) GetProgress(ctx context.Context, userID string) (*model.UserJourneyProgress, error) {
	return s.JourneyRepo.GetOrCreate(ctx, userID)
}

// CompleteItem marks a lesson or game as completed, credits the
// score and advances the current position by one. Quizzes go through
// PassQuiz/FailQuiz instead.
func (s *JourneyService) CompleteItem(ctx context.Context, userID string, itemNumber, score int) (*model.UserJourneyProgress, error) {
	if itemNumber < 0 || itemNumber >= TotalJourneyItems {
		return nil, util.ErrItemNotAccessible
	}
	if IsQuizIndex(itemNumber) {
		return nil, util.ErrUnknownAction
	}

	progress, err := s.JourneyRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !IsAccessible(itemNumber, progress.CurrentItemIndex) {
		return nil, util.ErrItemNotAccessible
	}

	if !progress.HasCompleted(itemNumber) {
		progress.CompletedItems = append(progress.CompletedItems, itemNumber)
		progress.TotalScore += score
	}
	switch itemType(itemNumber) {
	case model.ItemTypeGame:
		progress.GameScores[itemNumber] = score
	default:
		progress.LessonCompletion[itemNumber] = true
	}

	if next := itemNumber + 1; next > progress.CurrentItemIndex {
		progress.CurrentItemIndex = minInt(next, TotalJourneyItems)
	}

	if err := s.JourneyRepo.Save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// PassQuiz transitions a quiz item to its terminal Completed-Locked
// state. A passed quiz can never be unlocked or regenerated.
func (s *JourneyService) PassQuiz(ctx context.Context, userID string, itemNumber, score int) (*model.UserJourneyProgress, error) {
	if !IsQuizIndex(itemNumber) {
		return nil, util.ErrUnknownAction
	}

	progress, err := s.JourneyRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if progress.HasPassedQuiz(itemNumber) {
		return nil, util.ErrQuizAlreadyPassed
	}
	if !IsAccessible(itemNumber, progress.CurrentItemIndex) {
		return nil, util.ErrItemNotAccessible
	}

	progress.PassedQuizzes = append(progress.PassedQuizzes, itemNumber)
	if !progress.HasCompleted(itemNumber) {
		progress.CompletedItems = append(progress.CompletedItems, itemNumber)
	}
	progress.QuizScores[itemNumber] = score
	progress.TotalScore += score
	if next := itemNumber + 1; next > progress.CurrentItemIndex {
		progress.CurrentItemIndex = minInt(next, TotalJourneyItems)
	}

	if err := s.JourneyRepo.Save(ctx, progress); err != nil {
		return nil, err
	}

	logger.Log.Info("Quiz passed and locked",
		zap.String("userId", userID), zap.Int("item", itemNumber), zap.Int("score", score))
	return progress, nil
}

// FailQuiz records a failed attempt. The item stays accessible and a
// fresh quiz is generated on the next entry.
func (s *JourneyService) FailQuiz(ctx context.Context, userID string, itemNumber, score int) (*model.UserJourneyProgress, error) {
	if !IsQuizIndex(itemNumber) {
		return nil, util.ErrUnknownAction
	}

	progress, err := s.JourneyRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if progress.HasPassedQuiz(itemNumber) {
		return nil, util.ErrQuizAlreadyPassed
	}
	if !IsAccessible(itemNumber, progress.CurrentItemIndex) {
		return nil, util.ErrItemNotAccessible
	}

	already := false
	for _, f := range progress.FailedQuizzes {
		if f == itemNumber {
			already = true
			break
		}
	}
	if !already {
		progress.FailedQuizzes = append(progress.FailedQuizzes, itemNumber)
	}
	progress.QuizScores[itemNumber] = score

	if err := s.JourneyRepo.Save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// NavigationResult is the outcome of a step request. Blocked requests
// carry a bilingual user-facing reason instead of an error.
type NavigationResult struct {
	Blocked       bool               `json:"blocked"`
	Message       string             `json:"message,omitempty"`
	MessageArabic string             `json:"messageArabic,omitempty"`
	NewIndex      int                `json:"newIndex"`
	State         *model.JourneyItem `json:"navigationState,omitempty"`
}

// Navigate moves one step from currentIndex. Movement into a locked
// (passed) quiz is permitted and returns the locked view; movement
// past the accessibility frontier is blocked.
func (s *JourneyService) Navigate(ctx context.Context, userID, direction string, currentIndex int) (*NavigationResult, error) {
	var target int
	switch direction {
	case "next":
		target = currentIndex + 1
	case "previous":
		target = currentIndex - 1
	default:
		return nil, util.ErrInvalidDirection
	}

	progress, err := s.JourneyRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if target < 0 {
		return &NavigationResult{
			Blocked:       true,
			Message:       "You are at the beginning of the journey.",
			MessageArabic: "أنت في بداية الرحلة.",
			NewIndex:      currentIndex,
		}, nil
	}
	if target >= TotalJourneyItems {
		return &NavigationResult{
			Blocked:       true,
			Message:       "You have reached the end of the journey.",
			MessageArabic: "لقد وصلت إلى نهاية الرحلة.",
			NewIndex:      currentIndex,
		}, nil
	}
	if !IsAccessible(target, progress.CurrentItemIndex) {
		return &NavigationResult{
			Blocked:       true,
			Message:       "Complete the previous items to unlock this one.",
			MessageArabic: "أكمل العناصر السابقة لفتح هذا العنصر.",
			NewIndex:      currentIndex,
		}, nil
	}

	progress.NavigationLog = append(progress.NavigationLog, model.NavigationEvent{
		From:      currentIndex,
		To:        target,
		Direction: direction,
		At:        time.Now(),
	})
	if err := s.JourneyRepo.Save(ctx, progress); err != nil {
		logger.Log.Error("Failed to persist navigation history",
			zap.String("userId", userID), zap.Error(err))
	}

	items := BuildJourney(progress)
	state := items[target]
	return &NavigationResult{
		NewIndex: target,
		State:    &state,
	}, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
