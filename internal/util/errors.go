package util

import "errors"

var (
	ErrCacheMiss          = errors.New("cache miss")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuizAlreadyPassed  = errors.New("quiz already passed")
	ErrItemNotAccessible  = errors.New("item not accessible")
	ErrUnknownAction      = errors.New("unknown progress action")
	ErrInvalidDirection   = errors.New("invalid navigation direction")
	ErrGenerationFailed   = errors.New("generation engine failed")
	ErrInvalidLessonShape = errors.New("generated content does not match the lesson shape")
)
