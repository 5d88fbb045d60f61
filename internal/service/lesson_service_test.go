package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lughati_backend/internal/config"
	"lughati_backend/internal/model"
	"lughati_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatReply wraps content in the completion envelope the engine
// client expects.
func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
}

func newLessonService(t *testing.T, baseURL string) (*LessonService, *repository.LessonCacheRepository) {
	t.Helper()
	cacheRepo := repository.NewLessonCacheRepository(newTestDB(t), nil, time.Minute)
	ai := NewAIService(config.AIConfig{BaseURL: baseURL, Model: "test-model", Timeout: 2 * time.Second})
	embedding := NewEmbeddingService(config.EmbeddingConfig{})
	return NewLessonService(cacheRepo, ai, embedding), cacheRepo
}

func examplesJSON(t *testing.T, count int) string {
	t.Helper()
	examples := make([]model.LessonExample, count)
	for i := range examples {
		examples[i] = model.LessonExample{English: "Another example.", Arabic: "مثال آخر."}
	}
	raw, err := json.Marshal(map[string]any{"examples": examples})
	require.NoError(t, err)
	return string(raw)
}

func TestGenerateLesson_ShortEngineOutputToppedUpAndPadded(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			chatReply(t, w, string(validLessonJSON(5)))
			return
		}
		// Top-up calls return three examples each.
		chatReply(t, w, examplesJSON(t, 3))
	}))
	defer server.Close()

	svc, cacheRepo := newLessonService(t, server.URL)
	ctx := context.Background()

	resp, err := svc.GenerateLesson(ctx, LessonRequest{Topic: "greetings", UserLevel: model.LevelBeginner})
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	require.Len(t, resp.Lesson.Examples, model.LessonExampleCount,
		"5 generated + 3*3 topped up + padding")
	assert.Equal(t, "Good morning, example 1.", resp.Lesson.Examples[0].English)

	// 1 lesson call + 3 top-up attempts.
	assert.Equal(t, int32(4), calls.Load())

	cached, err := cacheRepo.Get(ctx, DeriveLessonKey("greetings", model.LevelBeginner, nil))
	require.NoError(t, err)
	assert.False(t, cached.IsFallback)
	assert.Len(t, cached.LessonContent.Examples, model.LessonExampleCount)
}

func TestGenerateLesson_SecondRequestServedFromCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		chatReply(t, w, string(validLessonJSON(model.LessonExampleCount)))
	}))
	defer server.Close()

	svc, _ := newLessonService(t, server.URL)
	ctx := context.Background()
	req := LessonRequest{Topic: "greetings", UserLevel: model.LevelBeginner}

	first, err := svc.GenerateLesson(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	engineCalls := calls.Load()

	second, err := svc.GenerateLesson(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Lesson.Title, second.Lesson.Title)
	assert.Equal(t, engineCalls, calls.Load(), "a hit never reaches the engine")
}

func TestGenerateLesson_UnreachableEngineServesAndCachesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	svc, cacheRepo := newLessonService(t, server.URL)
	ctx := context.Background()

	resp, err := svc.GenerateLesson(ctx, LessonRequest{Topic: "weather", UserLevel: model.LevelBeginner})
	require.NoError(t, err, "an unreachable engine degrades, never errors")
	assert.False(t, resp.Cached)
	assert.Len(t, resp.Lesson.Examples, model.LessonExampleCount)
	assert.NotEmpty(t, resp.Lesson.TitleArabic)

	cached, err := cacheRepo.Get(ctx, DeriveLessonKey("weather", model.LevelBeginner, nil))
	require.NoError(t, err, "the fallback is cached like any generation")
	assert.True(t, cached.IsFallback)
}

func TestGenerateLesson_InvalidEngineOutputServesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{"title": "Greetings, no Arabic anywhere"}`)
	}))
	defer server.Close()

	svc, cacheRepo := newLessonService(t, server.URL)
	ctx := context.Background()

	resp, err := svc.GenerateLesson(ctx, LessonRequest{Topic: "travel", UserLevel: model.LevelIntermediate})
	require.NoError(t, err)
	assert.Len(t, resp.Lesson.Examples, model.LessonExampleCount)

	cached, err := cacheRepo.Get(ctx, DeriveLessonKey("travel", model.LevelIntermediate, nil))
	require.NoError(t, err)
	assert.True(t, cached.IsFallback)
}
