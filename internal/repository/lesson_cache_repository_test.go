package repository

import (
	"context"
	"testing"
	"time"

	"lughati_backend/internal/model"
	"lughati_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLesson(key string) *model.CachedLesson {
	return &model.CachedLesson{
		LessonKey: key,
		Topic:     "greetings",
		UserLevel: model.LevelBeginner,
		LessonContent: model.LessonContent{
			Title:             "Greetings",
			TitleArabic:       "التحيات",
			Explanation:       "How to greet people.",
			ExplanationArabic: "كيفية تحية الناس.",
			Examples: []model.LessonExample{
				{English: "Good morning.", Arabic: "صباح الخير."},
			},
		},
	}
}

func TestLessonCache_MissThenHit(t *testing.T) {
	repo := NewLessonCacheRepository(newTestDB(t), nil, time.Minute)
	ctx := context.Background()

	_, err := repo.Get(ctx, "lesson_greetings_beginner_general")
	assert.ErrorIs(t, err, util.ErrCacheMiss)

	require.NoError(t, repo.Put(ctx, testLesson("lesson_greetings_beginner_general")))

	got, err := repo.Get(ctx, "lesson_greetings_beginner_general")
	require.NoError(t, err)
	assert.Equal(t, "Greetings", got.LessonContent.Title)
	assert.Equal(t, "التحيات", got.LessonContent.TitleArabic)
}

func TestLessonCache_HitBumpsUsageCountByOne(t *testing.T) {
	repo := NewLessonCacheRepository(newTestDB(t), nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testLesson("k")))

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, want, got.UsageCount)
	}
}

func TestLessonCache_HitReportsDurableCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewLessonCacheRepository(db, nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testLesson("k")))
	_, err := repo.Get(ctx, "k")
	require.NoError(t, err)

	// Bump the durable counter out of band, as a hit through another
	// replica's hot copy would. The next hit must report the counter's
	// true value, not a local increment of a stale copy.
	require.NoError(t, db.Model(&model.CachedLesson{}).
		Where("lesson_key = ?", "k").
		UpdateColumn("usage_count", 10).Error)

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.UsageCount)
}

func TestLessonCache_PutDefaults(t *testing.T) {
	repo := NewLessonCacheRepository(newTestDB(t), nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testLesson("k")))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.NotNil(t, got.EnhancementLog)
	assert.Empty(t, got.EnhancementLog)
	assert.Equal(t, 1.0, got.ImprovementScore)
}

func TestLessonCache_OverwriteResetsCounters(t *testing.T) {
	repo := NewLessonCacheRepository(newTestDB(t), nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testLesson("k")))
	_, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, repo.AppendEnhancementLog(ctx, "k", "repeated questions"))

	// Overwrite is wholesale: counters and log do not survive.
	fresh := testLesson("k")
	fresh.LessonContent.Title = "Greetings, revised"
	require.NoError(t, repo.Put(ctx, fresh))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "Greetings, revised", got.LessonContent.Title)
	assert.Equal(t, int64(1), got.UsageCount, "count restarts at zero, this read is the first hit")
	assert.Empty(t, got.EnhancementLog)
}

func TestLessonCache_AppendEnhancementLog(t *testing.T) {
	repo := NewLessonCacheRepository(newTestDB(t), nil, time.Minute)
	ctx := context.Background()

	assert.ErrorIs(t, repo.AppendEnhancementLog(ctx, "absent", "x"), util.ErrLessonNotFound)

	require.NoError(t, repo.Put(ctx, testLesson("k")))
	require.NoError(t, repo.AppendEnhancementLog(ctx, "k", "first trigger"))
	require.NoError(t, repo.AppendEnhancementLog(ctx, "k", "second trigger"))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"first trigger", "second trigger"}, got.EnhancementLog)
}

func TestLessonCache_FindByKeys(t *testing.T) {
	repo := NewLessonCacheRepository(newTestDB(t), nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testLesson("a")))
	require.NoError(t, repo.Put(ctx, testLesson("b")))
	require.NoError(t, repo.Put(ctx, testLesson("c")))

	lessons, err := repo.FindByKeys(ctx, []string{"a", "c", "absent"})
	require.NoError(t, err)
	assert.Len(t, lessons, 2)
}

func TestJourneyRepository_GetOrCreate(t *testing.T) {
	repo := NewJourneyRepository(newTestDB(t))
	ctx := context.Background()

	progress, err := repo.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, progress.CurrentItemIndex)
	assert.NotNil(t, progress.QuizScores)
	assert.NotNil(t, progress.GameScores)
	assert.NotNil(t, progress.LessonCompletion)

	progress.CurrentItemIndex = 5
	progress.CompletedItems = []int{0, 1, 2, 3, 4}
	progress.QuizScores[11] = 15
	require.NoError(t, repo.Save(ctx, progress))

	reloaded, err := repo.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.CurrentItemIndex)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, reloaded.CompletedItems)
	assert.Equal(t, 15, reloaded.QuizScores[11])
}
