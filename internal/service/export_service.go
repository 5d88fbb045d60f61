package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"lughati_backend/internal/config"
	"lughati_backend/internal/model"
	"lughati_backend/internal/repository"
	"lughati_backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider abstracts where enhancement exports land.
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
}

// LocalStorageProvider writes exports under a local directory.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return dst, nil
}

// MinioStorageProvider ships exports to an S3-compatible bucket.
type MinioStorageProvider struct {
	Client *minio.Client
	Bucket string
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Client: client, Bucket: cfg.MinioBucket}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Bucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", p.Bucket, filename), nil
}

// ExportService ships enhancement-flagged lessons to object storage
// for offline reprocessing. This is the batch home for the advisory
// triggers; nothing here touches the live cache.
type ExportService struct {
	EnhancementRepo *repository.EnhancementRepository
	CacheRepo       *repository.LessonCacheRepository
	Storage         StorageProvider
}

func NewExportService(cfg *config.Config, enhancementRepo *repository.EnhancementRepository, cacheRepo *repository.LessonCacheRepository) (*ExportService, error) {
	var storage StorageProvider
	if cfg.Storage.Type == "minio" {
		provider, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			return nil, err
		}
		storage = provider
	} else {
		storage = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &ExportService{
		EnhancementRepo: enhancementRepo,
		CacheRepo:       cacheRepo,
		Storage:         storage,
	}, nil
}

// exportBundle is the JSON document written per export run.
type exportBundle struct {
	ExportedAt time.Time                 `json:"exportedAt"`
	Triggers   []model.LessonEnhancement `json:"triggers"`
	Lessons    []model.CachedLesson      `json:"lessons"`
}

type ExportResult struct {
	Location     string `json:"location,omitempty"`
	TriggerCount int    `json:"triggerCount"`
	LessonCount  int    `json:"lessonCount"`
}

// ExportPending bundles all unexported triggers with their lessons,
// uploads the bundle and marks the triggers exported.
func (s *ExportService) ExportPending(ctx context.Context) (*ExportResult, error) {
	triggers, err := s.EnhancementRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if len(triggers) == 0 {
		return &ExportResult{}, nil
	}

	keySet := make(map[string]bool)
	ids := make([]uint, 0, len(triggers))
	for _, t := range triggers {
		keySet[t.LessonKey] = true
		ids = append(ids, t.ID)
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}

	lessons, err := s.CacheRepo.FindByKeys(ctx, keys)
	if err != nil {
		return nil, err
	}

	bundle := exportBundle{
		ExportedAt: time.Now(),
		Triggers:   triggers,
		Lessons:    lessons,
	}
	payload, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("enhancements/%s.json", time.Now().Format("2006-01-02T15-04-05"))
	location, err := s.Storage.Upload(ctx, filename, bytes.NewReader(payload), int64(len(payload)), "application/json")
	if err != nil {
		return nil, err
	}

	if err := s.EnhancementRepo.MarkExported(ctx, ids); err != nil {
		logger.Log.Error("Failed to mark enhancement triggers exported", zap.Error(err))
	}

	logger.Log.Info("Enhancement export completed",
		zap.String("location", location),
		zap.Int("triggers", len(triggers)),
		zap.Int("lessons", len(lessons)))

	return &ExportResult{
		Location:     location,
		TriggerCount: len(triggers),
		LessonCount:  len(lessons),
	}, nil
}
