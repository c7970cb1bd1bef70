package minio

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/infrastructure"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"

	"github.com/google/uuid"
)

const (
	imagesPrefix   = "products"
	cleanupRetries = 3
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// MinioInfrastructure управляет загрузкой и очисткой изображений локальных товаров в MinIO.
type MinioInfrastructure struct {
	minioRepo   usecase.ImageRepository
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	publicURL   string
	wg          sync.WaitGroup
}

func NewMinioInfrastructure(minioRepo usecase.ImageRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.MinioEndpoint)
	}

	return &MinioInfrastructure{
		minioRepo:   minioRepo,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		publicURL:   fmt.Sprintf("%s/%s/", publicURL, cfg.BucketName),
	}
}

// UploadImage загружает изображение товара и возвращает ключ объекта и публичный URL.
func (m *MinioInfrastructure) UploadImage(ctx context.Context, req *usecase.UploadImageReq) (*usecase.UploadImageRes, error) {
	const op = "MinioInfrastructure.UploadImage"

	image := req.Image
	if m.cfg.MaxImageSize > 0 && image.Size > m.cfg.MaxImageSize {
		return nil, e.Wrap(op, e.ErrFileTooLarge)
	}

	ext, err := infrastructure.GetExtensionFromMIME(image.MimeType)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("invalid mime type %s for %s: %w", image.MimeType, image.Name, err))
	}

	imageID := uuid.NewString()
	objKey := fmt.Sprintf("%s/%s-%s.%s", imagesPrefix, slug(req.Title), imageID, ext)
	newImage := domain.NewImage(imageID, m.cfg.BucketName, objKey, image.Data, image.MimeType)

	key, err := m.minioRepo.Upload(ctx, newImage)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("upload %s failed: %w", image.Name, err))
	}

	return usecase.NewUploadImageRes(key, m.publicURL+key), nil
}

// CleanupImages запускает фоновое удаление изображений по их URL.
// URL, не принадлежащие бакету, пропускаются.
func (m *MinioInfrastructure) CleanupImages(imageURLs []string) {
	keys := make([]string, 0, len(imageURLs))
	for _, u := range imageURLs {
		if key, ok := strings.CutPrefix(u, m.publicURL); ok && key != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return
	}

	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет указанные объекты из MinIO с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done()
	const (
		op          = "MinioInfrastructure.cleanupUploadedKeys"
		baseBackoff = time.Second
		maxBackoff  = 10 * time.Second
	)
	m.logger.Infof("%s: Cleaning up %d image(s)", op, len(keys))

	ctx, cancel := context.WithTimeout(m.shutdownCtx, 30*time.Second)
	defer cancel()

	policy := jitter.Policy{Attempts: cleanupRetries, Base: baseBackoff, Max: maxBackoff}
	for _, key := range keys {
		err := jitter.Retry(ctx, policy, func(ctx context.Context) error {
			return m.minioRepo.Delete(ctx, key)
		}, nil)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			m.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
			return
		}
		if err != nil {
			m.logger.Warnf("failed to delete image %s: %v", key, e.Wrap(op, err))
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}

// slug приводит название товара к виду, пригодному для ключа объекта.
func slug(title string) string {
	s := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if s == "" {
		return "image"
	}
	if len(s) > 48 {
		s = strings.TrimRight(s[:48], "-")
	}

	return s
}
