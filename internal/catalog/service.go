package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gaprints/prints-backend/pkg/config"
	"github.com/gaprints/prints-backend/pkg/db"
	"github.com/gaprints/prints-backend/pkg/db/models"
	"github.com/gaprints/prints-backend/pkg/enums"
	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
	"github.com/gaprints/prints-backend/pkg/logger"
	"github.com/gaprints/prints-backend/pkg/redis"
	"github.com/google/uuid"
)

// Cache is the subset of the redis client used to memoize catalog reads.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CatalogKey(parts ...string) string
}

// Service serves the read-only print catalog.
type Service struct {
	repo       PrintRepository
	cache      Cache
	ttl        time.Duration
	cdnProject string
	cdnDataset string
	logg       *logger.Logger
}

// NewService constructs the catalog service. cache may be nil to disable caching.
func NewService(repo PrintRepository, cache Cache, cfg config.CatalogConfig, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("print repository required")
	}
	return &Service{
		repo:       repo,
		cache:      cache,
		ttl:        cfg.CacheTTL,
		cdnProject: cfg.CDNProject,
		cdnDataset: cfg.CDNDataset,
		logg:       logg,
	}, nil
}

// List returns available prints, optionally filtered by category.
func (s *Service) List(ctx context.Context, category string) ([]Print, error) {
	var cat enums.PrintCategory
	if category = strings.TrimSpace(category); category != "" {
		parsed, err := enums.ParsePrintCategory(category)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		cat = parsed
	}

	key := s.cacheKey("list", string(cat))
	var cached []Print
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.repo.ListAvailable(ctx, cat)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list prints")
	}
	out := make([]Print, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.toDTO(row))
	}
	s.toCache(ctx, key, out)
	return out, nil
}

// GetBySlug returns one print by its slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Print, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	return s.getOne(ctx, s.cacheKey("slug", slug), func() (*models.Print, error) {
		return s.repo.FindBySlug(ctx, slug)
	})
}

// GetByID returns one print by id.
func (s *Service) GetByID(ctx context.Context, id string) (*Print, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid print id")
	}
	return s.getOne(ctx, s.cacheKey("id", parsed.String()), func() (*models.Print, error) {
		return s.repo.FindByID(ctx, parsed)
	})
}

func (s *Service) getOne(ctx context.Context, key string, load func() (*models.Print, error)) (*Print, error) {
	var cached Print
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}
	row, err := load()
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "print not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load print")
	}
	out := s.toDTO(*row)
	s.toCache(ctx, key, out)
	return &out, nil
}

func (s *Service) cacheKey(parts ...string) string {
	if s.cache == nil {
		return ""
	}
	if len(parts) == 2 && parts[0] == "list" && parts[1] == "" {
		parts[1] = "all"
	}
	return s.cache.CatalogKey(parts...)
}

// fromCache reports a hit. Misses and cache failures both fall through to the db.
func (s *Service) fromCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil || s.ttl <= 0 {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsMiss(err) {
			s.warn(ctx, key, "catalog cache read failed", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.warn(ctx, key, "catalog cache entry malformed", err)
		return false
	}
	return true
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.warn(ctx, key, "catalog cache write failed", err)
	}
}

func (s *Service) warn(ctx context.Context, key, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"cache_key": key, "error": err.Error()})
	s.logg.Warn(ctx, msg)
}
