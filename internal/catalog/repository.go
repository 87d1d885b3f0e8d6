package catalog

import (
	"context"

	"github.com/gaprints/prints-backend/pkg/db/models"
	"github.com/gaprints/prints-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrintRepository is the read side of the prints table plus the insert used by seeding.
type PrintRepository interface {
	ListAvailable(ctx context.Context, category enums.PrintCategory) ([]models.Print, error)
	FindBySlug(ctx context.Context, slug string) (*models.Print, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Print, error)
	Create(ctx context.Context, record *models.Print) (*models.Print, error)
}

// Repository is the GORM backed PrintRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListAvailable returns purchasable prints, lowest sort order first and newest
// first within the same order. An empty category lists every category.
func (r *Repository) ListAvailable(ctx context.Context, category enums.PrintCategory) ([]models.Print, error) {
	q := r.db.WithContext(ctx).Where("is_available = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var prints []models.Print
	if err := q.Order("sort_order ASC").Order("created_at DESC").Find(&prints).Error; err != nil {
		return nil, err
	}
	return prints, nil
}

// FindBySlug loads a print regardless of availability.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Print, error) {
	var record models.Print
	if err := r.db.WithContext(ctx).First(&record, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByID loads a print regardless of availability.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Print, error) {
	var record models.Print
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a print, assigning an id when missing.
func (r *Repository) Create(ctx context.Context, record *models.Print) (*models.Print, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}
