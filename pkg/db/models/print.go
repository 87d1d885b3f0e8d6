package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gaprints/prints-backend/pkg/enums"
	"github.com/gaprints/prints-backend/pkg/types"
)

// Print is a catalog record for a photograph offered as a physical print.
type Print struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Title       string              `gorm:"column:title;not null"`
	Slug        string              `gorm:"column:slug;not null;uniqueIndex"`
	Category    enums.PrintCategory `gorm:"column:category;not null"`
	ImageRef    string              `gorm:"column:image_ref;not null"`
	Description *string             `gorm:"column:description"`
	Sizes       types.SizeOptions   `gorm:"column:available_sizes;type:jsonb;not null"`
	IsAvailable bool                `gorm:"column:is_available;not null"`
	SortOrder   int                 `gorm:"column:sort_order;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Print) TableName() string { return "prints" }
