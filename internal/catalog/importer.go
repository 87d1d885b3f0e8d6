package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gaprints/prints-backend/pkg/db"
	"github.com/gaprints/prints-backend/pkg/db/models"
	"github.com/gaprints/prints-backend/pkg/enums"
	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
	"github.com/gaprints/prints-backend/pkg/types"
	"gorm.io/gorm"
)

// ImportRecord is one print in a CMS export.
type ImportRecord struct {
	Title          string             `json:"title"`
	Slug           string             `json:"slug"`
	Category       string             `json:"category"`
	Image          string             `json:"image"`
	AvailableSizes []types.SizeOption `json:"availableSizes"`
	Description    *string            `json:"description"`
	IsAvailable    *bool              `json:"isAvailable"`
	Order          *int               `json:"order"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ImportResult counts what an import did.
type ImportResult struct {
	Created int
	Skipped int
}

// Import loads a JSON array of records in one transaction. Prints whose slug
// already exists are skipped, so re-running an export is safe.
func Import(ctx context.Context, runner txRunner, repo *Repository, r io.Reader) (ImportResult, error) {
	var records []ImportRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return ImportResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode catalog export")
	}
	rows := make([]models.Print, 0, len(records))
	for i, rec := range records {
		row, err := rec.toModel()
		if err != nil {
			return ImportResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("record %d", i))
		}
		rows = append(rows, row)
	}

	var result ImportResult
	err := runner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := repo.WithTx(tx)
		for i := range rows {
			_, err := txRepo.FindBySlug(ctx, rows[i].Slug)
			if err == nil {
				result.Skipped++
				continue
			}
			if !db.IsNotFound(err) {
				return err
			}
			if _, err := txRepo.Create(ctx, &rows[i]); err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "duplicate slug "+rows[i].Slug)
				}
				return err
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

func (rec ImportRecord) toModel() (models.Print, error) {
	title := strings.TrimSpace(rec.Title)
	slug := strings.TrimSpace(rec.Slug)
	if title == "" || slug == "" {
		return models.Print{}, fmt.Errorf("title and slug are required")
	}
	category, err := enums.ParsePrintCategory(rec.Category)
	if err != nil {
		return models.Print{}, err
	}
	if strings.TrimSpace(rec.Image) == "" {
		return models.Print{}, fmt.Errorf("image is required")
	}
	if len(rec.AvailableSizes) == 0 {
		return models.Print{}, fmt.Errorf("at least one size is required")
	}
	for _, opt := range rec.AvailableSizes {
		if !enums.PrintSize(opt.Size).IsValid() {
			return models.Print{}, fmt.Errorf("invalid size %q", opt.Size)
		}
		if opt.Price < 0 {
			return models.Print{}, fmt.Errorf("negative price for size %s", opt.Size)
		}
	}

	row := models.Print{
		Title:       title,
		Slug:        slug,
		Category:    category,
		ImageRef:    strings.TrimSpace(rec.Image),
		Description: rec.Description,
		Sizes:       types.SizeOptions(rec.AvailableSizes),
		IsAvailable: true,
		SortOrder:   999,
	}
	if rec.IsAvailable != nil {
		row.IsAvailable = *rec.IsAvailable
	}
	if rec.Order != nil {
		row.SortOrder = *rec.Order
	}
	return row, nil
}
