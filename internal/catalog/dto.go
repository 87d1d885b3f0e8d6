package catalog

import (
	"github.com/gaprints/prints-backend/pkg/db/models"
	"github.com/gaprints/prints-backend/pkg/types"
)

// Print is the public shape of a catalog record.
type Print struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	Category    string             `json:"category"`
	ImageURL    string             `json:"imageUrl"`
	Description string             `json:"description,omitempty"`
	IsAvailable bool               `json:"isAvailable"`
	Order       int                `json:"order"`
	Sizes       []types.SizeOption `json:"availableSizes"`
}

// PriceFor returns the price of size, if the print is offered in it.
func (p Print) PriceFor(size string) (float64, bool) {
	opt, ok := types.SizeOptions(p.Sizes).Find(size)
	if !ok {
		return 0, false
	}
	return opt.Price, true
}

func (s *Service) toDTO(m models.Print) Print {
	out := Print{
		ID:          m.ID.String(),
		Title:       m.Title,
		Slug:        m.Slug,
		Category:    m.Category.String(),
		ImageURL:    ImageURL(s.cdnProject, s.cdnDataset, m.ImageRef),
		IsAvailable: m.IsAvailable,
		Order:       m.SortOrder,
		Sizes:       []types.SizeOption(m.Sizes),
	}
	if m.Description != nil {
		out.Description = *m.Description
	}
	if out.Sizes == nil {
		out.Sizes = []types.SizeOption{}
	}
	return out
}
