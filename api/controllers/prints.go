package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gaprints/prints-backend/api/responses"
	"github.com/gaprints/prints-backend/internal/catalog"
	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
	"github.com/gaprints/prints-backend/pkg/logger"
)

// CatalogReader is the read side of the print catalog.
type CatalogReader interface {
	List(ctx context.Context, category string) ([]catalog.Print, error)
	GetBySlug(ctx context.Context, slug string) (*catalog.Print, error)
	GetByID(ctx context.Context, id string) (*catalog.Print, error)
}

// PrintsList returns available prints, optionally filtered by ?category=.
func PrintsList(svc CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := strings.TrimSpace(r.URL.Query().Get("category"))
		prints, err := svc.List(r.Context(), category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prints)
	}
}

func PrintDetail(svc CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}
		p, err := svc.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, p)
	}
}
