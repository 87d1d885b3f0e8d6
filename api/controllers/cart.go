package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gaprints/prints-backend/api/middleware"
	"github.com/gaprints/prints-backend/api/responses"
	"github.com/gaprints/prints-backend/api/validators"
	"github.com/gaprints/prints-backend/internal/cart"
	"github.com/gaprints/prints-backend/internal/signals"
	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
	"github.com/gaprints/prints-backend/pkg/logger"
)

// CartSessions resolves the cart and signal bus of a cart session.
type CartSessions interface {
	Session(id string) *signals.Session
	OncePerNavigation(sessionID, navID string, fn func()) bool
	DeferOpen(sessionID string, stage signals.Stage)
	TakeDeferredOpen(sessionID string) (signals.Stage, bool)
}

const maxIDLength = 64

type cartResponse struct {
	Items    []cart.LineItem `json:"items"`
	Count    int             `json:"count"`
	Subtotal float64         `json:"subtotal"`
}

func newCartResponse(items []cart.LineItem) cartResponse {
	return cartResponse{
		Items:    items,
		Count:    cart.Count(items),
		Subtotal: cart.Subtotal(items).InexactFloat64(),
	}
}

type addItemRequest struct {
	PrintID string `json:"printId" validate:"required"`
	Size    string `json:"size" validate:"required"`
	Qty     int    `json:"qty"`
}

type updateItemRequest struct {
	Qty *int `json:"qty" validate:"required"`
}

type openRequest struct {
	Stage    string `json:"stage"`
	Deferred bool   `json:"deferred"`
}

func sessionFor(sessions CartSessions, r *http.Request) (*signals.Session, error) {
	id := middleware.CartSessionFromContext(r.Context())
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing")
	}
	return sessions.Session(id), nil
}

func CartGet(sessions CartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFor(sessions, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(s.Store.Read(r.Context())))
	}
}

// CartAddItem prices the selection from the catalog and merges it into the cart.
func CartAddItem(sessions CartSessions, prints CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFor(sessions, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		p, err := prints.GetByID(r.Context(), validators.Clean(payload.PrintID, maxIDLength))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := cart.NewLineItem(*p, validators.Clean(payload.Size, maxIDLength), payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		s.Store.AddOrMerge(r.Context(), item)
		responses.WriteSuccess(w, newCartResponse(s.Store.Read(r.Context())))
	}
}

// CartUpdateItem sets a line's quantity; zero or below removes it.
func CartUpdateItem(sessions CartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFor(sessions, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		s.Store.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), *payload.Qty)
		responses.WriteSuccess(w, newCartResponse(s.Store.Read(r.Context())))
	}
}

func CartRemoveItem(sessions CartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFor(sessions, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		s.Store.RemoveItem(r.Context(), chi.URLParam(r, "id"))
		responses.WriteSuccess(w, newCartResponse(s.Store.Read(r.Context())))
	}
}

func CartClear(sessions CartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFor(sessions, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		s.Store.Clear(r.Context())
		responses.WriteSuccess(w, newCartResponse(s.Store.Read(r.Context())))
	}
}

// CartOpen asks every attached view of the session to open the cart. A
// deferred request is held for the next page that attaches instead.
func CartOpen(sessions CartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFor(sessions, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload openRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stage := signals.ParseStage(payload.Stage)
		if payload.Deferred {
			sessions.DeferOpen(s.ID, stage)
		} else {
			s.Bus.Open(stage)
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]any{"stage": stage, "deferred": payload.Deferred})
	}
}

func CartClose(sessions CartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFor(sessions, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		s.Bus.Close()
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "closed"})
	}
}
