package controllers

import (
	"net/http"

	"github.com/gaprints/prints-backend/api/responses"
	"github.com/gaprints/prints-backend/internal/shipping"
)

type shippingZoneResponse struct {
	Code  string  `json:"code"`
	Label string  `json:"label"`
	Rate  float64 `json:"rate"`
}

func ShippingZones() http.HandlerFunc {
	zones := shipping.Zones()
	body := make([]shippingZoneResponse, 0, len(zones))
	for _, z := range zones {
		body = append(body, shippingZoneResponse{Code: z.Code.String(), Label: z.Label, Rate: z.Rate.InexactFloat64()})
	}
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, body)
	}
}
