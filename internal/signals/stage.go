package signals

import (
	"net/url"
	"strings"
)

// Stage is the drawer view an open request asks for.
type Stage string

const (
	StageCart     Stage = "cart"
	StageCheckout Stage = "checkout"
)

// ParseStage accepts only the two known stages. Anything else, including
// the empty string, is StageCart.
func ParseStage(value string) Stage {
	if Stage(value) == StageCheckout {
		return StageCheckout
	}
	return StageCart
}

func (s Stage) String() string { return string(s) }

// DeepLink reads a "?cart=open&stage=..." query. ok is false when the query
// does not ask for the cart to open.
func DeepLink(query url.Values) (Stage, bool) {
	if strings.TrimSpace(query.Get("cart")) != "open" {
		return "", false
	}
	return ParseStage(query.Get("stage")), true
}
