package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/city-explorer-api/internal/infrastructure/gemini"
)

// RouteIntent is the structured verdict of the navigation analysis. A
// true ShouldCreateRoute must come with at least one candidate index.
type RouteIntent struct {
	ShouldCreateRoute bool   `json:"shouldCreateRoute"`
	PlaceIndices      []int  `json:"placeIndices" validate:"required,dive,gte=0"`
	Explanation       string `json:"explanation"`
}

var validate = validator.New()

// ParseRouteIntent extracts and strictly validates the intent JSON from a
// model reply. Unknown fields, missing fields and negative indices are
// all rejected so a malformed reply falls through to plain chat instead
// of building a bogus route.
func ParseRouteIntent(text string) (*RouteIntent, error) {
	raw, ok := gemini.ExtractJSON(text)
	if !ok {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.DisallowUnknownFields()

	var intent RouteIntent
	if err := decoder.Decode(&intent); err != nil {
		return nil, fmt.Errorf("intent JSON malformed: %w", err)
	}

	if err := validate.Struct(&intent); err != nil {
		return nil, fmt.Errorf("intent JSON invalid: %w", err)
	}

	if intent.ShouldCreateRoute && len(intent.PlaceIndices) == 0 {
		return nil, fmt.Errorf("intent requests route without a candidate index")
	}

	return &intent, nil
}

// knownCategories are the codes the classifier prompt enumerates.
var knownCategories = map[string]bool{
	"atm":        true,
	"cafe":       true,
	"restaurant": true,
	"pharmacy":   true,
	"hospital":   true,
	"market":     true,
	"park":       true,
	"museum":     true,
}

// ParseCategory normalizes a classifier reply to a known category code.
// "none" and anything outside the enumerated set yield an empty string.
func ParseCategory(text string) string {
	category := strings.ToLower(strings.TrimSpace(text))
	category = strings.Trim(category, `"'.`)
	if knownCategories[category] {
		return category
	}
	return ""
}
