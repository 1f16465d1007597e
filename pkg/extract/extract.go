// Package extract pulls the result reference out of a generation callback.
//
// The provider is inconsistent about where the image URL lives, so the
// precedence below is a documented contract with it, not a stylistic choice:
//
//  1. the first element of a "result" list,
//  2. a singular "result" string,
//  3. the "url" field of the first "full_response" element.
//
// Strategies are tried in order; the first match wins.
package extract

import (
	"encoding/json"
	"errors"

	"github.com/chris/imagegen-credits/pkg/models"
)

// ErrNoResultRef is returned when no strategy can produce a result reference.
// Callers downgrade the callback to the failed path.
var ErrNoResultRef = errors.New("no result reference in callback payload")

type strategy func(cb *models.GenerationCallback) (string, bool)

var strategies = []strategy{
	fromResultList,
	fromResultString,
	fromFullResponse,
}

// ResultRef extracts the result reference from a success callback.
func ResultRef(cb *models.GenerationCallback) (string, error) {
	for _, s := range strategies {
		if ref, ok := s(cb); ok {
			return ref, nil
		}
	}
	return "", ErrNoResultRef
}

func fromResultList(cb *models.GenerationCallback) (string, bool) {
	var list []string
	if err := json.Unmarshal(cb.Result, &list); err != nil {
		return "", false
	}
	if len(list) == 0 || list[0] == "" {
		return "", false
	}
	return list[0], true
}

func fromResultString(cb *models.GenerationCallback) (string, bool) {
	var ref string
	if err := json.Unmarshal(cb.Result, &ref); err != nil {
		return "", false
	}
	return ref, ref != ""
}

func fromFullResponse(cb *models.GenerationCallback) (string, bool) {
	var items []struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(cb.FullResponse, &items); err != nil {
		return "", false
	}
	if len(items) == 0 || items[0].URL == "" {
		return "", false
	}
	return items[0].URL, true
}
