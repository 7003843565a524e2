package transport

import (
	"bytes"
	"encoding/json"

	"github.com/cloudopshq/cloudops-go/internal/utils"
	"github.com/pkg/errors"
)

// Page is one page of a list endpoint. The backend returns either a bare
// JSON array or a paginated envelope {count, next, previous, results}
// depending on the view; both decode into the same shape.
type Page[T any] struct {
	Count    int
	Next     string
	Previous string
	Results  []T
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return errors.Wrap(err, "[Page.UnmarshalJSON] bare array")
		}
		p.Count = len(items)
		p.Results = items
		return nil
	}

	var envelope struct {
		Count    int     `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []T     `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return errors.Wrap(err, "[Page.UnmarshalJSON] envelope")
	}
	p.Count = envelope.Count
	p.Next = utils.Value(envelope.Next)
	p.Previous = utils.Value(envelope.Previous)
	p.Results = envelope.Results
	return nil
}
