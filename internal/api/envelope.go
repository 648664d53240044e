package api

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/felixgeelhaar/nvms/internal/errors"
)

// Page is one page of a collection. Bare-array responses are normalized into a
// Page with Count set to the number of results.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether the backend advertised another page.
func (p *Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// Option is a selectable {id, label} pair.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// labelKeys are tried in order when deriving an option label.
var labelKeys = []string{"title", "name", "label"}

// decodePage accepts either {count, next, previous, results} or a bare array.
func decodePage[T any](raw []byte) (*Page[T], error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New(errors.ErrCodeAPIDecode, "list response is not valid JSON")
	}

	root := gjson.ParseBytes(raw)
	switch {
	case root.IsArray():
		var results []T
		if err := json.Unmarshal(raw, &results); err != nil {
			return nil, errors.Wrap(errors.ErrCodeAPIDecode, "failed to decode list", err)
		}
		return &Page[T]{Count: len(results), Results: results}, nil

	case root.IsObject() && root.Get("results").IsArray():
		var page Page[T]
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, errors.Wrap(errors.ErrCodeAPIDecode, "failed to decode page", err)
		}
		if !root.Get("count").Exists() {
			page.Count = len(page.Results)
		}
		return &page, nil

	default:
		return nil, errors.New(errors.ErrCodeAPIDecode, "list response is neither a page nor an array")
	}
}

// OptionFromJSON builds an option from a record. The label is the first non-empty
// of title, name and label, falling back to the id.
func OptionFromJSON(record gjson.Result) (Option, bool) {
	id := record.Get("id")
	if !id.Exists() || id.Type == gjson.Null {
		return Option{}, false
	}

	opt := Option{ID: id.String()}
	for _, key := range labelKeys {
		if label := record.Get(key).String(); label != "" {
			opt.Label = label
			break
		}
	}
	if opt.Label == "" {
		opt.Label = opt.ID
	}
	return opt, true
}

// OptionsFromJSON converts a page or bare array of records into options.
// Records without an id are skipped.
func OptionsFromJSON(raw []byte) ([]Option, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New(errors.ErrCodeAPIDecode, "search response is not valid JSON")
	}

	list := gjson.ParseBytes(raw)
	if list.IsObject() {
		list = list.Get("results")
	}
	if !list.IsArray() {
		return nil, errors.New(errors.ErrCodeAPIDecode, "search response has no results list")
	}

	options := make([]Option, 0, len(list.Array()))
	list.ForEach(func(_, record gjson.Result) bool {
		if opt, ok := OptionFromJSON(record); ok {
			options = append(options, opt)
		}
		return true
	})
	return options, nil
}

// DecodeList decodes a page or bare array and returns the results.
func DecodeList[T any](raw []byte) ([]T, error) {
	page, err := decodePage[T](raw)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}
