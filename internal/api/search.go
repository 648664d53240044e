package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/felixgeelhaar/nvms/internal/errors"
)

// Search runs GET <searchURL>?search=<query> and returns the matches as options.
func (c *Client) Search(ctx context.Context, searchURL, query string) ([]Option, error) {
	raw, err := c.DoRaw(ctx, http.MethodGet, searchURL, url.Values{"search": {query}}, nil)
	if err != nil {
		return nil, err
	}
	return OptionsFromJSON(raw)
}

// Options loads the first page of a collection as options, the initial list a
// select offers before any search.
func (c *Client) Options(ctx context.Context, collectionURL string) ([]Option, error) {
	raw, err := c.DoRaw(ctx, http.MethodGet, collectionURL, nil, nil)
	if err != nil {
		return nil, err
	}
	return OptionsFromJSON(raw)
}

// FetchOption loads a single record by id and converts it to an option.
func (c *Client) FetchOption(ctx context.Context, resourceURL, id string) (Option, error) {
	raw, err := c.DoRaw(ctx, http.MethodGet, itemPath(resourceURL, id), nil, nil)
	if err != nil {
		return Option{}, err
	}
	opt, ok := OptionFromJSON(gjson.ParseBytes(raw))
	if !ok {
		return Option{}, errors.New(errors.ErrCodeAPIDecode, "record has no id: "+itemPath(resourceURL, id))
	}
	return opt, nil
}

// itemPath joins a collection path and an id: projects/ + 42 = projects/42/.
func itemPath(collection, id string) string {
	return strings.TrimSuffix(collection, "/") + "/" + url.PathEscape(id) + "/"
}
