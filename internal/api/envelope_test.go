package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/felixgeelhaar/nvms/internal/errors"
)

func TestDecodePage(t *testing.T) {
	t.Run("envelope", func(t *testing.T) {
		page, err := decodePage[projectRow]([]byte(`{"count":12,"next":"http://host/api/projects/?page=2","previous":null,"results":[{"id":1,"title":"Apollo"}]}`))
		require.NoError(t, err)
		assert.Equal(t, 12, page.Count)
		assert.True(t, page.HasNext())
		assert.Nil(t, page.Previous)
		assert.Len(t, page.Results, 1)
	})

	t.Run("bare array", func(t *testing.T) {
		page, err := decodePage[projectRow]([]byte(`[{"id":1,"title":"Apollo"},{"id":2,"title":"Gemini"}]`))
		require.NoError(t, err)
		assert.Equal(t, 2, page.Count)
		assert.False(t, page.HasNext())
	})

	t.Run("results without count", func(t *testing.T) {
		page, err := decodePage[projectRow]([]byte(`{"results":[{"id":1}]}`))
		require.NoError(t, err)
		assert.Equal(t, 1, page.Count)
	})

	t.Run("unexpected shape", func(t *testing.T) {
		_, err := decodePage[projectRow]([]byte(`{"detail":"nope"}`))
		assert.True(t, errors.IsCode(err, errors.ErrCodeAPIDecode))
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := decodePage[projectRow]([]byte(`{`))
		assert.True(t, errors.IsCode(err, errors.ErrCodeAPIDecode))
	})
}

func TestOptionFromJSON(t *testing.T) {
	tests := []struct {
		name   string
		record string
		want   Option
		ok     bool
	}{
		{"title wins", `{"id":1,"title":"T","name":"N","label":"L"}`, Option{ID: "1", Label: "T"}, true},
		{"name next", `{"id":2,"name":"N","label":"L"}`, Option{ID: "2", Label: "N"}, true},
		{"label last", `{"id":"abc","label":"L"}`, Option{ID: "abc", Label: "L"}, true},
		{"empty title skipped", `{"id":3,"title":"","name":"N"}`, Option{ID: "3", Label: "N"}, true},
		{"id fallback", `{"id":4}`, Option{ID: "4", Label: "4"}, true},
		{"missing id", `{"title":"T"}`, Option{}, false},
		{"null id", `{"id":null,"title":"T"}`, Option{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := OptionFromJSON(gjson.Parse(tt.record))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionsFromJSON(t *testing.T) {
	opts, err := OptionsFromJSON([]byte(`{"results":[{"id":1,"name":"EUR"},{"name":"no id"},{"id":2,"title":"USD"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []Option{{ID: "1", Label: "EUR"}, {ID: "2", Label: "USD"}}, opts)

	opts, err = OptionsFromJSON([]byte(`[{"id":9,"label":"Groceries"}]`))
	require.NoError(t, err)
	assert.Equal(t, []Option{{ID: "9", Label: "Groceries"}}, opts)

	_, err = OptionsFromJSON([]byte(`{"detail":"x"}`))
	assert.Error(t, err)
}

func TestStatusErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail", `{"detail":"Not found."}`, "Not found."},
		{"non field", `{"non_field_errors":["Dates overlap"]}`, "Dates overlap"},
		{"field errors", `{"title":["This field is required."],"amount":["A valid number is required."]}`, "amount: A valid number is required.; title: This field is required."},
		{"plain text", `Bad Gateway`, "Bad Gateway"},
		{"empty", ``, "Bad Request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newStatusError("POST", "projects/", 400, []byte(tt.body), "")
			assert.Equal(t, tt.want, err.Message)
		})
	}
}

func TestStatusErrorFieldErrors(t *testing.T) {
	err := newStatusError("POST", "projects/", 400, []byte(`{"title":["Required."],"detail":"Invalid"}`), "")
	fields := err.FieldErrors()
	assert.Equal(t, []string{"Required."}, fields["title"])
	assert.Equal(t, []string{"Invalid"}, fields["detail"])
}
