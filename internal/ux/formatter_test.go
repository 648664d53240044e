package ux

import (
	"bytes"
	"strings"
	"testing"
)

type testData struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"json format", "json", false},
		{"yaml format", "yaml", false},
		{"text format", "text", false},
		{"empty format defaults to text", "", false},
		{"unknown format", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFormatter(tt.format, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(testData{Name: "test", Value: 42}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"name": "test"`) || !strings.Contains(output, `"value": 42`) {
		t.Errorf("JSON output missing expected fields: %s", output)
	}
}

func TestJSONFormatterCompact(t *testing.T) {
	var buf bytes.Buffer
	formatter, _ := NewFormatter("json", &FormatterOptions{Writer: &buf, Compact: true})

	if err := formatter.Format(testData{Name: "test", Value: 42}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"name":"test","value":42}` {
		t.Errorf("unexpected compact output: %s", got)
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter, _ := NewFormatter("yaml", &FormatterOptions{Writer: &buf})

	if err := formatter.Format(testData{Name: "test", Value: 42}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "name: test") || !strings.Contains(output, "value: 42") {
		t.Errorf("YAML output missing expected fields: %s", output)
	}
}

func TestTextFormatterRejectsStructs(t *testing.T) {
	formatter, _ := NewFormatter("text", &FormatterOptions{Writer: &bytes.Buffer{}})
	if err := formatter.Format(testData{}); err == nil {
		t.Error("expected error for a type without a text rendering")
	}
}

func TestTableRendering(t *testing.T) {
	tbl := Table{
		Headers: []string{"ID", "TITLE"},
		Rows:    [][]string{{"1", "Apollo"}, {"2", "Gemini"}},
		Records: []testData{{Name: "Apollo", Value: 1}},
	}

	var text bytes.Buffer
	formatter, _ := NewFormatter("text", &FormatterOptions{Writer: &text})
	if err := formatter.Format(tbl); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	for _, want := range []string{"ID", "TITLE", "Apollo", "Gemini"} {
		if !strings.Contains(text.String(), want) {
			t.Errorf("table missing %q:\n%s", want, text.String())
		}
	}

	var js bytes.Buffer
	formatter, _ = NewFormatter("json", &FormatterOptions{Writer: &js, Compact: true})
	if err := formatter.Format(tbl); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got := strings.TrimSpace(js.String()); got != `[{"name":"Apollo","value":1}]` {
		t.Errorf("JSON should carry the records, got %s", got)
	}
}

func TestEmptyTable(t *testing.T) {
	if got := (Table{Headers: []string{"ID"}}).Text(); got != "No results." {
		t.Errorf("unexpected empty table text: %q", got)
	}
}

func TestKeyValues(t *testing.T) {
	kv := KeyValues{}.Add("Username", "alice").Add("Groups", "Admin")

	text := kv.Text()
	if !strings.Contains(text, "Username:") || !strings.Contains(text, "alice") {
		t.Errorf("unexpected text: %s", text)
	}

	data, ok := kv.Data().(map[string]string)
	if !ok || data["Groups"] != "Admin" {
		t.Errorf("unexpected data: %#v", kv.Data())
	}
}
