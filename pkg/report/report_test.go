package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/wordbubbles/pkg/bubble"
	"github.com/matzehuels/wordbubbles/pkg/errors"
)

func TestReadFile(t *testing.T) {
	res, err := ReadFile("testdata/report.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if res.Aggregate.TotalMessages != 200 {
		t.Errorf("TotalMessages = %d, want 200", res.Aggregate.TotalMessages)
	}
	if len(res.PerChat) != 2 || res.PerChat[0].ChatName != "Family" {
		t.Errorf("PerChat = %+v", res.PerChat)
	}
	if res.Aggregate.Persona == nil || res.Aggregate.Persona.PersonaName != "Leslie" {
		t.Errorf("Persona = %+v", res.Aggregate.Persona)
	}
	if res.Aggregate.HourDistribution[22] != 40 {
		t.Errorf("HourDistribution[22] = %d, want 40", res.Aggregate.HourDistribution[22])
	}

	want := Frequencies{{"yes", 30}, {"lol", 50}, {"ok", 30}, {"bye", 5}}
	if diff := cmp.Diff(want, res.Aggregate.WordFrequency); diff != "" {
		t.Errorf("WordFrequency mismatch (-want +got):\n%s", diff)
	}
}

func TestItemsBySource(t *testing.T) {
	res, err := ReadFile("testdata/report.json")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		source string
		want   []bubble.Item
	}{
		{SourceWords, []bubble.Item{{Label: "yes", Weight: 30}, {Label: "lol", Weight: 50}, {Label: "ok", Weight: 30}, {Label: "bye", Weight: 5}}},
		{"", []bubble.Item{{Label: "yes", Weight: 30}, {Label: "lol", Weight: 50}, {Label: "ok", Weight: 30}, {Label: "bye", Weight: 5}}},
		{SourceEmojis, []bubble.Item{{Label: "😂", Weight: 41}, {Label: "❤️", Weight: 12}}},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, err := res.Items(tt.source)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Items(%q) mismatch (-want +got):\n%s", tt.source, diff)
			}
		})
	}

	if _, err := res.Items("stickers"); !errors.Is(err, errors.ErrCodeInvalidSource) {
		t.Errorf("Items(stickers) error = %v, want INVALID_SOURCE", err)
	}
}

func TestOrderDecidesTies(t *testing.T) {
	// "yes" precedes "ok" in the document, so it ranks first among the 30s.
	res, err := ReadFile("testdata/report.json")
	if err != nil {
		t.Fatal(err)
	}
	items, _ := res.Items(SourceWords)
	ranked := bubble.Rank(items, bubble.Options{MaxItems: 2})
	if ranked[0].Label != "lol" || ranked[1].Label != "yes" {
		t.Errorf("ranked = %q, %q; want lol, yes", ranked[0].Label, ranked[1].Label)
	}
}

func TestDecodeItems(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		source  string
		want    []bubble.Item
		wantErr errors.Code
	}{
		{
			name:  "bare object",
			input: `{"b": 2, "a": 1.5}`,
			want:  []bubble.Item{{Label: "b", Weight: 2}, {Label: "a", Weight: 1.5}},
		},
		{
			name:   "wrapped",
			input:  `{"aggregate": {"emoji_frequency": {"🔥": 3}}}`,
			source: SourceEmojis,
			want:   []bubble.Item{{Label: "🔥", Weight: 3}},
		},
		{
			name:  "empty object",
			input: `{}`,
			want:  []bubble.Item{},
		},
		{name: "not json", input: `lol`, wantErr: errors.ErrCodeInvalidInput},
		{name: "string weight", input: `{"a": "many"}`, wantErr: errors.ErrCodeInvalidInput},
		{name: "array", input: `[1, 2]`, wantErr: errors.ErrCodeInvalidInput},
		{name: "bad source", input: `{"aggregate": {}}`, source: "nope", wantErr: errors.ErrCodeInvalidSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeItems([]byte(tt.input), tt.source)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadItemsMissingFile(t *testing.T) {
	_, err := ReadItems(filepath.Join(t.TempDir(), "missing.json"), SourceWords)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestReadItemsBareFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freq.json")
	if err := os.WriteFile(path, []byte(`{"z": 1, "y": 9}`), 0o644); err != nil {
		t.Fatal(err)
	}
	items, err := ReadItems(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Label != "z" {
		t.Errorf("items = %+v", items)
	}
}

func TestFrequenciesMarshalKeepsOrder(t *testing.T) {
	f := Frequencies{{"zz", 1}, {"aa", 2.5}, {`q"uote`, 3}}
	data, err := f.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"zz":1,"aa":2.5,"q\"uote":3}`
	if string(data) != want {
		t.Errorf("MarshalJSON() = %s, want %s", data, want)
	}
}

func TestFrequenciesNull(t *testing.T) {
	res, err := Read(strings.NewReader(`{"aggregate": {"word_frequency": null}}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Aggregate.WordFrequency) != 0 {
		t.Errorf("WordFrequency = %v, want empty", res.Aggregate.WordFrequency)
	}
}

func TestFrequenciesMap(t *testing.T) {
	m := Frequencies{{"a", 1}, {"a", 5}, {"b", 2}}.Map()
	if m["a"] != 1 || m["b"] != 2 {
		t.Errorf("Map() = %v", m)
	}
}
