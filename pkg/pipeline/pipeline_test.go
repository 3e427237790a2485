package pipeline

import (
	"bytes"
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/wordbubbles/pkg/bubble"
	"github.com/matzehuels/wordbubbles/pkg/cache"
	"github.com/matzehuels/wordbubbles/pkg/cloud"
	"github.com/matzehuels/wordbubbles/pkg/errors"
	"github.com/matzehuels/wordbubbles/pkg/observability"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && errors.GetCode(err) != errors.ErrCodeInvalidFormat {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"simple", false},
		{"handdrawn", false},
		{"invalid", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestValidateSource(t *testing.T) {
	tests := []struct {
		source  string
		wantErr bool
	}{
		{"words", false},
		{"emojis", false},
		{"stickers", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateSource(tt.source)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSource(%q) error = %v, wantErr %v", tt.source, err, tt.wantErr)
		}
	}
}

func TestValidateItems(t *testing.T) {
	tests := []struct {
		name  string
		items []bubble.Item
		code  errors.Code
	}{
		{"ok", []bubble.Item{{Label: "lol", Weight: 50}, {Label: "😂", Weight: 0}}, ""},
		{"empty", nil, ""},
		{"blank label", []bubble.Item{{Label: "  ", Weight: 1}}, errors.ErrCodeInvalidLabel},
		{"negative", []bubble.Item{{Label: "a", Weight: -1}}, errors.ErrCodeInvalidInput},
		{"nan", []bubble.Item{{Label: "a", Weight: math.NaN()}}, errors.ErrCodeInvalidInput},
		{"too many", make([]bubble.Item, MaxInputItems+1), errors.ErrCodeTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItems(tt.items)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestValidateForLayout(t *testing.T) {
	neg := -1.0
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero value", Options{}, false},
		{"explicit", Options{Width: 800, Height: 600, MaxItems: 10, MinRadius: 5, MaxRadius: 50}, false},
		{"negative width", Options{Width: -1}, true},
		{"nan height", Options{Height: math.NaN()}, true},
		{"huge width", Options{Width: 1e300}, true},
		{"height above limit", Options{Height: 10001}, true},
		{"at limit", Options{Width: 10000, Height: 10000}, false},
		{"negative max items", Options{MaxItems: -3}, true},
		{"inverted radii", Options{MinRadius: 50, MaxRadius: 10}, true},
		{"negative padding", Options{Padding: &neg}, true},
		{"angle step too large", Options{AngleStep: 4}, true},
		{"unknown source", Options{Source: "stickers"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateForLayout() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	var opts Options
	opts.SetLayoutDefaults()

	if opts.Width != bubble.DefaultWidth || opts.Height != bubble.DefaultHeight {
		t.Errorf("size = %vx%v", opts.Width, opts.Height)
	}
	if opts.MaxItems != bubble.DefaultMaxItems {
		t.Errorf("MaxItems = %d", opts.MaxItems)
	}
	if opts.Padding == nil || *opts.Padding != bubble.DefaultPadding {
		t.Errorf("Padding = %v, want %v", opts.Padding, bubble.DefaultPadding)
	}
	if opts.Source != DefaultSource {
		t.Errorf("Source = %q", opts.Source)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestExplicitZeroPaddingIsKept(t *testing.T) {
	zero := 0.0
	opts := Options{Padding: &zero}
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatal(err)
	}
	if got := opts.BubbleOptions().Padding; got != 0 {
		t.Errorf("padding = %v, want 0", got)
	}
}

func TestValidateForRender(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatal(err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Style != DefaultStyle || opts.Seed != DefaultSeed || opts.Scale != DefaultScale {
		t.Errorf("defaults not applied: %+v", opts)
	}

	bad := Options{Scale: MaxScale + 1}
	if err := bad.ValidateForRender(); err == nil {
		t.Error("oversized scale should fail")
	}
	bad = Options{Formats: []string{"gif"}}
	if err := bad.ValidateForRender(); errors.GetCode(err) != errors.ErrCodeInvalidFormat {
		t.Errorf("gif: err = %v", err)
	}
}

func TestValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Formats: []string{"png"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts.LayoutKeyOpts()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.LayoutKeyOpts() != first {
		t.Error("second call changed options")
	}
}

func TestLayoutKeyOptsNormalized(t *testing.T) {
	a := Options{}
	b := Options{Width: bubble.DefaultWidth, MaxItems: bubble.DefaultMaxItems}
	if a.LayoutKeyOpts() != b.LayoutKeyOpts() {
		t.Errorf("defaulted and explicit options should share a key: %+v vs %+v",
			a.LayoutKeyOpts(), b.LayoutKeyOpts())
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Style: "simple", Seed: 7, Scale: 3, Reveal: true, ShowWeights: true}

	svg := opts.ArtifactKeyOpts(FormatSVG)
	if !svg.Reveal || !svg.ShowWeights || svg.Scale != 0 {
		t.Errorf("svg key = %+v", svg)
	}
	if svg.Seed != 0 {
		t.Errorf("simple style should not key on seed: %+v", svg)
	}

	png := opts.ArtifactKeyOpts(FormatPNG)
	if png.Reveal || png.Style != "" || png.Scale != 3 {
		t.Errorf("png key = %+v", png)
	}

	opts.Style = "handdrawn"
	if k := opts.ArtifactKeyOpts(FormatSVG); k.Seed != 7 {
		t.Errorf("handdrawn svg key should include seed: %+v", k)
	}
	if opts.ArtifactKeyOpts(FormatPNG) != png {
		t.Error("png key should not depend on style")
	}
}

// =============================================================================
// Runner
// =============================================================================

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = data
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func scenarioItems() []bubble.Item {
	return []bubble.Item{
		{Label: "lol", Weight: 50},
		{Label: "ok", Weight: 30},
		{Label: "yes", Weight: 30},
		{Label: "bye", Weight: 5},
	}
}

func TestLayout(t *testing.T) {
	c, err := Layout(scenarioItems(), Options{Source: "emojis"})
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Bubbles) != 4 {
		t.Fatalf("bubbles = %d, want 4", len(c.Bubbles))
	}
	if c.Bubbles[0].Label != "lol" || c.Bubbles[0].R != bubble.DefaultMaxRadius {
		t.Errorf("first bubble = %+v", c.Bubbles[0])
	}
	if c.Source != "emojis" {
		t.Errorf("Source = %q", c.Source)
	}

	if _, err := Layout([]bubble.Item{{Label: "", Weight: 1}}, Options{}); err == nil {
		t.Error("empty label should be rejected")
	}
}

func TestRunnerLayoutCaches(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)

	first, hit, err := r.LayoutWithCacheInfo(ctx, scenarioItems(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first layout should miss")
	}
	if mc.sets != 1 {
		t.Errorf("sets = %d, want 1", mc.sets)
	}

	second, hit, err := r.LayoutWithCacheInfo(ctx, scenarioItems(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second layout should hit")
	}
	if first.ID != second.ID {
		t.Errorf("IDs differ: %s vs %s", first.ID, second.ID)
	}
	if len(first.Bubbles) != len(second.Bubbles) || first.Bubbles[0] != second.Bubbles[0] {
		t.Error("cached cloud differs from computed one")
	}

	// Different options produce a different key.
	if _, hit, _ := r.LayoutWithCacheInfo(ctx, scenarioItems(), Options{Width: 600}); hit {
		t.Error("different width should miss")
	}
	// Refresh skips the read.
	if _, hit, _ := r.LayoutWithCacheInfo(ctx, scenarioItems(), Options{Refresh: true}); hit {
		t.Error("refresh should miss")
	}
}

func TestCloudIDDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := NewRunner(nil, nil, nil).Layout(ctx, scenarioItems(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRunner(nil, nil, nil).Layout(ctx, scenarioItems(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != b.ID {
		t.Errorf("same input gave IDs %s and %s", a.ID, b.ID)
	}

	c, _ := NewRunner(nil, nil, nil).Layout(ctx, scenarioItems(), Options{Source: "emojis"})
	if c.ID == a.ID {
		t.Error("different source should give a different ID")
	}
}

func TestRunnerRenderPartialCache(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)

	c, err := r.Layout(ctx, scenarioItems(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	arts, hit, err := r.RenderWithCacheInfo(ctx, c, Options{Formats: []string{"svg"}})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first render should miss")
	}
	svg := arts["svg"]

	arts, hit, err = r.RenderWithCacheInfo(ctx, c, Options{Formats: []string{"svg", "json", "svg"}})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("json was never rendered, so this cannot be a full hit")
	}
	if !bytes.Equal(arts["svg"], svg) {
		t.Error("svg should come from cache unchanged")
	}
	if len(arts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(arts))
	}

	if _, hit, _ := r.RenderWithCacheInfo(ctx, c, Options{Formats: []string{"json", "svg"}}); !hit {
		t.Error("both formats cached, expected full hit")
	}
}

func TestRenderAppliesCloudMetadata(t *testing.T) {
	c, err := Layout(scenarioItems(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	c.Style = "handdrawn"
	c.Seed = 9

	arts, err := Render(context.Background(), c, Options{Formats: []string{"json", "svg"}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := cloud.Unmarshal(arts["json"])
	if err != nil {
		t.Fatal(err)
	}
	if got.Style != "handdrawn" || got.Seed != 9 {
		t.Errorf("style/seed = %q/%d, want handdrawn/9", got.Style, got.Seed)
	}
	if !strings.Contains(string(arts["svg"]), `filter id="rough"`) {
		t.Error("svg should use the handdrawn style")
	}
}

func TestRenderRejectsInvalidCloud(t *testing.T) {
	_, err := Render(context.Background(), cloud.Cloud{Width: -1, Height: 10}, Options{})
	if errors.GetCode(err) != errors.ErrCodeInvalidCloud {
		t.Errorf("err = %v, want INVALID_CLOUD", err)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)
	res, err := r.Execute(context.Background(), scenarioItems(), Options{Formats: []string{"svg", "png", "json"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.ItemCount != 4 || res.Stats.BubbleCount != 4 || res.Stats.Fallbacks != 0 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.LayoutHash == "" {
		t.Error("LayoutHash should be set")
	}
	if !bytes.HasPrefix(res.Artifacts["png"], []byte("\x89PNG")) {
		t.Error("png artifact is not a PNG")
	}
	if !bytes.HasPrefix(res.Artifacts["svg"], []byte("<svg")) {
		t.Errorf("svg artifact starts with %q", res.Artifacts["svg"][:10])
	}

	again, err := r.Execute(context.Background(), scenarioItems(), Options{Formats: []string{"svg", "png", "json"}})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v", again.CacheInfo)
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), scenarioItems(), Options{Style: "crayon"})
	if errors.GetCode(err) != errors.ErrCodeInvalidStyle {
		t.Errorf("err = %v, want INVALID_STYLE", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	layouts int
	renders [][]string
}

func (h *recordingHooks) OnLayoutComplete(context.Context, int, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.layouts++
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders = append(h.renders, formats)
}

func TestRunnerEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	r := NewRunner(newMemCache(), nil, nil)
	opts := Options{Formats: []string{"json"}}
	for i := 0; i < 2; i++ {
		if _, err := r.Execute(context.Background(), scenarioItems(), opts); err != nil {
			t.Fatal(err)
		}
	}

	if hooks.layouts != 1 {
		t.Errorf("layout completions = %d, want 1 (second run is cached)", hooks.layouts)
	}
	if len(hooks.renders) != 1 || hooks.renders[0][0] != "json" {
		t.Errorf("render completions = %v", hooks.renders)
	}
}
