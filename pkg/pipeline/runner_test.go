package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/picplan/pkg/cache"
	"github.com/matzehuels/picplan/pkg/codec"
	"github.com/matzehuels/picplan/pkg/errors"
	"github.com/matzehuels/picplan/pkg/geom"
	"github.com/matzehuels/picplan/pkg/preset"
)

func TestExecuteBasic(t *testing.T) {
	r := NewRunner(nil, nil)
	result, err := r.Execute(context.Background(), Options{
		SourceW: 1000, SourceH: 500,
		Query:   "w=800&h=600&mode=max",
		Formats: []string{FormatJSON},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Ideal.Layout.ResizeTo != geom.Sz(800, 400) {
		t.Errorf("resize = %v", result.Ideal.Layout.ResizeTo)
	}
	if len(result.Artifacts[FormatJSON]) == 0 {
		t.Error("missing JSON artifact")
	}
	var decoded map[string]any
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &decoded); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
}

func TestExecuteSVG(t *testing.T) {
	r := NewRunner(nil, nil)
	result, err := r.Execute(context.Background(), Options{
		SourceW: 1920, SourceH: 1080,
		Query:   "w=500&h=500&mode=crop&scale=both",
		Formats: []string{FormatSVG},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(result.Artifacts[FormatSVG]), "<svg") {
		t.Error("SVG artifact malformed")
	}
}

func TestExecuteWithCodecLayout(t *testing.T) {
	sub := codec.Subsampling420
	r := NewRunner(nil, nil)
	result, err := r.Execute(context.Background(), Options{
		SourceW: 1000, SourceH: 1000,
		Query:       "w=800&h=608&mode=stretch&scale=both",
		Subsampling: &sub,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Codec == nil {
		t.Fatal("codec layout missing")
	}
	if result.Codec.MCUCols != 50 || result.Codec.MCURows != 38 {
		t.Errorf("MCU grid = %d×%d", result.Codec.MCUCols, result.Codec.MCURows)
	}
}

func TestExecuteCaches(t *testing.T) {
	mc := cache.NewMemoryCache()
	r := NewRunner(mc, nil)
	opts := Options{
		SourceW: 1000, SourceH: 500,
		Query:   "w=400",
		Formats: []string{FormatSVG},
	}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.CacheHits) != 0 {
		t.Error("first run should not hit the cache")
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.CacheHits) != 1 || second.CacheHits[0] != FormatSVG {
		t.Errorf("cache hits = %v", second.CacheHits)
	}
	if string(first.Artifacts[FormatSVG]) != string(second.Artifacts[FormatSVG]) {
		t.Error("cached artifact differs")
	}
}

func TestExecutePreset(t *testing.T) {
	presets, err := preset.Parse([]byte(`
[presets.thumb]
query = "w=150&h=150&mode=crop&scale=both"
max_width = 100
max_height = 100
`))
	if err != nil {
		t.Fatal(err)
	}

	r := NewRunner(nil, nil)
	result, err := r.Execute(context.Background(), Options{
		SourceW: 3000, SourceH: 3000,
		Preset:  "thumb",
		Presets: presets,
	})
	if err != nil {
		t.Fatal(err)
	}
	// The preset's max cap pulls the 150×150 crop down to 100×100.
	if result.Ideal.Layout.Canvas != geom.Sz(100, 100) {
		t.Errorf("canvas = %v, want preset max applied", result.Ideal.Layout.Canvas)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil)
	if _, err := r.Execute(context.Background(), Options{Query: "w=100"}); !errors.Is(err, errors.ErrCodeInvalidDimensions) {
		t.Errorf("zero dims err = %v", err)
	}
	if _, err := r.Execute(context.Background(), Options{
		SourceW: 100, SourceH: 100, Preset: "nope",
	}); !errors.Is(err, errors.ErrCodePresetNotFound) {
		t.Errorf("missing presets err = %v", err)
	}
	if _, err := r.Execute(context.Background(), Options{
		SourceW: 100, SourceH: 100, Formats: []string{"gif"},
	}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("bad format err = %v", err)
	}
}

func TestDescribe(t *testing.T) {
	r := NewRunner(nil, nil)
	result, err := r.Execute(context.Background(), Options{
		SourceW: 1000, SourceH: 500, Query: "w=500&h=250&mode=max",
	})
	if err != nil {
		t.Fatal(err)
	}
	got := Describe(result.Plan)
	if !strings.Contains(got, "resize 500×250") || !strings.Contains(got, "canvas 500×250") {
		t.Errorf("Describe = %q", got)
	}
}
