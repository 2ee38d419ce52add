package layout

import (
	"errors"
	"testing"

	"github.com/matzehuels/picplan/pkg/geom"
)

func TestFitInside(t *testing.T) {
	tests := []struct {
		name           string
		sw, sh, tw, th int
		wantW, wantH   int
	}{
		{"LandscapeIntoLandscape", 1000, 500, 400, 300, 400, 200},
		{"PortraitIntoLandscape", 500, 1000, 400, 300, 150, 300},
		{"SameAspect", 1000, 500, 400, 200, 400, 200},
		// 1200×400 into 100×33: naive width-for-33 is 99; the snap rule
		// recovers 100×33.
		{"SnapRounding", 1200, 400, 100, 33, 100, 33},
		{"Square", 1000, 500, 200, 200, 200, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitInside(tt.sw, tt.sh, tt.tw, tt.th)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("fitInside = (%d, %d), want (%d, %d)", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCropToAspect(t *testing.T) {
	t.Run("WiderSource", func(t *testing.T) {
		r := cropToAspect(1000, 500, 400, 300, Center())
		if r.W != 667 || r.H != 500 {
			t.Errorf("crop = %+v, want 667×500", r)
		}
		if r.X != 166 || r.Y != 0 {
			t.Errorf("origin = (%d, %d), want (166, 0)", r.X, r.Y)
		}
	})
	t.Run("TallerSource", func(t *testing.T) {
		r := cropToAspect(500, 1000, 400, 300, Center())
		if r.W != 500 || r.H != 375 {
			t.Errorf("crop = %+v, want 500×375", r)
		}
	})
	t.Run("SameRatio", func(t *testing.T) {
		if r := cropToAspect(800, 600, 400, 300, Center()); r != geom.Rc(0, 0, 800, 600) {
			t.Errorf("crop = %+v, want full source", r)
		}
	})
	t.Run("GravityTopLeft", func(t *testing.T) {
		r := cropToAspect(1000, 500, 400, 300, Fractional(0, 0))
		if r.X != 0 || r.Y != 0 {
			t.Errorf("origin = (%d, %d), want (0, 0)", r.X, r.Y)
		}
	})
	t.Run("GravityBottomRight", func(t *testing.T) {
		r := cropToAspect(1000, 500, 400, 300, Fractional(1, 1))
		if r.X != 1000-r.W || r.Y != 0 {
			t.Errorf("origin = (%d, %d), want flush right, top", r.X, r.Y)
		}
	})
}

func mustCompute(t *testing.T, c Constraint, sw, sh int) Layout {
	t.Helper()
	l, err := c.Compute(sw, sh)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return l
}

func TestDistort(t *testing.T) {
	l := mustCompute(t, NewConstraint(Distort, 400, 300), 1000, 500)
	if l.ResizeTo != geom.Sz(400, 300) || l.Canvas != geom.Sz(400, 300) {
		t.Errorf("resize=%v canvas=%v", l.ResizeTo, l.Canvas)
	}
	if l.SourceCrop != nil {
		t.Error("distort should not crop")
	}
}

func TestFit(t *testing.T) {
	l := mustCompute(t, NewConstraint(Fit, 400, 300), 1000, 500)
	if l.ResizeTo != geom.Sz(400, 200) || l.NeedsPadding() {
		t.Errorf("resize=%v canvas=%v", l.ResizeTo, l.Canvas)
	}

	// Fit upscales.
	l = mustCompute(t, NewConstraint(Fit, 400, 300), 200, 100)
	if l.ResizeTo != geom.Sz(400, 200) {
		t.Errorf("upscale resize = %v", l.ResizeTo)
	}
}

func TestWithin(t *testing.T) {
	l := mustCompute(t, NewConstraint(Within, 400, 300), 200, 100)
	if l.ResizeTo != geom.Sz(200, 100) || l.NeedsResize() {
		t.Errorf("within should not upscale: %+v", l)
	}
	l = mustCompute(t, NewConstraint(Within, 400, 300), 1000, 500)
	if l.ResizeTo != geom.Sz(400, 200) {
		t.Errorf("downscale resize = %v", l.ResizeTo)
	}
}

func TestFitCrop(t *testing.T) {
	l := mustCompute(t, NewConstraint(FitCrop, 400, 300), 1000, 500)
	if l.ResizeTo != geom.Sz(400, 300) || l.Canvas != geom.Sz(400, 300) {
		t.Errorf("resize=%v canvas=%v", l.ResizeTo, l.Canvas)
	}
	if l.SourceCrop == nil {
		t.Fatal("expected crop")
	}
	if l.SourceCrop.H != 500 || l.SourceCrop.W != 667 {
		t.Errorf("crop = %+v, want 667×500", l.SourceCrop)
	}

	// Same aspect ratio: crop normalizes away.
	l = mustCompute(t, NewConstraint(FitCrop, 400, 200), 1000, 500)
	if l.SourceCrop != nil {
		t.Errorf("same-aspect crop should normalize to nil, got %+v", l.SourceCrop)
	}
}

func TestWithinCrop(t *testing.T) {
	// Source fits: identity.
	l := mustCompute(t, NewConstraint(WithinCrop, 400, 300), 200, 100)
	if l.ResizeTo != geom.Sz(200, 100) || l.SourceCrop != nil {
		t.Errorf("identity expected: %+v", l)
	}

	// Source exceeds on both axes: crop + downscale.
	l = mustCompute(t, NewConstraint(WithinCrop, 400, 300), 1000, 500)
	if l.ResizeTo != geom.Sz(400, 300) || l.SourceCrop == nil {
		t.Errorf("crop+downscale expected: %+v", l)
	}

	// Mixed: wider but shorter than target → crop to intersection, no scale.
	l = mustCompute(t, NewConstraint(WithinCrop, 400, 300), 1000, 200)
	if l.ResizeTo != geom.Sz(400, 200) {
		t.Errorf("intersection resize = %v, want 400×200", l.ResizeTo)
	}
	if l.SourceCrop == nil || l.SourceCrop.W != 400 || l.SourceCrop.H != 200 {
		t.Errorf("intersection crop = %+v", l.SourceCrop)
	}
	// Canvas may be smaller than the target here; that is the documented
	// WithinCrop degenerate case.
	if l.Canvas != geom.Sz(400, 200) {
		t.Errorf("canvas = %v", l.Canvas)
	}
}

func TestFitPad(t *testing.T) {
	l := mustCompute(t, NewConstraint(FitPad, 400, 300).WithCanvasColor(White()), 1000, 500)
	if l.ResizeTo != geom.Sz(400, 200) || l.Canvas != geom.Sz(400, 300) {
		t.Errorf("resize=%v canvas=%v", l.ResizeTo, l.Canvas)
	}
	if l.Placement != geom.Off(0, 50) {
		t.Errorf("placement = %v, want (0, 50)", l.Placement)
	}
	if !l.NeedsPadding() {
		t.Error("expected padding")
	}

	l = mustCompute(t, NewConstraint(FitPad, 400, 200), 1000, 500)
	if l.NeedsPadding() {
		t.Error("aspect match should not pad")
	}
}

func TestWithinPad(t *testing.T) {
	// Smaller source: identity (no upscale, no padding).
	l := mustCompute(t, NewConstraint(WithinPad, 400, 300), 200, 100)
	if l.ResizeTo != geom.Sz(200, 100) || l.Canvas != geom.Sz(200, 100) {
		t.Errorf("identity expected: %+v", l)
	}

	l = mustCompute(t, NewConstraint(WithinPad, 400, 300), 1000, 500)
	if l.ResizeTo != geom.Sz(400, 200) || l.Canvas != geom.Sz(400, 300) || l.Placement != geom.Off(0, 50) {
		t.Errorf("downscale+pad: %+v", l)
	}
}

func TestAspectCrop(t *testing.T) {
	l := mustCompute(t, NewConstraint(AspectCrop, 400, 300), 1000, 500)
	if l.SourceCrop == nil {
		t.Fatal("expected crop")
	}
	if l.ResizeTo != l.SourceCrop.Size() || l.NeedsResize() {
		t.Errorf("aspect crop must not scale: %+v", l)
	}
}

// Spec scenario: 4000×3000 source, aspect crop to 1:1.
func TestAspectCropSquare(t *testing.T) {
	l := mustCompute(t, NewConstraint(AspectCrop, 1, 1), 4000, 3000)
	if l.SourceCrop == nil || *l.SourceCrop != geom.Rc(500, 0, 3000, 3000) {
		t.Fatalf("crop = %+v, want (500, 0, 3000, 3000)", l.SourceCrop)
	}
	if l.ResizeTo != geom.Sz(3000, 3000) || l.Canvas != geom.Sz(3000, 3000) {
		t.Errorf("resize=%v canvas=%v", l.ResizeTo, l.Canvas)
	}
}

// Spec scenario: 1920×1080, fit-crop 500×500.
func TestFitCropSquareFromHD(t *testing.T) {
	l := mustCompute(t, NewConstraint(FitCrop, 500, 500), 1920, 1080)
	if l.ResizeTo != geom.Sz(500, 500) || l.Canvas != geom.Sz(500, 500) {
		t.Errorf("resize=%v canvas=%v", l.ResizeTo, l.Canvas)
	}
	if l.SourceCrop == nil || l.SourceCrop.H != 1080 || l.SourceCrop.W != 1080 {
		t.Fatalf("crop = %+v, want centered 1080×1080", l.SourceCrop)
	}
	if l.SourceCrop.X != 420 {
		t.Errorf("crop x = %d, want 420 (centered)", l.SourceCrop.X)
	}
}

// Spec scenario: 1600×900, fit-pad 400×400.
func TestFitPadSquare(t *testing.T) {
	l := mustCompute(t, NewConstraint(FitPad, 400, 400), 1600, 900)
	if l.ResizeTo != geom.Sz(400, 225) {
		t.Errorf("resize = %v, want 400×225", l.ResizeTo)
	}
	if l.Canvas != geom.Sz(400, 400) {
		t.Errorf("canvas = %v", l.Canvas)
	}
	if l.Placement != geom.Off(0, 87) && l.Placement != geom.Off(0, 88) {
		t.Errorf("placement = %v, want (0, ~88)", l.Placement)
	}
}

func TestSourceCropPixels(t *testing.T) {
	l := mustCompute(t,
		NewConstraint(Fit, 200, 200).WithSourceCrop(CropPixels(100, 100, 500, 500)),
		1000, 1000)
	if l.SourceCrop == nil || *l.SourceCrop != geom.Rc(100, 100, 500, 500) {
		t.Errorf("crop = %+v", l.SourceCrop)
	}
	if l.ResizeTo != geom.Sz(200, 200) {
		t.Errorf("resize = %v", l.ResizeTo)
	}
}

func TestSourceCropPercent(t *testing.T) {
	l := mustCompute(t,
		NewConstraint(Fit, 200, 200).WithSourceCrop(CropPercent(0.25, 0.25, 0.5, 0.5)),
		1000, 1000)
	if l.SourceCrop == nil || *l.SourceCrop != geom.Rc(250, 250, 500, 500) {
		t.Errorf("crop = %+v", l.SourceCrop)
	}
}

func TestSourceCropCombinedWithFitCrop(t *testing.T) {
	l := mustCompute(t,
		NewConstraint(FitCrop, 400, 300).WithSourceCrop(CropPercent(0.25, 0.25, 0.5, 0.5)),
		1000, 1000)
	sc := l.SourceCrop
	if sc == nil {
		t.Fatal("expected combined crop")
	}
	// The combined crop stays inside the user crop (250, 250, 500, 500).
	if sc.X < 250 || sc.Y < 250 || sc.X+sc.W > 750 || sc.Y+sc.H > 750 {
		t.Errorf("combined crop %+v escapes user crop", sc)
	}
}

func TestSingleAxis(t *testing.T) {
	l := mustCompute(t, WidthOnly(Fit, 500), 1000, 500)
	if l.ResizeTo != geom.Sz(500, 250) {
		t.Errorf("width-only resize = %v", l.ResizeTo)
	}
	l = mustCompute(t, HeightOnly(Fit, 250), 1000, 500)
	if l.ResizeTo != geom.Sz(500, 250) {
		t.Errorf("height-only resize = %v", l.ResizeTo)
	}
	// Single-axis on no-upscale modes keeps small sources.
	l = mustCompute(t, WidthOnly(Within, 500), 100, 50)
	if l.ResizeTo != geom.Sz(100, 50) {
		t.Errorf("within width-only resize = %v", l.ResizeTo)
	}
	// Single-axis pad modes still pad to the derived target.
	l = mustCompute(t, WidthOnly(WithinPad, 50), 100, 50)
	if l.ResizeTo != geom.Sz(50, 25) || l.Canvas != geom.Sz(50, 25) {
		t.Errorf("within-pad width-only: %+v", l)
	}
}

func TestErrors(t *testing.T) {
	if _, err := NewConstraint(Fit, 100, 100).Compute(0, 100); !errors.Is(err, ErrZeroSourceDimension) {
		t.Errorf("zero source: %v", err)
	}
	if _, err := NewConstraint(Fit, 0, 100).Compute(100, 100); !errors.Is(err, ErrZeroTargetDimension) {
		t.Errorf("zero target: %v", err)
	}
	if _, err := (Constraint{Mode: Fit, Width: -1, Height: -1}).Compute(100, 100); !errors.Is(err, ErrZeroTargetDimension) {
		t.Errorf("no target: %v", err)
	}
	if _, err := WidthOnly(Fit, 0).Compute(100, 100); !errors.Is(err, ErrZeroTargetDimension) {
		t.Errorf("zero width-only: %v", err)
	}
}

// Canvas must dominate the resize target after every mode (except the
// documented WithinCrop intersection case, where both shrink together).
func TestCanvasDominatesResize(t *testing.T) {
	modes := []ConstraintMode{Distort, Fit, Within, FitCrop, WithinCrop, FitPad, WithinPad, AspectCrop}
	sources := [][2]int{{1000, 500}, {500, 1000}, {30, 30}, {1, 100}, {4000, 3000}}
	for _, m := range modes {
		for _, s := range sources {
			l := mustCompute(t, NewConstraint(m, 400, 300), s[0], s[1])
			if l.Canvas.W < l.ResizeTo.W || l.Canvas.H < l.ResizeTo.H {
				t.Errorf("%v on %v: canvas %v < resize %v", m, s, l.Canvas, l.ResizeTo)
			}
		}
	}
}

func TestTinySourceClampsToOne(t *testing.T) {
	l := mustCompute(t, NewConstraint(Fit, 1, 100), 100, 1)
	if l.ResizeTo.W < 1 || l.ResizeTo.H < 1 {
		t.Errorf("resize = %v, dimensions must stay ≥ 1", l.ResizeTo)
	}
}
