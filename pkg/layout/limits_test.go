package layout

import (
	"testing"

	"github.com/matzehuels/picplan/pkg/geom"
)

func sz(w, h int) *geom.Size {
	s := geom.Sz(w, h)
	return &s
}

func al(a Align) *Align { return &a }

func baseLayout(w, h int) Layout {
	return Layout{
		Source:   geom.Sz(w, h),
		ResizeTo: geom.Sz(w, h),
		Canvas:   geom.Sz(w, h),
	}
}

func TestMaxCap(t *testing.T) {
	lim := OutputLimits{Max: sz(500, 500)}
	out, cs := lim.Apply(baseLayout(1000, 400))
	if cs != nil {
		t.Error("no content size expected")
	}
	if out.Canvas != geom.Sz(500, 200) || out.ResizeTo != geom.Sz(500, 200) {
		t.Errorf("canvas=%v resize=%v, want 500×200", out.Canvas, out.ResizeTo)
	}

	// Already under the cap: untouched.
	out, _ = lim.Apply(baseLayout(300, 300))
	if out.Canvas != geom.Sz(300, 300) {
		t.Errorf("canvas = %v, want untouched", out.Canvas)
	}
}

func TestMaxScalesPlacementAndCropDims(t *testing.T) {
	crop := geom.Rc(100, 50, 800, 600)
	l := Layout{
		Source:     geom.Sz(1000, 800),
		SourceCrop: &crop,
		ResizeTo:   geom.Sz(800, 600),
		Canvas:     geom.Sz(1000, 800),
		Placement:  geom.Off(100, 100),
	}
	out, _ := OutputLimits{Max: sz(500, 400)}.Apply(l)
	if out.Canvas != geom.Sz(500, 400) {
		t.Errorf("canvas = %v", out.Canvas)
	}
	if out.ResizeTo != geom.Sz(400, 300) {
		t.Errorf("resize = %v", out.ResizeTo)
	}
	if out.Placement != geom.Off(50, 50) {
		t.Errorf("placement = %v", out.Placement)
	}
	// Crop dimensions scale; the origin stays anchored.
	if out.SourceCrop.X != 100 || out.SourceCrop.Y != 50 {
		t.Errorf("crop origin moved: %+v", out.SourceCrop)
	}
	if out.SourceCrop.W != 400 || out.SourceCrop.H != 300 {
		t.Errorf("crop dims = %+v, want 400×300", out.SourceCrop)
	}
}

func TestMinFloor(t *testing.T) {
	out, _ := OutputLimits{Min: sz(200, 200)}.Apply(baseLayout(100, 50))
	if out.Canvas != geom.Sz(400, 200) {
		t.Errorf("canvas = %v, want 400×200", out.Canvas)
	}
}

func TestMinThenMaxReapplies(t *testing.T) {
	// Min scales a 100×10 canvas up to 2000×200; max 1000×1000 pulls it back.
	lim := OutputLimits{Min: sz(1, 200), Max: sz(1000, 1000)}
	out, _ := lim.Apply(baseLayout(100, 10))
	if out.Canvas.W > 1000 || out.Canvas.H > 1000 {
		t.Errorf("max must win after min: canvas = %v", out.Canvas)
	}
	if out.Canvas != geom.Sz(1000, 100) {
		t.Errorf("canvas = %v, want 1000×100", out.Canvas)
	}
}

func TestAlignCrop(t *testing.T) {
	out, cs := OutputLimits{Align: al(CropAlign(16, 16))}.Apply(baseLayout(801, 601))
	if cs != nil {
		t.Error("crop align has no content size")
	}
	if out.Canvas != geom.Sz(800, 592) {
		t.Errorf("canvas = %v, want 800×592", out.Canvas)
	}
	if out.ResizeTo != geom.Sz(800, 592) {
		t.Errorf("resize trimmed to %v, want 800×592", out.ResizeTo)
	}
}

// Spec scenario: 801×601 with extend alignment 16×16.
func TestAlignExtendMCU(t *testing.T) {
	out, cs := OutputLimits{Align: al(ExtendAlign(16, 16))}.Apply(baseLayout(801, 601))
	if out.Canvas != geom.Sz(816, 608) {
		t.Errorf("canvas = %v, want 816×608", out.Canvas)
	}
	if cs == nil || *cs != geom.Sz(801, 601) {
		t.Errorf("content size = %v, want 801×601", cs)
	}
	if out.Placement != geom.Off(0, 0) {
		t.Errorf("placement = %v, want origin", out.Placement)
	}
}

func TestAlignExtendAlreadyAligned(t *testing.T) {
	out, cs := OutputLimits{Align: al(ExtendAlign(8, 8))}.Apply(baseLayout(800, 600))
	if cs != nil {
		t.Errorf("aligned canvas should not report content size")
	}
	if out.Canvas != geom.Sz(800, 600) {
		t.Errorf("canvas = %v", out.Canvas)
	}
}

func TestAlignDistort(t *testing.T) {
	out, _ := OutputLimits{Align: al(DistortAlign(10, 10))}.Apply(baseLayout(804, 596))
	if out.Canvas != geom.Sz(800, 600) {
		t.Errorf("canvas = %v, want 800×600", out.Canvas)
	}
	if out.ResizeTo != geom.Sz(800, 600) {
		t.Errorf("resize = %v, want stretched to canvas", out.ResizeTo)
	}
}

// Alignment may push the canvas back outside the max bound; documented.
func TestAlignMayExceedMax(t *testing.T) {
	lim := OutputLimits{Max: sz(800, 600), Align: al(ExtendAlign(16, 16))}
	out, _ := lim.Apply(baseLayout(1000, 750))
	if out.Canvas != geom.Sz(800, 608) {
		t.Errorf("canvas = %v, want 800×608 (aligned past max)", out.Canvas)
	}
}

func TestLimitsOrderIsMaxMinAlign(t *testing.T) {
	lim := OutputLimits{
		Max:   sz(500, 500),
		Min:   sz(100, 100),
		Align: al(CropAlign(8, 8)),
	}
	out, _ := lim.Apply(baseLayout(1000, 400))
	// max → 500×200; min satisfied; align → 496×200.
	if out.Canvas != geom.Sz(496, 200) {
		t.Errorf("canvas = %v, want 496×200", out.Canvas)
	}
}

func TestBlankLayoutLimits(t *testing.T) {
	blank := Layout{Source: geom.Sz(10, 10), Canvas: geom.Sz(1000, 1000)}
	out, _ := OutputLimits{Max: sz(100, 100)}.Apply(blank)
	if out.Canvas != geom.Sz(100, 100) {
		t.Errorf("canvas = %v", out.Canvas)
	}
	if !out.IsBlank() {
		t.Error("blank layout must stay blank")
	}
}
