package codec

import (
	"testing"

	"github.com/matzehuels/picplan/pkg/geom"
)

func TestMCUSizes(t *testing.T) {
	tests := []struct {
		sub  Subsampling
		want geom.Size
	}{
		{Subsampling444, geom.Sz(8, 8)},
		{Subsampling422, geom.Sz(16, 8)},
		{Subsampling420, geom.Sz(16, 16)},
	}
	for _, tt := range tests {
		got := LayoutFor(geom.Sz(160, 160), tt.sub)
		if got.MCUSize != tt.want {
			t.Errorf("%v MCU = %v, want %v", tt.sub, got.MCUSize, tt.want)
		}
		if got.LumaRowsPerMCU != tt.want.H {
			t.Errorf("%v rows per MCU = %d, want %d", tt.sub, got.LumaRowsPerMCU, tt.want.H)
		}
	}
}

func TestLayoutFor420(t *testing.T) {
	cl := LayoutFor(geom.Sz(816, 608), Subsampling420)

	if cl.Luma.Content != geom.Sz(816, 608) || cl.Luma.Extended != geom.Sz(816, 608) {
		t.Errorf("luma = %+v", cl.Luma)
	}
	if cl.Luma.BlocksW != 102 || cl.Luma.BlocksH != 76 {
		t.Errorf("luma blocks = %d×%d", cl.Luma.BlocksW, cl.Luma.BlocksH)
	}

	if cl.Chroma.Content != geom.Sz(408, 304) {
		t.Errorf("chroma content = %v", cl.Chroma.Content)
	}
	if cl.Chroma.Extended != geom.Sz(408, 304) {
		t.Errorf("chroma extended = %v", cl.Chroma.Extended)
	}

	if cl.MCUCols != 51 || cl.MCURows != 38 {
		t.Errorf("MCU grid = %d×%d, want 51×38", cl.MCUCols, cl.MCURows)
	}
}

func TestLayoutFor422ChromaExtension(t *testing.T) {
	// 100 wide → chroma 50 → extends to 56.
	cl := LayoutFor(geom.Sz(100, 64), Subsampling422)
	if cl.Chroma.Content != geom.Sz(50, 64) {
		t.Errorf("chroma content = %v", cl.Chroma.Content)
	}
	if cl.Chroma.Extended != geom.Sz(56, 64) {
		t.Errorf("chroma extended = %v", cl.Chroma.Extended)
	}
	if cl.Chroma.BlocksW != 7 || cl.Chroma.BlocksH != 8 {
		t.Errorf("chroma blocks = %d×%d", cl.Chroma.BlocksW, cl.Chroma.BlocksH)
	}
}

func TestLayoutFor444UnalignedCanvas(t *testing.T) {
	cl := LayoutFor(geom.Sz(801, 601), Subsampling444)
	if cl.Luma.Extended != geom.Sz(808, 608) {
		t.Errorf("luma extended = %v", cl.Luma.Extended)
	}
	if cl.Luma.BlocksW != 101 || cl.Luma.BlocksH != 76 {
		t.Errorf("luma blocks = %d×%d", cl.Luma.BlocksW, cl.Luma.BlocksH)
	}
	// For 4:4:4 the chroma plane mirrors the luma plane.
	if cl.Chroma != cl.Luma {
		t.Errorf("chroma = %+v, want same as luma", cl.Chroma)
	}
}
