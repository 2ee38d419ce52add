// Package codec computes JPEG-family block and MCU geometry for a canvas:
// per-plane content and block-extended dimensions, the MCU grid, and the
// row-feeding chunk size an encoder consumes.
//
// The canvas handed in is assumed MCU-aligned (the layout engine's extend
// alignment produces exactly that); the caller is responsible for aligning
// first.
package codec

import (
	"fmt"

	"github.com/matzehuels/picplan/pkg/geom"
)

// BlockSize is the DCT block edge length. Always 8 for JPEG-family codecs.
const BlockSize = 8

// Subsampling identifies the chroma subsampling scheme.
type Subsampling uint8

const (
	// Subsampling444 keeps full chroma resolution. MCU is 8×8.
	Subsampling444 Subsampling = iota
	// Subsampling422 halves chroma horizontally. MCU is 16×8.
	Subsampling422
	// Subsampling420 halves chroma on both axes. MCU is 16×16.
	Subsampling420
)

// String returns the conventional ratio notation.
func (s Subsampling) String() string {
	switch s {
	case Subsampling444:
		return "4:4:4"
	case Subsampling422:
		return "4:2:2"
	case Subsampling420:
		return "4:2:0"
	}
	return fmt.Sprintf("subsampling(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler for JSON output.
func (s Subsampling) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Factors returns the (horizontal, vertical) luma-to-chroma sampling ratios.
func (s Subsampling) Factors() (h, v int) {
	switch s {
	case Subsampling422:
		return 2, 1
	case Subsampling420:
		return 2, 2
	default:
		return 1, 1
	}
}

// PlaneLayout is the block geometry of one image plane.
type PlaneLayout struct {
	// Content is the real pixel dimensions of the plane.
	Content geom.Size `json:"content"`
	// Extended is Content rounded up to 8-pixel multiples.
	Extended geom.Size `json:"extended"`
	// BlocksW and BlocksH count 8×8 blocks in the extended plane.
	BlocksW int `json:"blocks_w"`
	BlocksH int `json:"blocks_h"`
}

// planeFor computes the block geometry for a plane of the given dimensions.
func planeFor(w, h int) PlaneLayout {
	ew := (w + BlockSize - 1) / BlockSize * BlockSize
	eh := (h + BlockSize - 1) / BlockSize * BlockSize
	return PlaneLayout{
		Content:  geom.Sz(w, h),
		Extended: geom.Sz(ew, eh),
		BlocksW:  ew / BlockSize,
		BlocksH:  eh / BlockSize,
	}
}

// CodecLayout is the full per-plane and MCU geometry for encoding a canvas.
type CodecLayout struct {
	Luma        PlaneLayout `json:"luma"`
	Chroma      PlaneLayout `json:"chroma"`
	Subsampling Subsampling `json:"subsampling"`
	// MCUSize is the luma-pixel extent of one minimum coded unit.
	MCUSize geom.Size `json:"mcu_size"`
	// MCUCols and MCURows form the MCU grid over the canvas.
	MCUCols int `json:"mcu_cols"`
	MCURows int `json:"mcu_rows"`
	// LumaRowsPerMCU is the number of luma rows consumed per MCU row,
	// the natural chunk size for feeding an encoder.
	LumaRowsPerMCU int `json:"luma_rows_per_mcu"`
}

// LayoutFor computes the codec geometry for a canvas under the given
// subsampling scheme.
func LayoutFor(canvas geom.Size, sub Subsampling) CodecLayout {
	fh, fv := sub.Factors()
	mcu := geom.Sz(BlockSize*fh, BlockSize*fv)

	chromaW := (canvas.W + fh - 1) / fh
	chromaH := (canvas.H + fv - 1) / fv

	return CodecLayout{
		Luma:           planeFor(canvas.W, canvas.H),
		Chroma:         planeFor(chromaW, chromaH),
		Subsampling:    sub,
		MCUSize:        mcu,
		MCUCols:        canvas.W / mcu.W,
		MCURows:        canvas.H / mcu.H,
		LumaRowsPerMCU: mcu.H,
	}
}
