package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// RenderKey identifies one cached render: the artifact kind plus the exact
// planning inputs that produced it. Two requests share an entry only when
// every layout-relevant input matches.
type RenderKey struct {
	// Kind is the artifact format ("json", "svg").
	Kind string
	// Query is the fully expanded instruction string.
	Query string
	// SourceW, SourceH, and EXIF pin the source the plan was computed
	// against.
	SourceW, SourceH, EXIF int
	// Variant folds in anything else that changes the rendered output
	// (decoder offer, subsampling); empty when unused.
	Variant string
}

// String renders the key as kind:hex. The planning inputs are hashed; the
// kind stays in clear text so backends can group entries by artifact type.
func (k RenderKey) String() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf(
		"%s\x00%dx%d\x00exif=%d\x00%s",
		k.Query, k.SourceW, k.SourceH, k.EXIF, k.Variant,
	)))
	return k.Kind + ":" + hex.EncodeToString(sum[:])
}
