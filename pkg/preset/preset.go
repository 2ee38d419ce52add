// Package preset loads named layout presets from a TOML file.
//
// A preset maps a name to a query string plus optional output limits, so
// callers can say `--preset thumbnail` instead of spelling out the full
// instruction set. Request parameters layered on top of a preset win.
//
// File format:
//
//	[presets.thumbnail]
//	query       = "w=150&h=150&mode=crop&scale=both"
//	description = "square thumbnail"
//
//	[presets.hero]
//	query     = "w=1600&h=600&mode=crop"
//	max_width  = 2048
//	max_height = 2048
package preset

import (
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/picplan/pkg/errors"
	"github.com/matzehuels/picplan/pkg/geom"
	"github.com/matzehuels/picplan/pkg/layout"
)

// DefaultFile is the preset file name looked up in the working directory.
const DefaultFile = "picplan.toml"

// Preset is one named instruction set.
type Preset struct {
	// Query is the instruction string the preset expands to.
	Query string `toml:"query"`
	// Description is shown in listings.
	Description string `toml:"description"`
	// MaxWidth/MaxHeight cap the output canvas. The cap applies only when
	// both are positive; a single value on its own is ignored.
	MaxWidth  int `toml:"max_width"`
	MaxHeight int `toml:"max_height"`
	// MinWidth/MinHeight floor the output canvas. The floor applies only
	// when both are positive; a single value on its own is ignored.
	MinWidth  int `toml:"min_width"`
	MinHeight int `toml:"min_height"`
}

// Limits converts the preset's bounds into output limits.
func (p Preset) Limits() layout.OutputLimits {
	var lim layout.OutputLimits
	if p.MaxWidth > 0 && p.MaxHeight > 0 {
		s := geom.Sz(p.MaxWidth, p.MaxHeight)
		lim.Max = &s
	}
	if p.MinWidth > 0 && p.MinHeight > 0 {
		s := geom.Sz(p.MinWidth, p.MinHeight)
		lim.Min = &s
	}
	return lim
}

// Set is a loaded preset collection.
type Set struct {
	Presets map[string]Preset `toml:"presets"`
}

// Load reads a preset file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "preset file %s not found", path)
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes preset TOML.
func Parse(data []byte) (*Set, error) {
	var s Set
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPreset, err, "invalid preset file")
	}
	if s.Presets == nil {
		s.Presets = map[string]Preset{}
	}
	for name, p := range s.Presets {
		if p.Query == "" {
			return nil, errors.New(errors.ErrCodeInvalidPreset, "preset %q has no query", name)
		}
	}
	return &s, nil
}

// Get returns a preset by name.
func (s *Set) Get(name string) (Preset, error) {
	p, ok := s.Presets[name]
	if !ok {
		return Preset{}, errors.New(errors.ErrCodePresetNotFound, "no preset named %q", name)
	}
	return p, nil
}

// Names returns the preset names sorted alphabetically.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Presets))
	for n := range s.Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Expand resolves a preset and layers request parameters on top.
// The combined string parses with later (request) values winning.
func (s *Set) Expand(name, requestQuery string) (string, error) {
	p, err := s.Get(name)
	if err != nil {
		return "", err
	}
	if requestQuery == "" {
		return p.Query, nil
	}
	return p.Query + "&" + requestQuery, nil
}
