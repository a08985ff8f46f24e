package worm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RGB is an 8-bit per channel colour.
type RGB struct {
	R, G, B uint8
}

func (c RGB) Mul(k uint8) RGB {
	return RGB{
		R: uint8((uint16(c.R) * uint16(k)) / 255),
		G: uint8((uint16(c.G) * uint16(k)) / 255),
		B: uint8((uint16(c.B) * uint16(k)) / 255),
	}
}

// Floats returns the colour as 0..1 channels for GPU upload.
func (c RGB) Floats() (r, g, b float32) {
	return float32(c.R) / 255.0, float32(c.G) / 255.0, float32(c.B) / 255.0
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHex parses "#RRGGBB" or "RRGGBB".
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("colour %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// PaletteRandom picks one of the named palettes at start-up.
const PaletteRandom = "random"

var Palettes = map[string][]RGB{
	"pastel": {
		{R: 0x55, G: 0x55, B: 0x55},
		{R: 0xFF, G: 0x80, B: 0x80},
		{R: 0xCD, G: 0xFA, B: 0xDB},
		{R: 0x58, G: 0xA3, B: 0x99},
		{R: 0xA8, G: 0xCD, B: 0x9F},
		{R: 0x49, G: 0x69, B: 0x89},
		{R: 0xEF, G: 0xBC, B: 0x9B},
		{R: 0xD6, G: 0xDA, B: 0xC8},
	},
	"grey": {
		{R: 0xD9, G: 0xD9, B: 0xD9},
		{R: 0x59, G: 0x58, B: 0x56},
		{R: 0x8C, G: 0x8A, B: 0x88},
		{R: 0x26, G: 0x25, B: 0x23},
		{R: 0xBF, G: 0xBE, B: 0xBD},
	},
}

// PaletteNames lists the named palettes in stable order.
func PaletteNames() []string {
	names := make([]string, 0, len(Palettes))
	for n := range Palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PickPalette resolves a palette by name. PaletteRandom rolls one of the
// named palettes with r.
func PickPalette(name string, r *Rand) ([]RGB, error) {
	if name == PaletteRandom {
		names := PaletteNames()
		name = names[r.Intn(len(names))]
	}
	p, ok := Palettes[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q (have %s, %s)", name, strings.Join(PaletteNames(), ", "), PaletteRandom)
	}
	out := make([]RGB, len(p))
	copy(out, p)
	return out, nil
}
