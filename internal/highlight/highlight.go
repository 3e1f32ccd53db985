// Package highlight colours C and C++ declarations for the terminal via
// Chroma and derives a small palette from the chosen theme.
package highlight

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlight returns an ANSI-highlighted version of text using the given
// Chroma language and theme. Unknown languages return text unchanged.
func Highlight(text, language, theme string) string {
	lex := lexers.Get(language)
	if lex == nil {
		return text
	}
	lex = chroma.Coalesce(lex)
	sty := styles.Get(theme)
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, sty, it); err != nil {
		return text
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Palette holds the tree colours derived from a Chroma theme. Guide and
// Comment are interpolated from the theme background towards its foreground;
// Accent is the most saturated token colour.
type Palette struct {
	Fg      string
	Guide   string // 35% bg→fg: tree guides and separators
	Comment string // 60% bg→fg: documentation text
	Accent  string
}

// ThemePalette derives a palette from a Chroma theme name. Falls back to
// defaults when the theme is unknown or lacks entries.
func ThemePalette(theme string) Palette {
	sty := styles.Get(theme)
	if sty == nil {
		return defaultPalette()
	}
	entry := sty.Get(chroma.Background)
	bg := "#000000"
	fg := "#c8c8c8"
	if entry.Background.IsSet() {
		bg = entry.Background.String()
	}
	if entry.Colour.IsSet() {
		fg = entry.Colour.String()
	}
	return Palette{
		Fg:      fg,
		Guide:   lerpHex(bg, fg, 0.35),
		Comment: lerpHex(bg, fg, 0.60),
		Accent:  pickAccent(sty, fg),
	}
}

func defaultPalette() Palette {
	return Palette{Fg: "#c8c8c8", Guide: "#464646", Comment: "#787878", Accent: "#00dfff"}
}

// pickAccent returns the most saturated foreground color across all tokens.
func pickAccent(sty *chroma.Style, fallback string) string {
	best := fallback
	bestSat := 0.0
	for tt := chroma.TokenType(0); tt < 2000; tt++ {
		e := sty.Get(tt)
		if !e.Colour.IsSet() {
			continue
		}
		hex := e.Colour.String()
		r, g, b := hexToRGBf(hex)
		mx := max(r, g, b)
		mn := min(r, g, b)
		if mx == 0 {
			continue
		}
		if sat := (mx - mn) / mx; sat > bestSat {
			bestSat = sat
			best = hex
		}
	}
	return best
}

// lerpHex linearly interpolates between two hex colors at fraction t.
func lerpHex(a, b string, t float64) string {
	ar, ag, ab := hexToRGBf(a)
	br, bg, bb := hexToRGBf(b)
	return fmt.Sprintf("#%02x%02x%02x",
		clampByte(ar+(br-ar)*t),
		clampByte(ag+(bg-ag)*t),
		clampByte(ab+(bb-ab)*t),
	)
}

func hexToRGBf(hex string) (float64, float64, float64) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0
	}
	return float64(hexByte(hex[1], hex[2])),
		float64(hexByte(hex[3], hex[4])),
		float64(hexByte(hex[5], hex[6]))
}

func hexByte(hi, lo byte) int {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}

func clampByte(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v + 0.5)
}
