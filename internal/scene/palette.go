package scene

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// DefaultColor is the active color on startup.
const DefaultColor = "#4ade80"

// ErrInvalidColor is returned for colors that are neither hex nor a CSS name.
var ErrInvalidColor = errors.New("invalid color")

// Palette is the DawnBringer 32 swatch set offered by the color picker.
var Palette = []string{
	"#000000", "#222034", "#45283c", "#663931", "#8f563b", "#df7126", "#d9a066", "#eec39a",
	"#fbf236", "#99e550", "#6abe30", "#37946e", "#4b692f", "#524b24", "#323c39", "#3f3f74",
	"#306082", "#5b6ee1", "#639bff", "#5fcde4", "#cbdbfc", "#ffffff", "#9badb7", "#847e87",
	"#696a6a", "#595652", "#76428a", "#ac3232", "#d95763", "#d77bba", "#8f974a", "#8a6f30",
}

// NormalizeColor converts "#rgb", "#rrggbb" or an SVG/CSS color name into
// lowercase "#rrggbb".
func NormalizeColor(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", ErrInvalidColor
	}

	if !strings.HasPrefix(s, "#") {
		c, ok := colornames.Map[s]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return Hex(c), nil
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return "#" + hex, nil
}

// Hex formats c as "#rrggbb", ignoring alpha.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
