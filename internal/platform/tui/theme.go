package tui

import (
	"maps"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/inkgrid/internal/core"
	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/replay"
)

// Theme contains all configurable visual styles.
type Theme struct {
	// Palette maps screen colours to styles. Player colours are filled in
	// from the seat colours.
	Palette map[core.Color]lipgloss.Style

	// HUD styles
	HUDTitle     lipgloss.Style
	HUDLabel     lipgloss.Style
	HUDValue     lipgloss.Style
	HUDSeparator lipgloss.Style
	HUDControls  lipgloss.Style

	// Status line styles
	StatusOK    lipgloss.Style
	StatusError lipgloss.Style

	// Overlay styles
	OverlayBorder lipgloss.Style
	OverlayTitle  lipgloss.Style
	OverlayText   lipgloss.Style

	// Menu styles
	MenuTitle       lipgloss.Style
	MenuItemNormal  lipgloss.Style
	MenuItemActive  lipgloss.Style
	MenuDescription lipgloss.Style
}

func basePalette() map[core.Color]lipgloss.Style {
	return map[core.Color]lipgloss.Style{
		core.ColorDefault:     lipgloss.NewStyle(),
		core.ColorRed:         lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		core.ColorGreen:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		core.ColorYellow:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		core.ColorWhite:       lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		core.ColorBrightWhite: lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		core.ColorGray:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		core.ColorDim:         lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}

// DefaultTheme returns the default visual theme, colouring seats with
// the standard match palette.
func DefaultTheme() Theme {
	t := Theme{
		Palette: basePalette(),

		HUDTitle:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		HUDLabel:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		HUDValue:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		HUDSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		HUDControls:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		StatusOK:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),

		OverlayBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("255")).
			Padding(1, 3),
		OverlayTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		OverlayText:  lipgloss.NewStyle().Foreground(lipgloss.Color("255")),

		MenuTitle:       lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		MenuItemNormal:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		MenuItemActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		MenuDescription: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
	return t.WithPlayerColors(match.Palette)
}

// MonochromeTheme returns a grayscale theme. Seats differ by glyph only.
func MonochromeTheme() Theme {
	t := DefaultTheme()
	grays := []replay.Color{
		{R: 0xff, G: 0xff, B: 0xff},
		{R: 0xbc, G: 0xbc, B: 0xbc},
		{R: 0x8a, G: 0x8a, B: 0x8a},
		{R: 0x62, G: 0x62, B: 0x62},
	}
	t = t.WithPlayerColors(grays)
	t.HUDTitle = lipgloss.NewStyle().Bold(true)
	t.MenuTitle = lipgloss.NewStyle().Bold(true)
	t.MenuItemActive = lipgloss.NewStyle().Bold(true).Underline(true)
	return t
}

// WithPlayerColors returns a copy of the theme with the ink and special
// styles of each seat set from colors. Specials use the same hue in bold.
func (t Theme) WithPlayerColors(colors []replay.Color) Theme {
	t.Palette = maps.Clone(t.Palette)
	for p, c := range colors {
		if p >= core.MaxPlayerColors {
			break
		}
		fg := lipgloss.Color(c.Hex())
		t.Palette[core.PlayerColor(p)] = lipgloss.NewStyle().Foreground(fg)
		t.Palette[core.PlayerSpecialColor(p)] = lipgloss.NewStyle().Foreground(fg).Bold(true)
	}
	return t
}

// Themes lists the selectable themes by name.
var Themes = map[string]func() Theme{
	"default":    DefaultTheme,
	"monochrome": MonochromeTheme,
}

// Global theme variable (set once at startup)
var theme = DefaultTheme()

// SetTheme sets the global theme.
func SetTheme(t Theme) {
	theme = t
}

// CurrentTheme returns the current global theme.
func CurrentTheme() Theme {
	return theme
}
