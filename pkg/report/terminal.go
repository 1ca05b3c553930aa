package report

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Terminal styles. StyleAuto picks dark or light from the terminal
// background.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StylePlain = "notty"
)

var (
	renderersMu sync.Mutex
	// keyed by style and wrap width
	renderers = map[string]*glamour.TermRenderer{}
)

// Terminal renders markdown for display. Rendering failures return the
// markdown unchanged.
func Terminal(md, style string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	style = resolveStyle(style)
	key := style + ":" + strconv.Itoa(width)

	renderersMu.Lock()
	r := renderers[key]
	if r == nil {
		created, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			renderersMu.Unlock()
			return md
		}
		renderers[key] = created
		r = created
	}
	renderersMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func resolveStyle(style string) string {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case StyleDark:
		return StyleDark
	case StyleLight:
		return StyleLight
	case StylePlain, "plain", "none":
		return StylePlain
	}
	if lipgloss.HasDarkBackground() {
		return StyleDark
	}
	return StyleLight
}
