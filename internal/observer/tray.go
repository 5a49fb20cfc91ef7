package observer

import (
	"strings"

	"fyne.io/fyne/v2"
	"github.com/rivo/uniseg"

	"github.com/oukeidos/dbdesk/internal/status"
)

const maxTooltipPath = 48

// TraySurface is the outbound half of the tray host integration.
type TraySurface interface {
	SetIcon(icon fyne.Resource)
	SetTooltip(text string)
}

// TrayUpdater pushes an icon and tooltip for each status to the tray.
type TrayUpdater struct {
	Surface TraySurface
	Icons   map[status.Status]fyne.Resource
	// Directory returns the active database directory for the tooltip.
	Directory func() string
	AppName   string

	rendered
}

func (t *TrayUpdater) StatusChanged(s status.Status) {
	if t.Surface == nil || !t.claim(s) {
		return
	}
	if icon, ok := t.Icons[s]; ok && icon != nil {
		t.Surface.SetIcon(icon)
	}
	t.Surface.SetTooltip(t.Tooltip(s))
}

// Tooltip returns the text shown for s.
func (t *TrayUpdater) Tooltip(s status.Status) string {
	name := t.AppName
	if name == "" {
		name = "dbdesk"
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(": ")
	switch s {
	case status.Started:
		b.WriteString("database running")
	case status.Stopping:
		b.WriteString("database stopping")
	default:
		b.WriteString("database stopped")
	}
	if t.Directory != nil {
		if dir := t.Directory(); dir != "" {
			b.WriteString(" (")
			b.WriteString(ShortenPath(dir, maxTooltipPath))
			b.WriteString(")")
		}
	}
	return b.String()
}

// ShortenPath keeps the tail of path within max grapheme clusters,
// prefixing "…" when it had to cut.
func ShortenPath(path string, max int) string {
	if max <= 1 || uniseg.GraphemeClusterCount(path) <= max {
		return path
	}
	var clusters []string
	g := uniseg.NewGraphemes(path)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}
	return "…" + strings.Join(clusters[len(clusters)-(max-1):], "")
}
