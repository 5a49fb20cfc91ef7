// Package observer renders the database status on the three presentation
// surfaces: control enablement, the status panel and the tray icon.
//
// Every observer remembers the last status it rendered so that repeated
// notifications with the same status leave its surface untouched.
package observer

import (
	"sync"

	"github.com/oukeidos/dbdesk/internal/status"
)

// Toggle is a control that can be made interactable or not.
// *widget.Button satisfies it.
type Toggle interface {
	Enable()
	Disable()
}

// Display is a pre-built informational view. fyne.CanvasObject satisfies it.
type Display interface {
	Show()
	Hide()
}

// rendered tracks the last status drawn on a surface.
type rendered struct {
	mu   sync.Mutex
	last status.Status
	set  bool
}

// claim reports whether s differs from what was last drawn and records it.
func (r *rendered) claim(s status.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.set && r.last == s {
		return false
	}
	r.last = s
	r.set = true
	return true
}

// Last returns the last rendered status and whether anything was rendered.
func (r *rendered) Last() (status.Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.set
}

// Enablement gates which controls are interactable.
// Browse and Start are enabled only when stopped, Stop only when started.
type Enablement struct {
	Start  Toggle
	Stop   Toggle
	Browse Toggle

	rendered
}

func (e *Enablement) StatusChanged(s status.Status) {
	if !e.claim(s) {
		return
	}
	setEnabled(e.Browse, s == status.Stopped)
	setEnabled(e.Start, s == status.Stopped)
	setEnabled(e.Stop, s == status.Started)
}

func setEnabled(t Toggle, on bool) {
	if t == nil {
		return
	}
	if on {
		t.Enable()
	} else {
		t.Disable()
	}
}

// PanelSelector shows exactly one display, keyed by status.
type PanelSelector struct {
	displays map[status.Status]Display
	refresh  func()

	rendered
}

// NewPanelSelector hides every display until the first notification.
// refresh, when set, is called after the visible display changes.
func NewPanelSelector(displays map[status.Status]Display, refresh func()) *PanelSelector {
	p := &PanelSelector{displays: make(map[status.Status]Display, len(displays)), refresh: refresh}
	for k, d := range displays {
		p.displays[k] = d
		d.Hide()
	}
	return p
}

func (p *PanelSelector) StatusChanged(s status.Status) {
	if !p.claim(s) {
		return
	}
	for k, d := range p.displays {
		if k != s {
			d.Hide()
		}
	}
	if d, ok := p.displays[s]; ok {
		d.Show()
	}
	if p.refresh != nil {
		p.refresh()
	}
}

// Recorder keeps every status it receives, in order.
type Recorder struct {
	mu   sync.Mutex
	seen []status.Status
}

func (r *Recorder) StatusChanged(s status.Status) {
	r.mu.Lock()
	r.seen = append(r.seen, s)
	r.mu.Unlock()
}

// Seen returns a copy of the recorded statuses.
func (r *Recorder) Seen() []status.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]status.Status(nil), r.seen...)
}
