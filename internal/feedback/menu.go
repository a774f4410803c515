package feedback

import "fmt"

// DefaultActions are the floating menu entries.
var DefaultActions = []string{"Speed", "Explore", "Contact"}

// Menu is the floating quick-action menu. It owns no drawing; hosts read
// Open and Actions to paint it.
type Menu struct {
	actions  []string
	open     bool
	haptic   Haptic
	notifier Notifier
}

func NewMenu(actions []string, haptic Haptic, notifier Notifier) *Menu {
	if haptic == nil {
		haptic = NopHaptic{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Menu{
		actions:  append([]string(nil), actions...),
		haptic:   haptic,
		notifier: notifier,
	}
}

func (m *Menu) Actions() []string { return m.actions }

func (m *Menu) Open() bool { return m.open }

// Toggle opens or closes the menu; opening plays OpenPattern.
func (m *Menu) Toggle() {
	m.open = !m.open
	if m.open {
		m.haptic.Vibrate(OpenPattern...)
	}
}

func (m *Menu) Close() { m.open = false }

// Trigger runs action i: the menu closes, a toast confirms and a pulse
// plays. Out of range indexes are ignored.
func (m *Menu) Trigger(i int) bool {
	if i < 0 || i >= len(m.actions) {
		return false
	}
	m.open = false
	name := m.actions[i]
	m.notifier.Notify(name, fmt.Sprintf("Action %s executed successfully!", name))
	m.haptic.Vibrate(ActionPulse...)
	return true
}

// Press is the tactile button feedback for a control of given intensity.
func Press(h Haptic, i Intensity) {
	if h == nil {
		return
	}
	h.Vibrate(i.Pulse())
}
