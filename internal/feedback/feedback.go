// Package feedback holds the capability ports the page uses for side
// effects: haptic pulses and user notifications. The simulation and
// visibility code never call the platform directly.
package feedback

import "time"

// Haptic plays a vibration pattern: on, off, on, ... durations.
type Haptic interface {
	Vibrate(pattern ...time.Duration)
}

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(title, body string)
}

type Intensity int

const (
	Light Intensity = iota
	Medium
	Strong
)

// Pulse is the press duration for a tactile control.
func (i Intensity) Pulse() time.Duration {
	switch i {
	case Light:
		return 10 * time.Millisecond
	case Strong:
		return 25 * time.Millisecond
	default:
		return 15 * time.Millisecond
	}
}

func (i Intensity) String() string {
	switch i {
	case Light:
		return "light"
	case Strong:
		return "strong"
	default:
		return "medium"
	}
}

var (
	// ActionPulse confirms a menu action.
	ActionPulse = []time.Duration{30 * time.Millisecond}
	// OpenPattern plays when the floating menu opens.
	OpenPattern = []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 10 * time.Millisecond}
)

type NopHaptic struct{}

func (NopHaptic) Vibrate(...time.Duration) {}

type NopNotifier struct{}

func (NopNotifier) Notify(string, string) {}

// Multi fans a notification out to every notifier.
type Multi []Notifier

func (m Multi) Notify(title, body string) {
	for _, n := range m {
		if n != nil {
			n.Notify(title, body)
		}
	}
}
