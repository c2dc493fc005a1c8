package domain

import "fmt"

const maxClockSeconds = 24 * 60 * 60

// FormatClock renders elapsed seconds as MM:SS, or HH:MM:SS from one hour on.
// Values are clamped to [0, 24h].
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds > maxClockSeconds {
		seconds = maxClockSeconds
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
