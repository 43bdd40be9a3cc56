package slides

import "fmt"

// FormatElapsed renders a generation duration as MM:SS, switching to
// HH:MM:SS past one hour. Negative input clamps to 00:00.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
