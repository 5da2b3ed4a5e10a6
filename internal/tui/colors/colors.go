package colors

import "github.com/charmbracelet/lipgloss"

// === Color Palette ===
// Neon colors for dark terminals, high contrast pairs for light ones.
var (
	NeonPurple = lipgloss.AdaptiveColor{Light: "#5d40c9", Dark: "#bd93f9"}
	NeonPink   = lipgloss.AdaptiveColor{Light: "#d10074", Dark: "#ff79c6"}
	NeonCyan   = lipgloss.AdaptiveColor{Light: "#0073a8", Dark: "#8be9fd"}
	Gray       = lipgloss.AdaptiveColor{Light: "#d0d0d0", Dark: "#44475a"} // Borders
	LightGray  = lipgloss.AdaptiveColor{
		Light: "#4a4a4a",
		Dark:  "#a9b1d6",
	} // Secondary text
	White = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#f8f8f2"}
)

// === Queue Status Colors ===
var (
	StatusFailed = lipgloss.AdaptiveColor{
		Light: "#d32f2f",
		Dark:  "#ff5555",
	}
	StatusPending = lipgloss.AdaptiveColor{
		Light: "#f57c00",
		Dark:  "#ffb86c",
	} // Delay, Queued, Paused, Warning
	StatusDownloading = lipgloss.AdaptiveColor{
		Light: "#2e7d32",
		Dark:  "#50fa7b",
	}
	StatusCompleted = lipgloss.AdaptiveColor{
		Light: "#7b1fa2",
		Dark:  "#bd93f9",
	}
)

// Progress bar gradient ends, dark palette.
const (
	ProgressStart = "#ff79c6"
	ProgressEnd   = "#bd93f9"
)
