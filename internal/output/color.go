package output

import "github.com/fatih/color"

// Color modes accepted by output.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

//nolint:gochecknoglobals // shared painters, safe for concurrent use
var (
	paintInfo    = color.New(color.FgCyan).SprintFunc()
	paintWarn    = color.New(color.FgYellow).SprintFunc()
	paintSuccess = color.New(color.FgGreen).SprintFunc()
	paintError   = color.New(color.FgRed, color.Bold).SprintFunc()
)

// SetColorMode applies output.color. Auto keeps terminal and NO_COLOR
// detection.
func SetColorMode(mode string) {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}
}
