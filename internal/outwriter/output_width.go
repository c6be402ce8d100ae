package outwriter

import (
	"os"

	"github.com/huangsam/gitlake/internal/contract"
	"golang.org/x/term"
)

// getMaxDetailWidth calculates the maximum width for the free-text columns
// of the parity table based on terminal width.
func getMaxDetailWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Metric + Key + Field + Memory + SQL + Allowed with borders/padding
	baseWidth := 90

	available := termWidth - baseWidth
	if available < 20 {
		return 20
	}
	if available > 60 {
		return 60
	}
	return available
}
