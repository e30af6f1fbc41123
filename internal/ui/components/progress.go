package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/mateai/mate/internal/ui/theme"
)

// ProgressBar renders done out of total as a horizontal bar.
type ProgressBar struct {
	Label string
	Done  int
	Total int
	// ShowCount appends "done/total"; otherwise the percentage is shown.
	ShowCount bool
	Width     int
}

// Fraction returns done/total clamped to [0, 1].
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Done) / float64(p.Total)
	return min(max(f, 0), 1)
}

func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	suffix := fmt.Sprintf("  %d%%", int(p.Fraction()*100+0.5))
	if p.ShowCount {
		suffix = fmt.Sprintf("  %d/%d", p.Done, p.Total)
	}

	barWidth := max(p.Width-lipgloss.Width(result)-len(suffix), 4)
	filled := int(float64(barWidth) * p.Fraction())

	result += theme.ProgressFilled.Render(strings.Repeat("█", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat("░", barWidth-filled))
	return result + lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix)
}
