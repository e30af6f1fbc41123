package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/mateai/mate/internal/gateway"
	"github.com/mateai/mate/internal/ui/components"
	"github.com/mateai/mate/internal/ui/theme"
)

const titleFull = ` ███╗   ███╗ █████╗ ████████╗███████╗
 ████╗ ████║██╔══██╗╚══██╔══╝██╔════╝
 ██╔████╔██║███████║   ██║   █████╗
 ██║╚██╔╝██║██╔══██║   ██║   ██╔══╝
 ██║ ╚═╝ ██║██║  ██║   ██║   ███████╗
 ╚═╝     ╚═╝╚═╝  ╚═╝   ╚═╝   ╚══════╝`

const titleCompact = "M · A · T · E   A I"

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 24

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

// renderProfile renders the student's name, grade and school.
func renderProfile(u *gateway.User, cw int, compact bool) string {
	name := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(u.FullName())
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var details []string
	if u.Grade != "" {
		details = append(details, fmt.Sprintf("Grado %s", u.Grade))
	}
	if u.School != "" && !compact {
		details = append(details, u.School)
	}
	line := name
	if len(details) > 0 {
		line += "  " + dim.Render(strings.Join(details, " · "))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(line)
}

// renderMenu renders each menu item as a fixed-width button.
func renderMenu(m components.Menu, cw int) string {
	var buttons []string
	for i, item := range m.Items {
		if item.Disabled {
			buttons = append(buttons, lipgloss.NewStyle().
				Width(buttonWidth).
				Align(lipgloss.Center).
				Foreground(theme.TextDim).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(theme.Border).
				Padding(0, 1).
				Render(item.Label))
			continue
		}
		buttons = append(buttons, components.Button(item.Label, i == m.Selected, buttonWidth))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderMenuCompact renders menu items as plain lines for small
// terminals where bordered buttons would overflow.
func renderMenuCompact(m components.Menu, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(m.View())
}

// renderLLMBanner renders a warning when no model is configured.
func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ Configura una clave de IA para practicar (ver mate --help)")
}

// renderUpdateNote renders a dim one-line update notification.
func renderUpdateNote(latestVersion string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render(fmt.Sprintf("Nueva versión %s disponible", latestVersion))
}
