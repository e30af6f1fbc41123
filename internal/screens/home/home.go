package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/mateai/mate/internal/gateway"
	"github.com/mateai/mate/internal/router"
	"github.com/mateai/mate/internal/screen"
	"github.com/mateai/mate/internal/ui/components"
	"github.com/mateai/mate/internal/ui/layout"
)

// UpdateAvailableMsg announces a newer release on the home screen.
type UpdateAvailableMsg struct {
	Latest string
}

// Options wire the home menu to the rest of the app. A nil factory
// disables its entry.
type Options struct {
	User        *gateway.User
	Practice    func() screen.Screen
	Assignments func() screen.Screen
	History     func() screen.Screen
	// Logout clears the session and returns the screen to show next.
	Logout func() screen.Screen
	// LLMReady is false when no provider is configured and no remote
	// tutor is set.
	LLMReady bool
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	menu       components.Menu
	menuLabels []string
	user       *gateway.User
	llmReady   bool
	latest     string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(opts Options) *HomeScreen {
	push := func(factory func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			s := factory()
			return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
		}
	}

	items := []components.MenuItem{
		{Label: "PRÁCTICA CON IA", Disabled: opts.Practice == nil || !opts.LLMReady},
		{Label: "EVALUACIONES", Disabled: opts.Assignments == nil},
		{Label: "HISTORIAL", Disabled: opts.History == nil},
		{Label: "CERRAR SESIÓN", Disabled: opts.Logout == nil},
		{Label: "SALIR", Action: func() tea.Cmd { return tea.Quit }},
	}
	if !items[0].Disabled {
		items[0].Action = push(opts.Practice)
	}
	if !items[1].Disabled {
		items[1].Action = push(opts.Assignments)
	}
	if !items[2].Disabled {
		items[2].Action = push(opts.History)
	}
	if !items[3].Disabled {
		logout := opts.Logout
		items[3].Action = func() tea.Cmd {
			next := logout()
			return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
		}
	}

	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.Label
	}

	return &HomeScreen{
		menu:       components.NewMenu(items),
		menuLabels: labels,
		user:       opts.User,
		llmReady:   opts.LLMReady,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(UpdateAvailableMsg); ok {
		h.latest = m.Latest
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back the header, footer and gaps.
	termHeight := height + layout.HeaderHeight + layout.FooterHeight + 2
	compact := layout.IsCompactHeight(termHeight) || layout.IsCompactWidth(width)

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if h.user != nil {
		sections = append(sections, renderProfile(h.user, cw, compact))
	}
	if !h.llmReady {
		sections = append(sections, renderLLMBanner(cw))
	}
	if compact {
		sections = append(sections, renderMenuCompact(h.menu, cw))
	} else {
		sections = append(sections, renderMenu(h.menu, cw))
	}
	if h.latest != "" {
		sections = append(sections, renderUpdateNote(h.latest, cw))
	}

	content := strings.Join(sections, "\n\n")
	return components.CabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Inicio"
}
