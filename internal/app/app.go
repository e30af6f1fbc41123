// Package app is the root Bubble Tea model: it owns the router, the frame
// and the wiring between screens and the backend.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mateai/mate/internal/gateway"
	"github.com/mateai/mate/internal/logger"
	"github.com/mateai/mate/internal/practice"
	"github.com/mateai/mate/internal/release"
	"github.com/mateai/mate/internal/router"
	"github.com/mateai/mate/internal/screen"
	"github.com/mateai/mate/internal/screens/assignments"
	"github.com/mateai/mate/internal/screens/history"
	"github.com/mateai/mate/internal/screens/home"
	"github.com/mateai/mate/internal/screens/login"
	practicescreen "github.com/mateai/mate/internal/screens/practice"
	"github.com/mateai/mate/internal/ui/layout"
)

// Options are the dependencies of the TUI.
type Options struct {
	Gateway    *gateway.Client
	Controller *practice.Controller
	// History is the local session log; nil hides the history entry.
	History history.Source
	// LLMReady is false when practice cannot generate exercises.
	LLMReady bool

	// Release and Version enable the startup update check.
	Release *release.Checker
	Version string

	Logger *logger.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	router *router.Router
	log    *logger.Logger
	width  int
	height int
}

// newAppModel starts on the home screen when a session is stored and on
// the login screen otherwise.
func newAppModel(opts Options) AppModel {
	m := AppModel{opts: opts, log: opts.Logger}
	if m.log == nil {
		m.log = logger.NewNop()
	}

	var first screen.Screen
	if u := opts.Gateway.Session().User(); opts.Gateway.Session().LoggedIn() && u != nil {
		opts.Controller.SetStudent(u)
		first = m.homeScreen(u)
	} else {
		first = m.loginScreen()
	}
	m.router = router.New(first)
	return m
}

func (m AppModel) loginScreen() screen.Screen {
	return login.New(m.opts.Gateway, func(u *gateway.User) screen.Screen {
		m.opts.Controller.SetStudent(u)
		m.log.Info("logged in", "user_id", u.ID)
		return m.homeScreen(u)
	})
}

func (m AppModel) homeScreen(u *gateway.User) screen.Screen {
	ctrl := m.opts.Controller
	opts := home.Options{
		User:     u,
		LLMReady: m.opts.LLMReady,
		Practice: func() screen.Screen { return practicescreen.New(ctrl) },
		Assignments: func() screen.Screen {
			return assignments.New(m.opts.Gateway, func(test gateway.Test, assignmentID string) screen.Screen {
				return practicescreen.NewAssigned(ctrl, test, assignmentID)
			})
		},
		Logout: func() screen.Screen {
			if err := m.opts.Gateway.Logout(); err != nil {
				m.log.Warn("clear session failed", "error", err)
			}
			ctrl.Restart()
			ctrl.SetStudent(nil)
			return m.loginScreen()
		},
	}
	if m.opts.History != nil {
		src := m.opts.History
		opts.History = func() screen.Screen { return history.New(src) }
	}
	return home.New(opts)
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), m.checkRelease())
}

// checkRelease looks for a newer release in the background.
func (m AppModel) checkRelease() tea.Cmd {
	if m.opts.Release == nil {
		return nil
	}
	checker, version, log := m.opts.Release, m.opts.Version, m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		res, err := checker.Check(ctx, version)
		if err != nil {
			log.Debug("release check skipped", "error", err)
			return nil
		}
		if !res.UpdateAvailable {
			return nil
		}
		return home.UpdateAvailableMsg{Latest: res.Latest}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width > 0 && m.height > 0 {
		v.SetContent(m.render())
	}
	return v
}

// render draws the header, the active screen and the footer.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	userName := ""
	if u := m.opts.Gateway.Session().User(); u != nil {
		userName = u.FullName()
	}
	header := layout.RenderHeader(title, userName, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Salir"})
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Volver"},
			{Key: "Ctrl+C", Description: "Salir"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navegar"},
			{Key: "Enter", Description: "Elegir"},
			{Key: "Ctrl+C", Description: "Salir"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error al ejecutar la aplicación:", err)
		return err
	}
	return nil
}
