// Package login is the first screen when no session is stored.
package login

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mateai/mate/internal/gateway"
	"github.com/mateai/mate/internal/router"
	"github.com/mateai/mate/internal/screen"
	"github.com/mateai/mate/internal/ui/components"
	"github.com/mateai/mate/internal/ui/layout"
	"github.com/mateai/mate/internal/ui/theme"
)

// Authenticator logs a user in. *gateway.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, creds gateway.Credentials) (*gateway.User, error)
}

// loginResultMsg is sent when the backend answered.
type loginResultMsg struct {
	User *gateway.User
	Err  error
}

// LoginScreen asks for email and password and replaces itself with the
// screen produced by next on success.
type LoginScreen struct {
	auth     Authenticator
	next     func(u *gateway.User) screen.Screen
	email    components.TextInput
	password components.TextInput
	focus    int
	loading  bool
	errMsg   string
	done     bool
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen.
func New(auth Authenticator, next func(u *gateway.User) screen.Screen) *LoginScreen {
	l := &LoginScreen{
		auth:     auth,
		next:     next,
		email:    components.NewTextInput("Correo electrónico", "estudiante@escuela.edu", false, 120),
		password: components.NewPasswordInput("Contraseña", ""),
	}
	l.password.Blur()
	return l
}

func (l *LoginScreen) Init() tea.Cmd {
	return l.email.Focus()
}

func (l *LoginScreen) Title() string {
	return "Iniciar sesión"
}

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Cambiar campo"},
		{Key: "Enter", Description: "Entrar"},
		{Key: "Ctrl+C", Description: "Salir"},
	}
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		l.loading = false
		if msg.Err != nil {
			l.errMsg = describe(msg.Err)
			l.password.Reset()
			return l, nil
		}
		return l, l.transition(msg.User)

	case tea.KeyPressMsg:
		if l.loading {
			return l, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			return l, l.toggleFocus()
		case "enter":
			if l.focus == 0 {
				return l, l.toggleFocus()
			}
			return l, l.submit()
		}
	}

	var cmd tea.Cmd
	if l.focus == 0 {
		l.email, cmd = l.email.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return l, cmd
}

func (l *LoginScreen) toggleFocus() tea.Cmd {
	l.focus = 1 - l.focus
	if l.focus == 0 {
		l.password.Blur()
		return l.email.Focus()
	}
	l.email.Blur()
	return l.password.Focus()
}

func (l *LoginScreen) submit() tea.Cmd {
	creds := gateway.Credentials{Email: l.email.Value(), Password: l.password.Model.Value()}
	if creds.Email == "" || creds.Password == "" {
		l.errMsg = "Escribe tu correo y tu contraseña."
		return nil
	}
	l.loading = true
	l.errMsg = ""
	auth := l.auth
	return func() tea.Msg {
		u, err := auth.Login(context.Background(), creds)
		return loginResultMsg{User: u, Err: err}
	}
}

func (l *LoginScreen) transition(u *gateway.User) tea.Cmd {
	if l.done {
		return nil
	}
	l.done = true
	next := l.next(u)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

// describe turns a login failure into a message for the student.
func describe(err error) string {
	if gateway.IsUnauthorized(err) {
		return "Correo o contraseña incorrectos."
	}
	return err.Error()
}

func (l *LoginScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, RenderBanner(width), "")
	sections = append(sections, theme.Subtitle.Render("Tu tutor de matemáticas"), "")

	form := l.email.View() + "\n\n" + l.password.View()
	sections = append(sections, theme.Card.Width(min(width-8, 60)).Render(form), "")

	switch {
	case l.loading:
		sections = append(sections, theme.Hint.Render("Entrando..."))
	case l.errMsg != "":
		sections = append(sections, theme.ErrorText.Render(l.errMsg))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
