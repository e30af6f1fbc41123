package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/mateai/mate/internal/gateway"
	"github.com/mateai/mate/internal/practice"
)

func testOptions(t *testing.T, user *gateway.User) Options {
	t.Helper()
	sess, err := gateway.NewSession(&gateway.MemoryStore{})
	if err != nil {
		t.Fatal(err)
	}
	if user != nil {
		if err := sess.Set("tok", user); err != nil {
			t.Fatal(err)
		}
	}
	return Options{
		Gateway:    gateway.NewClient(gateway.Config{BaseURL: "http://127.0.0.1:1"}, sess),
		Controller: practice.New(practice.Options{}),
	}
}

func TestInitialScreen(t *testing.T) {
	m := newAppModel(testOptions(t, nil))
	if got := m.router.Active().Title(); got != "Iniciar sesión" {
		t.Errorf("logged out: active = %q", got)
	}

	m = newAppModel(testOptions(t, &gateway.User{ID: "st-1", Name: "Ana", Grade: "3", Role: gateway.RoleStudent}))
	if got := m.router.Active().Title(); got != "Inicio" {
		t.Errorf("logged in: active = %q", got)
	}
	if st := m.opts.Controller.Snapshot(); st.Settings.Grade != "3" {
		t.Errorf("controller grade = %q, want the student's grade", st.Settings.Grade)
	}
}

func resized(t *testing.T, m AppModel, w, h int) AppModel {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return next.(AppModel)
}

func TestView_ShowsUser(t *testing.T) {
	m := resized(t, newAppModel(testOptions(t, &gateway.User{ID: "st-1", Name: "Ana", LastName: "Pérez"})), 100, 40)
	if !strings.Contains(m.render(), "Ana Pérez") {
		t.Error("header should show the logged-in user")
	}
}

func TestView_TooSmall(t *testing.T) {
	m := resized(t, newAppModel(testOptions(t, nil)), 20, 5)
	out := m.render()
	if !strings.Contains(out, "pequeña") || !strings.Contains(out, "Actual: 20 x 5") {
		t.Errorf("expected the size warning, got %q", out)
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newAppModel(testOptions(t, nil))
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestEscAtRootIsIgnored(t *testing.T) {
	m := newAppModel(testOptions(t, &gateway.User{ID: "st-1", Name: "Ana"}))
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		t.Error("esc on the root screen should do nothing")
	}
}
