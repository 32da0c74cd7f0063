package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouterInitialState(t *testing.T) {
	assert.Equal(t, StateChat, NewRouter().Current())
}

func TestGatedViewsRedirectToLogin(t *testing.T) {
	for _, dest := range []State{StateReport, StateFeeds} {
		rt := NewRouter()
		got := rt.Navigate(dest, false)
		assert.Equal(t, StateLogin, got, "dest %q", dest)
		assert.Equal(t, StateLogin, rt.Current(), "dest %q", dest)
	}
}

func TestGatedViewsOpenWithSession(t *testing.T) {
	for _, dest := range []State{StateReport, StateFeeds} {
		rt := NewRouter()
		assert.Equal(t, dest, rt.Navigate(dest, true), "dest %q", dest)
	}
}

func TestStationsOpenWithoutSession(t *testing.T) {
	rt := NewRouter()
	assert.Equal(t, StateStations, rt.Navigate(StateStations, false))
}

func TestUngatedTransitionsUnconditional(t *testing.T) {
	rt := NewRouter()
	for _, dest := range []State{StateLogin, StateSignup, StateProfile, StateStations, StateChat} {
		assert.Equal(t, dest, rt.Navigate(dest, false), "dest %q", dest)
	}
}

func TestUnknownDestinationIsNoop(t *testing.T) {
	rt := NewRouter()
	rt.Navigate(StateStations, false)
	assert.Equal(t, StateStations, rt.Navigate(State("settings"), true))
	assert.Equal(t, StateStations, rt.Current())
}

func TestBackAlwaysReturnsToChat(t *testing.T) {
	for _, from := range []State{StateLogin, StateSignup, StateProfile, StateStations} {
		rt := NewRouter()
		rt.Navigate(from, false)
		assert.Equal(t, StateChat, rt.Back(), "from %q", from)
	}
	for _, from := range []State{StateReport, StateFeeds} {
		rt := NewRouter()
		rt.Navigate(from, true)
		assert.Equal(t, StateChat, rt.Back(), "from %q", from)
	}
}

func TestLoginSignupMutuallyReachable(t *testing.T) {
	rt := NewRouter()
	rt.Navigate(StateLogin, false)
	assert.Equal(t, StateSignup, rt.SwitchAuthView())
	assert.Equal(t, StateLogin, rt.SwitchAuthView())
}

func TestSwitchAuthViewNoopElsewhere(t *testing.T) {
	rt := NewRouter()
	assert.Equal(t, StateChat, rt.SwitchAuthView())
}

func TestAuthSucceededLandsOnChat(t *testing.T) {
	// Redirected to login from a gated view; a successful login returns to
	// chat, not to the view that triggered the redirect.
	rt := NewRouter()
	rt.Navigate(StateReport, false)
	assert.Equal(t, StateLogin, rt.Current())
	assert.Equal(t, StateChat, rt.AuthSucceeded())
}
