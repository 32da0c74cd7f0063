// Package view models the screen-navigation state machine: a fixed set of
// named views, with two of them gated behind an authenticated session.
package view

// State names a screen.
type State string

const (
	StateChat     State = "chat"
	StateLogin    State = "login"
	StateSignup   State = "signup"
	StateProfile  State = "profile"
	StateReport   State = "report"
	StateFeeds    State = "feeds"
	StateStations State = "stations"
)

// Valid reports whether s is one of the known screens.
func (s State) Valid() bool {
	switch s {
	case StateChat, StateLogin, StateSignup, StateProfile, StateReport, StateFeeds, StateStations:
		return true
	}
	return false
}

// Gated reports whether entering s requires an authenticated session.
func (s State) Gated() bool {
	return s == StateReport || s == StateFeeds
}

// Router tracks the current screen. Navigation is user-driven with no
// terminal state. Not safe for concurrent use; each session owns its own
// Router.
type Router struct {
	current State
}

// NewRouter returns a router positioned on the chat screen.
func NewRouter() *Router {
	return &Router{current: StateChat}
}

// Current returns the screen the router is on.
func (rt *Router) Current() State {
	return rt.current
}

// Navigate requests entry to dest. Entering report or feeds without an
// authenticated session redirects to login; every other transition is
// unconditional. Unknown destinations leave the router where it is. The
// returned state is the screen actually entered.
func (rt *Router) Navigate(dest State, authenticated bool) State {
	if !dest.Valid() {
		return rt.current
	}
	if dest.Gated() && !authenticated {
		rt.current = StateLogin
		return rt.current
	}
	rt.current = dest
	return rt.current
}

// Back returns to the chat screen from anywhere.
func (rt *Router) Back() State {
	rt.current = StateChat
	return rt.current
}

// SwitchAuthView toggles between the login and signup screens. From any
// other screen it is a no-op.
func (rt *Router) SwitchAuthView() State {
	switch rt.current {
	case StateLogin:
		rt.current = StateSignup
	case StateSignup:
		rt.current = StateLogin
	}
	return rt.current
}

// AuthSucceeded records a successful login or signup. The router lands on
// chat, not on the gated screen that originally triggered the redirect.
func (rt *Router) AuthSucceeded() State {
	rt.current = StateChat
	return rt.current
}
