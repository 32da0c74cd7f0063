package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"crimewatch/pkg/auth"
	"crimewatch/pkg/utils"
	"crimewatch/pkg/view"
)

// RegisterViews registers the navigation endpoint. The server owns the
// gating rule so every client renders the same screen for the same
// request.
func RegisterViews(r *mux.Router) {
	r.HandleFunc("/navigate", navigate).Methods(http.MethodPost)
}

type navigateRequest struct {
	// From is the screen the client is on; defaults to chat.
	From string `json:"from"`
	// To requests a screen. Mutually exclusive with Action.
	To string `json:"to"`
	// Action is one of "back", "switch_auth", "auth_succeeded".
	Action string `json:"action"`
}

type navigateResponse struct {
	View string `json:"view"`
	// Redirected is set when a gated request landed on login instead.
	Redirected bool `json:"redirected,omitempty"`
}

func navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	_, authed := auth.SessionFromContext(r.Context())

	rt := view.NewRouter()
	if from := view.State(req.From); from.Valid() {
		// Replaying the starting screen never re-applies gating; the
		// client already holds that screen.
		rt.Navigate(from, true)
	}

	switch {
	case req.Action == "back":
		_ = utils.JSONWrite(w, http.StatusOK, navigateResponse{View: string(rt.Back())})
	case req.Action == "switch_auth":
		_ = utils.JSONWrite(w, http.StatusOK, navigateResponse{View: string(rt.SwitchAuthView())})
	case req.Action == "auth_succeeded":
		_ = utils.JSONWrite(w, http.StatusOK, navigateResponse{View: string(rt.AuthSucceeded())})
	case req.To != "":
		dest := view.State(req.To)
		if !dest.Valid() {
			utils.JSONError(w, http.StatusBadRequest, "unknown view")
			return
		}
		got := rt.Navigate(dest, authed)
		_ = utils.JSONWrite(w, http.StatusOK, navigateResponse{View: string(got), Redirected: got != dest})
	default:
		utils.JSONError(w, http.StatusBadRequest, "missing destination or action")
	}
}

// resolveNavigation applies the gating rule for quick-action navigation.
func resolveNavigation(target string, authed bool) view.State {
	rt := view.NewRouter()
	return rt.Navigate(view.State(target), authed)
}
