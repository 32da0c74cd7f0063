package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"crimewatch/pkg/auth"
	"crimewatch/pkg/config"
	"crimewatch/pkg/models"
	"crimewatch/pkg/store"
	"crimewatch/pkg/utils"
	"crimewatch/pkg/validation"
)

// AccountDeps wires the identity endpoints.
type AccountDeps struct {
	Identity *auth.IdentityService
}

// RegisterAccount registers signup, login, logout and the profile
// endpoints.
func RegisterAccount(r *mux.Router, deps AccountDeps) {
	h := &accountHandlers{identity: deps.Identity}
	r.HandleFunc("/signup", h.signup).Methods(http.MethodPost)
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.logout).Methods(http.MethodPost)
	r.Handle("/profile", auth.RequireSession(http.HandlerFunc(h.getProfile))).Methods(http.MethodGet)
	r.Handle("/profile", auth.RequireSession(http.HandlerFunc(h.patchProfile))).Methods(http.MethodPatch)
}

type accountHandlers struct {
	identity *auth.IdentityService
}

type sessionResponse struct {
	Identity models.Identity `json:"identity"`
	Token    string          `json:"token"`
}

func (h *accountHandlers) signup(w http.ResponseWriter, r *http.Request) {
	var form validation.SignupForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.Check(form); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.identity.Signup(form.Email, form.Password, form.Name, form.Phone)
	switch {
	case errors.Is(err, auth.ErrEmailInUse):
		utils.JSONError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, auth.ErrWeakPassword):
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.issueSession(w, id, http.StatusCreated)
}

func (h *accountHandlers) login(w http.ResponseWriter, r *http.Request) {
	var form validation.LoginForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.Check(form); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.identity.Login(form.Email, form.Password)
	if errors.Is(err, auth.ErrInvalidCredential) {
		utils.JSONError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.issueSession(w, id, http.StatusOK)
}

func (h *accountHandlers) issueSession(w http.ResponseWriter, id models.Identity, status int) {
	token, err := auth.IssueSession(id)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(config.SessionTTL()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	_ = utils.JSONWrite(w, status, sessionResponse{Identity: id, Token: token})
}

// logout clears the session cookie. Tokens are stateless so an old token
// stays valid until it expires; the cookie is the thing being revoked.
func (h *accountHandlers) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *accountHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.SessionFromContext(r.Context())
	p, err := h.identity.GetProfile(id.ID)
	if err == store.ErrNotFound {
		utils.JSONError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, p)
}

func (h *accountHandlers) patchProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.SessionFromContext(r.Context())
	var patch auth.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.identity.UpdateProfile(id.ID, patch)
	if err == store.ErrNotFound {
		utils.JSONError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, p)
}
