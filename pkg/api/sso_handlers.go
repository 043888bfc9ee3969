package api

import (
	"net/http"
	"time"

	"github.com/trackforge/tracker/pkg/httputil"
	"github.com/trackforge/tracker/pkg/sso"
)

const stateCookie = "oauth2_state"

func (s *Server) handleOAuth2Login(w http.ResponseWriter, r *http.Request) {
	state, err := sso.NewState()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/oauth2/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	s.deps.OIDC.InitiateLogin(w, r, state)
}

func (s *Server) handleOAuth2Callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid OAuth2 state")
		return
	}

	identity, err := s.deps.OIDC.HandleCallback(r.Context(), r)
	if err != nil {
		s.deps.Log.WithError(err).Warn("federated login failed")
		httputil.WriteError(w, http.StatusUnauthorized, "OAuth2 login failed")
		return
	}

	token, _, err := s.deps.Bridge.Login(r.Context(), identity)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.TokensIssuedTotal.Inc()
	}
	httputil.WriteSuccess(w, http.StatusOK, loginResponse{Token: token})
}
