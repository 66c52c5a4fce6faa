package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"

	"socialnet/middleware"
	"socialnet/services"
	"socialnet/utils/errors"
)

const (
	stateCookieName = "oauth_state"
	stateCookieTTL  = 10 * time.Minute
)

type AuthHandler struct {
	authService *services.AuthService
	provider    services.IdentityProvider
	cookies     *securecookie.SecureCookie
	frontendURL string
}

// NewAuthHandler builds the auth endpoints. provider may be nil, in which
// case the Google routes answer 404.
func NewAuthHandler(authService *services.AuthService, provider services.IdentityProvider, cookieHashKey []byte, frontendURL string) *AuthHandler {
	cookies := securecookie.New(cookieHashKey, nil)
	cookies.MaxAge(int(stateCookieTTL.Seconds()))
	return &AuthHandler{
		authService: authService,
		provider:    provider,
		cookies:     cookies,
		frontendURL: frontendURL,
	}
}

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required,notblank,max=50"`
	LastName  string `json:"lastName" validate:"required,notblank,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var input registerRequest
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}

	token, _, err := h.authService.Register(r.Context(), services.RegisterInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *AuthHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := decode(r, &input); err != nil {
		middleware.WriteError(w, err)
		return
	}
	token, err := h.authService.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// GoogleLogin stores a signed state cookie and redirects to Google's consent page
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		middleware.WriteError(w, errors.NotFound("Google login is not configured"))
		return
	}

	state := uuid.New().String()
	encoded, err := h.cookies.Encode(stateCookieName, state)
	if err != nil {
		middleware.WriteError(w, errors.Internal(err, "Failed to start Google login"))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    encoded,
		Path:     "/auth",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		middleware.WriteError(w, errors.NotFound("Google login is not configured"))
		return
	}

	if err := h.checkState(r); err != nil {
		middleware.WriteError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/auth", MaxAge: -1})

	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		logrus.WithField("reason", reason).Warn("Google login declined")
		middleware.WriteError(w, errors.ErrInvalidCredential.WithMessage("Google authentication failed"))
		return
	}
	code := q.Get("code")
	if code == "" {
		middleware.WriteError(w, errors.InvalidInput("Missing authorization code"))
		return
	}

	identity, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	token, _, err := h.authService.LoginWithIdentity(r.Context(), identity)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if h.frontendURL == "" {
		writeJSON(w, http.StatusOK, tokenResponse{Token: token})
		return
	}
	http.Redirect(w, r, h.frontendURL+"/auth/success?token="+url.QueryEscape(token), http.StatusFound)
}

func (h *AuthHandler) checkState(r *http.Request) error {
	invalid := errors.ErrInvalidCredential.WithMessage("Invalid OAuth state")

	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return invalid
	}
	var state string
	if err := h.cookies.Decode(stateCookieName, cookie.Value, &state); err != nil {
		return invalid
	}
	if state == "" || state != r.URL.Query().Get("state") {
		return invalid
	}
	return nil
}

// AuthSuccess is the landing page of the OAuth redirect; it echoes the token
func (h *AuthHandler) AuthSuccess(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		middleware.WriteError(w, errors.Validation(errors.FieldError{Field: "token", Message: "token is required"}))
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}
