package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"socialnet/utils/errors"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// ExternalIdentity is what an identity provider tells us about a user
type ExternalIdentity struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Picture   string
}

// IdentityProvider runs the OAuth authorization-code handshake
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*ExternalIdentity, error)
}

type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*ExternalIdentity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.ErrInvalidCredential.WithMessage("Google authentication failed")
	}

	resp, err := p.config.Client(ctx, token).Get(p.userInfoURL)
	if err != nil {
		return nil, errors.Internal(err, "Failed to fetch Google profile")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Internal(fmt.Errorf("userinfo status %d", resp.StatusCode), "Failed to fetch Google profile")
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.Internal(err, "Failed to decode Google profile")
	}
	if info.Email != "" && !info.EmailVerified {
		return nil, errors.ErrInvalidCredential.WithMessage("Google email is not verified")
	}

	identity := &ExternalIdentity{
		ID:        info.Sub,
		Email:     info.Email,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
		Picture:   info.Picture,
	}
	if identity.FirstName == "" {
		identity.FirstName = info.Name
	}
	return identity, nil
}
