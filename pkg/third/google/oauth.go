package google

import (
	"context"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
)

var userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is the subset of the userinfo response the account layer
// needs.
type Profile struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// Client drives the server-side Google OAuth code flow.
type Client struct {
	conf *oauth2.Config
}

func New(clientID, clientSecret, redirectURL string) *Client {
	return &Client{conf: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"profile", "email"},
		Endpoint:     oauthgoogle.Endpoint,
	}}
}

// Enabled reports whether Google sign-in is configured at all.
func (c *Client) Enabled() bool {
	return c != nil && c.conf.ClientID != ""
}

// AuthURL is where the browser gets redirected to consent.
func (c *Client) AuthURL(state string) string {
	return c.conf.AuthCodeURL(state)
}

// Exchange trades the callback code for a token and fetches the
// user's profile.
func (c *Client) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "exchange authorization code")
	}

	resp, err := c.conf.Client(ctx, tok).Get(userinfoURL)
	if err != nil {
		return nil, errors.Wrap(err, "fetch userinfo")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	ret, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read userinfo body")
	}
	var p Profile
	if err := json.Unmarshal(ret, &p); err != nil {
		return nil, errors.Wrap(err, "parse userinfo")
	}
	if p.ID == "" {
		return nil, errors.New("userinfo response missing subject id")
	}
	return &p, nil
}
