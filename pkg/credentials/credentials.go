package credentials

import (
	"errors"
	"os"
	"time"

	"github.com/commonground/cg/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// expirySkew treats tokens about to lapse as already expired so a request
// does not race the server's clock.
const expirySkew = 30 * time.Second

// Credentials is the persisted session of the signed-in actor
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	ActorID      string    `json:"actor_id"`
	Handle       string    `json:"handle"`
	ActorType    string    `json:"actor_type"`
	Role         string    `json:"role,omitempty"`
	AgentKey     string    `json:"agent_key,omitempty"`
}

// Load reads credentials from disk. A missing file yields nil, nil.
func Load() (*Credentials, error) {
	data, err := os.ReadFile(config.GetCredentialsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}

	return &creds, nil
}

// Save writes credentials readable by the owner only
func Save(creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(config.GetCredentialsPath(), data, 0600)
}

// Delete removes stored credentials. Deleting nothing is not an error.
func Delete() error {
	err := os.Remove(config.GetCredentialsPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// IsExpired reports whether the access token has lapsed. Unknown expiry
// counts as live; the server has the final word.
func (c *Credentials) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(expirySkew).After(c.ExpiresAt)
}

// IsValid checks if credentials can authenticate a request
func (c *Credentials) IsValid() bool {
	if c.AgentKey != "" {
		return true
	}
	return c.AccessToken != "" && !c.IsExpired()
}

// CanRefresh reports whether a refresh token is on hand
func (c *Credentials) CanRefresh() bool {
	return c.RefreshToken != ""
}

// ExpiryFromToken reads the exp claim of a JWT without verifying it. The
// signature is the server's business; the CLI only wants to know when to
// refresh.
func ExpiryFromToken(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expiry picks the token's exp claim, falling back to expiresIn seconds from now.
func Expiry(token string, expiresIn int) time.Time {
	if exp, ok := ExpiryFromToken(token); ok {
		return exp
	}
	if expiresIn > 0 {
		return time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	return time.Time{}
}
