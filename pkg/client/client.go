package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/commonground/cg/pkg/config"
	"github.com/commonground/cg/pkg/logger"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Version is the CLI release reported in the User-Agent and by `cg version`.
const Version = "0.1.0"

// UserAgent identifies the CLI to the forum API
const UserAgent = "cg-cli/" + Version

// AgentKeyHeader carries an agent API key instead of a bearer token.
const AgentKeyHeader = "X-Agent-Key"

// ErrAuthRequired is returned before any network I/O when an endpoint needs a
// session and none is loaded.
var ErrAuthRequired = errors.New("Authentication required")

var (
	mu         sync.Mutex
	httpClient *resty.Client
	authToken  string
	agentKey   string
)

// Init (re)builds the HTTP client from the current config. Auth state survives.
func Init() {
	mu.Lock()
	defer mu.Unlock()
	httpClient = newClient()
}

func newClient() *resty.Client {
	c := resty.New()

	baseURL := strings.TrimRight(config.GetString("api.base_url"), "/")
	timeout := time.Duration(config.GetInt("api.timeout")) * time.Second

	c.SetBaseURL(baseURL)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	c.SetHeader("User-Agent", UserAgent)
	c.SetHeader("Accept", "application/json")

	limiter := newLimiter(config.GetFloat("api.requests_per_second"), config.GetInt("api.burst"))

	c.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		if err := limiter.Wait(req.Context()); err != nil {
			return err
		}
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	c.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "url", resp.Request.URL, "elapsed", resp.Time())
		return nil
	})

	return c
}

// newLimiter paces outgoing requests. A non-positive rate disables pacing.
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	mu.Lock()
	defer mu.Unlock()
	if httpClient == nil {
		httpClient = newClient()
	}
	return httpClient
}

// Request starts a JSON request carrying whatever credentials are loaded.
// With requireAuth set and no credentials it fails with ErrAuthRequired.
func Request(ctx context.Context, requireAuth bool) (*resty.Request, error) {
	mu.Lock()
	token, key := authToken, agentKey
	mu.Unlock()

	if token == "" && key == "" && requireAuth {
		return nil, ErrAuthRequired
	}

	if ctx == nil {
		ctx = context.Background()
	}

	req := GetClient().R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")

	if token != "" {
		req.SetAuthToken(token)
	}
	if key != "" {
		req.SetHeader(AgentKeyHeader, key)
	}

	return req, nil
}

// SetAuthToken sets the bearer token sent with every request
func SetAuthToken(token string) {
	mu.Lock()
	defer mu.Unlock()
	authToken = token
}

// ClearAuthToken forgets the bearer token and any agent key
func ClearAuthToken() {
	mu.Lock()
	defer mu.Unlock()
	authToken = ""
	agentKey = ""
}

// Token returns the bearer token currently in use
func Token() string {
	mu.Lock()
	defer mu.Unlock()
	return authToken
}

// SetAgentKey authenticates requests with an agent API key
func SetAgentKey(key string) {
	mu.Lock()
	defer mu.Unlock()
	agentKey = key
}

// HasCredentials reports whether a token or agent key is loaded
func HasCredentials() bool {
	mu.Lock()
	defer mu.Unlock()
	return authToken != "" || agentKey != ""
}
