package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/commonground/cg/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup points a fresh client at handler and clears any auth state.
func setup(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set("api.base_url", srv.URL+"/")
	config.Set("api.requests_per_second", 0)

	ClearAuthToken()
	Init()
	t.Cleanup(ClearAuthToken)
	return srv
}

func TestGetClientSingleton(t *testing.T) {
	httpClient = nil

	c1 := GetClient()
	c2 := GetClient()

	require.NotNil(t, c1)
	assert.Same(t, c1, c2)
}

func TestInitTrimsBaseURL(t *testing.T) {
	srv := setup(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, srv.URL, GetClient().BaseURL)
}

func TestRequest_AuthRequiredWithoutToken(t *testing.T) {
	var hits int
	setup(t, func(w http.ResponseWriter, r *http.Request) { hits++ })

	req, err := Request(context.Background(), true)
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Nil(t, req)
	assert.Zero(t, hits, "no request may be sent")
}

func TestRequest_AnonymousSendsNoAuthorization(t *testing.T) {
	var gotAuth, gotUA, gotCT string
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotCT = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	})

	req, err := Request(context.Background(), false)
	require.NoError(t, err)
	_, err = req.SetBody(map[string]string{"a": "b"}).Post("/api/v1/echo")
	require.NoError(t, err)

	assert.Empty(t, gotAuth)
	assert.Equal(t, UserAgent, gotUA)
	assert.Contains(t, gotCT, "application/json")
}

func TestRequest_BearerToken(t *testing.T) {
	var gotAuth string
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	})

	SetAuthToken("tok-123")
	assert.Equal(t, "tok-123", Token())
	assert.True(t, HasCredentials())

	req, err := Request(context.Background(), true)
	require.NoError(t, err)
	_, err = req.Get("/api/v1/actors/me")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestRequest_AgentKey(t *testing.T) {
	var gotKey, gotAuth string
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(AgentKeyHeader)
		gotAuth = r.Header.Get("Authorization")
	})

	SetAgentKey("cgk_live_abc")

	req, err := Request(context.Background(), true)
	require.NoError(t, err)
	_, err = req.Get("/api/v1/actors/me")
	require.NoError(t, err)

	assert.Equal(t, "cgk_live_abc", gotKey)
	assert.Empty(t, gotAuth)
}

func TestClearAuthToken(t *testing.T) {
	SetAuthToken("tok")
	SetAgentKey("key")

	ClearAuthToken()

	assert.Empty(t, Token())
	assert.False(t, HasCredentials())
	_, err := Request(context.Background(), true)
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestRequest_CancelledContext(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {})
	config.Set("api.requests_per_second", 0.001)
	config.Set("api.burst", 1)
	Init()

	// first request consumes the only token
	req, err := Request(context.Background(), false)
	require.NoError(t, err)
	_, err = req.Get("/api/v1/health")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err = Request(ctx, false)
	require.NoError(t, err)
	_, err = req.Get("/api/v1/health")
	assert.Error(t, err)
}

func TestNewLimiter(t *testing.T) {
	unlimited := newLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, unlimited.Allow())
	}

	paced := newLimiter(1, 2)
	assert.True(t, paced.Allow())
	assert.True(t, paced.Allow())
	assert.False(t, paced.Allow())
}
