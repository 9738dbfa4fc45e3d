package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/commonground/cg/internal/forumtest"
	"github.com/commonground/cg/pkg/api"
	cliErrors "github.com/commonground/cg/pkg/errors"
	"github.com/commonground/cg/pkg/output"
	"github.com/commonground/cg/pkg/vote"
	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t      *testing.T
	config string
}

func newCLI(t *testing.T) (*cli, *forumtest.Server) {
	t.Helper()
	s := forumtest.Start(t)
	t.Setenv("CG_API_BASE_URL", s.URL)
	t.Setenv("CG_API_REQUESTS_PER_SECOND", "0")
	color.NoColor = true
	return &cli{t: t, config: filepath.Join(t.TempDir(), "config.toml")}, s
}

// run executes cg with args in the given output format
func (c *cli) run(format string, args ...string) (string, error) {
	c.t.Helper()
	buf := &bytes.Buffer{}
	restore := output.SetWriter(buf)
	defer restore()

	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--config", c.config, "--output", format}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	c, _ := newCLI(t)

	out, err := c.run("text", "version")
	require.NoError(t, err)
	assert.Equal(t, "cg v"+Version+"\n", out)
}

func TestFeedJSON(t *testing.T) {
	c, s := newCLI(t)

	out, err := c.run("json", "feed", "--sort", "new")
	require.NoError(t, err)

	var posts []api.Post
	require.NoError(t, jsoniter.Unmarshal([]byte(out), &posts))
	assert.Len(t, posts, s.PostCount())
}

func TestUnknownOutputFormat(t *testing.T) {
	c, s := newCLI(t)

	_, err := c.run("xml", "feed")
	require.Error(t, err)
	assert.Equal(t, cliErrors.ErrorTypeValidation, cliErrors.CategorizeError(err).Type)
	assert.Zero(t, s.Hits("GET /feed"))
}

func TestVoteArguments(t *testing.T) {
	c, s := newCLI(t)
	id := s.AddPost("ada", "general", "Arguments")

	_, err := c.run("text", "vote", "post", id, "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be up or down")

	_, err = c.run("text", "vote", "poll", id, "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be post or comment")

	// signed out
	_, err = c.run("text", "vote", "post", id, "up")
	require.ErrorIs(t, err, vote.ErrNotAuthenticated)
	assert.Zero(t, s.Hits("POST /posts/:id/vote"))
}

func TestAgentSessionPersists(t *testing.T) {
	c, s := newCLI(t)

	out, err := c.run("text", "auth", "login", "--agent-key", s.AgentKey("scribe"))
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as agent @scribe")

	// a fresh invocation restores the saved key
	out, err = c.run("text", "auth", "me")
	require.NoError(t, err)
	assert.Contains(t, out, "Handle: @scribe")

	id := s.AddPost("ada", "general", "Agents welcome")
	out, err = c.run("text", "vote", "post", id, "up")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "upvoted\n"))
	assert.Equal(t, 1, s.Vote("scribe", "post", id))

	_, err = c.run("text", "auth", "logout")
	require.NoError(t, err)

	out, err = c.run("text", "auth", "me")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
}

func TestRules(t *testing.T) {
	c, s := newCLI(t)

	out, err := c.run("text", "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "The One Rule")
	assert.Zero(t, s.Hits("GET /actors/me"))
}

func TestConfigSetAndShow(t *testing.T) {
	c, _ := newCLI(t)

	out, err := c.run("text", "config", "set", "feed.limit", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ feed.limit = 10")

	out, err = c.run("json", "config", "show")
	require.NoError(t, err)

	var shown map[string]string
	require.NoError(t, jsoniter.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "10", shown["feed.limit"])
	assert.Equal(t, c.config, shown["config_file"])

	_, err = c.run("text", "config", "set", "feed.colour", "blue")
	require.Error(t, err)
}

func TestConfigSetKeepsOverridesOutOfFile(t *testing.T) {
	c, _ := newCLI(t)

	_, err := c.run("json", "config", "set", "feed.sort", "new")
	require.NoError(t, err)

	saved, err := os.ReadFile(c.config)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "sort = 'new'")
	assert.NotContains(t, string(saved), "base_url")
	assert.NotContains(t, string(saved), "format")
	assert.NotContains(t, string(saved), "burst")
}
