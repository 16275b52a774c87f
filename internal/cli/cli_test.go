package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/hourbook/hourbook/internal/common/httpclient"
	"github.com/hourbook/hourbook/internal/hourbooksrv/auth"
	hbconfig "github.com/hourbook/hourbook/internal/hourbooksrv/config"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
	"github.com/hourbook/hourbook/internal/hourbooksrv/ledger"
	"github.com/hourbook/hourbook/internal/hourbooksrv/ledger/ledgertest"
	"github.com/hourbook/hourbook/internal/hourbooksrv/server"
	"github.com/hourbook/hourbook/internal/hourbooksrv/settings"
)

const (
	rootCode   = "10101"
	adminCode  = "20202"
	memberCode = "30303"
)

type cliEnv struct {
	store      *ledgertest.MemStore
	configPath string
}

func newCliEnv(t *testing.T) *cliEnv {
	t.Helper()
	color.NoColor = true

	store := ledgertest.NewMemStore(
		&models.Member{Code: rootCode, Name: "Root", Role: "Mentor", IsAdmin: true},
		&models.Member{Code: adminCode, Name: "Grace", Role: "Captain", IsAdmin: true},
		&models.Member{Code: memberCode, Name: "Ada", Role: "Team Member"},
	)
	ac := hbconfig.Defaults().Auth
	ac.SigningSecret = strings.Repeat("c", 32)
	authSvc := auth.NewService(store, &ac)
	srv, err := server.CreateNewServer(server.Options{
		Ledger:   ledger.New(store),
		Auth:     authSvc,
		Settings: settings.NewStore(time.Hour, authSvc.IsRoot, rootCode),
	})
	require.NoError(t, err)
	srv.MountHandlers()

	prev := newClient
	newClient = func(cfg *Config) httpclient.HTTPClientInterface {
		return httpclient.NewHandlerClient(cfg, srv.Router)
	}
	t.Cleanup(func() { newClient = prev })

	env := &cliEnv{store: store, configPath: filepath.Join(t.TempDir(), "hourbook", "config.yaml")}
	_, err = env.run(t, "", "config", "create", "--server", "localhost:8190")
	require.NoError(t, err)
	return env
}

// run executes the CLI with args and returns everything it printed.
func (e *cliEnv) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(append(args, "--config", e.configPath))
	err := root.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	require.NoError(t, err, out)
	return out
}

func (e *cliEnv) lastSessionID(t *testing.T) string {
	t.Helper()
	sessions := e.store.Sessions()
	require.NotEmpty(t, sessions)
	return sessions[len(sessions)-1].ID.String()
}

func requireHTTPError(t *testing.T, err error, status int, notice string) {
	t.Helper()
	var he *httpclient.HTTPError
	require.True(t, errors.As(err, &he), "expected an HTTP error, got %v", err)
	assert.Equal(t, status, he.StatusCode)
	assert.Equal(t, notice, he.Notice)
}

func TestConfigCreateAndLogin(t *testing.T) {
	env := newCliEnv(t)

	out := env.mustRun(t, "login", adminCode)
	assert.Contains(t, out, "Logged in as Grace (20202)")
	assert.Contains(t, out, "Administrator privileges: yes")

	content, err := os.ReadFile(env.configPath)
	require.NoError(t, err)
	var cfg Config
	require.NoError(t, yaml.Unmarshal(content, &cfg))
	assert.Equal(t, "http://localhost:8190", cfg.ServerURL)
	assert.Equal(t, adminCode, cfg.MemberCode)
	assert.NotEmpty(t, cfg.Token)
	assert.True(t, cfg.GetTokenExpiry().After(time.Now()))
	assert.False(t, cfg.IsRoot)

	env.mustRun(t, "config", "clear")
	content, err = os.ReadFile(env.configPath)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "token")
}

func TestConfigCreateNeedsPort(t *testing.T) {
	env := newCliEnv(t)
	_, err := env.run(t, "", "config", "create", "--server", "hourbook.local")
	assert.ErrorContains(t, err, "port")
}

func TestMissingConfig(t *testing.T) {
	env := newCliEnv(t)
	env.configPath = filepath.Join(t.TempDir(), "absent.yaml")
	_, err := env.run(t, "", "open")
	assert.ErrorContains(t, err, "hourbook config create")
}

func TestSignInAndOut(t *testing.T) {
	env := newCliEnv(t)
	env.mustRun(t, "login", adminCode)

	out := env.mustRun(t, "signin", memberCode)
	assert.Contains(t, out, "Signed in 30303")
	id := env.lastSessionID(t)

	_, err := env.run(t, "", "signin", memberCode)
	requireHTTPError(t, err, 409, "conflict")

	out = env.mustRun(t, "open")
	assert.Contains(t, out, "Open Sessions:")
	assert.Contains(t, out, id)

	out = env.mustRun(t, "signout", id)
	assert.Contains(t, out, "Signed out 30303")
	assert.Contains(t, out, "Hours: 0.00")

	out = env.mustRun(t, "history", memberCode, "--json")
	assert.Equal(t, int64(1), gjson.Get(out, "result").Int())
	assert.Equal(t, int64(1), gjson.Get(out, "value.sessions.#").Int())
	assert.Equal(t, id, gjson.Get(out, "value.sessions.0.id").String())
}

func TestOpenShowsNameAndElapsed(t *testing.T) {
	env := newCliEnv(t)
	env.mustRun(t, "login", adminCode)
	env.mustRun(t, "signin", memberCode)
	checkIn := env.store.Sessions()[0].CheckInTime

	prev := timeNow
	timeNow = func() time.Time { return checkIn.Add(4*time.Hour + 7*time.Minute + 30*time.Second) }
	t.Cleanup(func() { timeNow = prev })

	out := env.mustRun(t, "open")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "ELAPSED")
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "4:07")

	out = env.mustRun(t, "open", "--json")
	assert.Equal(t, "Ada", gjson.Get(out, "value.sessions.0.member_name").String())
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0:00", formatElapsed(-time.Minute))
	assert.Equal(t, "0:59", formatElapsed(59*time.Minute+59*time.Second))
	assert.Equal(t, "12:05", formatElapsed(12*time.Hour+5*time.Minute))
}

func TestAddAdjustDelete(t *testing.T) {
	env := newCliEnv(t)
	env.mustRun(t, "login", adminCode)

	_, err := env.run(t, "", "add", memberCode)
	assert.ErrorContains(t, err, "--hours is required")

	out := env.mustRun(t, "add", memberCode, "--hours", "2.5")
	assert.Contains(t, out, "Added 2.50 hours for 30303")
	assert.Contains(t, out, "Notes: "+ledger.DefaultManualNote)
	id := env.lastSessionID(t)

	out = env.mustRun(t, "adjust", id, "--hours", "3", "--notes", "forgot the lunch break")
	assert.Contains(t, out, "Hours: 3.00")
	assert.Contains(t, out, "Notes: forgot the lunch break")

	_, err = env.run(t, "", "adjust", id, "--hours", "-2")
	requireHTTPError(t, err, 400, "invalid input")

	out, err = env.run(t, "n\n", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deletion cancelled")
	assert.Len(t, env.store.Sessions(), 1)

	out, err = env.run(t, "yes\n", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted session "+id)
	assert.Empty(t, env.store.Sessions())

	_, err = env.run(t, "", "delete", id, "--yes")
	requireHTTPError(t, err, 404, "not found")
}

func TestMemberCannotWrite(t *testing.T) {
	env := newCliEnv(t)
	env.mustRun(t, "login", memberCode)

	_, err := env.run(t, "", "signin", memberCode)
	requireHTTPError(t, err, 403, "access denied")

	var stderr, stdout bytes.Buffer
	reportError(&stderr, &stdout, err)
	assert.Contains(t, stderr.String(), "Error (access denied)")
	assert.Empty(t, stdout.String())

	jsonOutput = true
	defer func() { jsonOutput = false }()
	stderr.Reset()
	reportError(&stderr, &stdout, err)
	assert.Equal(t, "access denied", gjson.Get(stdout.String(), "notice").String())
	assert.Equal(t, int64(0), gjson.Get(stdout.String(), "result").Int())

	stdout.Reset()
	reportError(&stderr, &stdout, errors.New("disk full"))
	assert.Equal(t, "an unexpected error occurred", gjson.Get(stdout.String(), "notice").String())
}

func TestSummaryAndIDVisibility(t *testing.T) {
	env := newCliEnv(t)
	env.mustRun(t, "login", rootCode)
	env.mustRun(t, "add", memberCode, "--hours", "1234.5")

	out := env.mustRun(t, "summary")
	assert.Contains(t, out, "Hours Summary:")
	assert.Contains(t, out, "1,234.50")
	assert.Contains(t, out, "*****")
	assert.NotContains(t, out, memberCode)

	out = env.mustRun(t, "ids", "show")
	assert.Contains(t, out, "Member codes visible: true")

	out = env.mustRun(t, "summary")
	assert.Contains(t, out, memberCode)

	env.mustRun(t, "ids", "hide")
	out = env.mustRun(t, "summary", "--json")
	assert.False(t, gjson.Get(out, "value.ids_visible").Bool())
	assert.Equal(t, "*****", gjson.Get(out, "value.members.0.member_code").String())
}

func TestOnlyRootRevealsIDs(t *testing.T) {
	env := newCliEnv(t)
	env.mustRun(t, "login", adminCode)
	_, err := env.run(t, "", "ids", "show")
	requireHTTPError(t, err, 403, "access denied")
}

func TestKiosk(t *testing.T) {
	env := newCliEnv(t)
	env.mustRun(t, "login", adminCode)
	env.mustRun(t, "add", memberCode, "--hours", "1")
	id := env.lastSessionID(t)

	out := env.mustRun(t, "kiosk", "lock")
	assert.Contains(t, out, "Kiosk locked: true")

	_, err := env.run(t, "", "adjust", id, "--hours", "2")
	requireHTTPError(t, err, 403, "access denied")
	env.mustRun(t, "signin", memberCode)

	_, err = env.run(t, "", "kiosk", "unlock", "11111")
	requireHTTPError(t, err, 403, "access denied")

	out = env.mustRun(t, "kiosk", "unlock", rootCode)
	assert.Contains(t, out, "Kiosk locked: false")
	env.mustRun(t, "adjust", id, "--hours", "2")
}

func TestVersion(t *testing.T) {
	env := newCliEnv(t)
	out := env.mustRun(t, "version")
	assert.Contains(t, out, "hourbook CLI "+getCLIVersion())
	assert.Contains(t, out, "Server is compatible")

	out = env.mustRun(t, "version", "--json")
	assert.True(t, gjson.Get(out, "compatible").Bool())
	assert.Equal(t, httpclient.ClientApiVersion, gjson.Get(out, "server_api_version").String())
}

func TestCheckCompatible(t *testing.T) {
	tests := []struct {
		server string
		ok     bool
	}{
		{"0.1.0", true},
		{"0.1.7", true},
		{"0.2.0", false},
		{"1.0.0", false},
	}
	for _, tt := range tests {
		ok, err := checkCompatible(tt.server)
		require.NoError(t, err)
		assert.Equal(t, tt.ok, ok, tt.server)
	}
	_, err := checkCompatible("latest")
	assert.Error(t, err)
}
