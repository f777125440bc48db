package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/soypat/wifitab/connmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeNetworksYAML = `networks:
  - ssid: SSID1
    password: "++++++++"
  - ssid: SSID2
    password: "********"
  - ssid: SSID3
    password: "$$$$$$$$"
`

// runnerFunc fakes nmcli.
type runnerFunc func(args []string) ([]byte, error)

func (f runnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f(args)
}

type testEnv struct {
	dir    string
	creds  string
	config string
}

func newTestEnv(t *testing.T, credsYAML string) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		dir:    dir,
		creds:  filepath.Join(dir, "credentials.yaml"),
		config: filepath.Join(dir, "wifitab.yaml"),
	}
	require.NoError(t, os.WriteFile(env.creds, []byte(credsYAML), 0o600))
	require.NoError(t, os.WriteFile(env.config, []byte("log-level: error\n"), 0o600))
	return env
}

func (env testEnv) run(t *testing.T, runner runnerFunc, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	if runner != nil {
		a.runner = runner
	}
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--config", env.config, "-f", env.creds))
	err := root.Execute()
	return out.String(), err
}

func TestListDeclarationOrder(t *testing.T) {
	env := newTestEnv(t, threeNetworksYAML)
	out, err := env.run(t, nil, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "SSID1")
	assert.Contains(t, lines[2], "SSID2")
	assert.Contains(t, lines[3], "SSID3")
	assert.Contains(t, lines[1], "wpa2")
	assert.NotContains(t, out, "++++++++")
	assert.NotContains(t, out, "$$$$$$$$")
}

func TestListStrongest(t *testing.T) {
	env := newTestEnv(t, threeNetworksYAML)
	scan := runnerFunc(func(args []string) ([]byte, error) {
		require.Contains(t, args, "list")
		return []byte("SSID1:40\nSSID3:90\n"), nil
	})
	out, err := env.run(t, scan, "list", "--policy", "strongest")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "SSID3")
	assert.Contains(t, lines[2], "SSID1")
	assert.Contains(t, lines[3], "SSID2")
}

func TestListBadPolicy(t *testing.T) {
	env := newTestEnv(t, threeNetworksYAML)
	_, err := env.run(t, nil, "list", "--policy", "loudest")
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	env := newTestEnv(t, threeNetworksYAML+"  - ssid: OpenNet\n")
	out, err := env.run(t, nil, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "OpenNet (open): open network")
	assert.Contains(t, out, "4 networks OK")

	env = newTestEnv(t, "networks:\n  - ssid: short\n    password: \"1234\"\n")
	out, err = env.run(t, nil, "check")
	assert.Error(t, err)
	assert.Contains(t, out, "short (passlen=4)")

	env = newTestEnv(t, "networks: []\n")
	_, err = env.run(t, nil, "check")
	assert.Error(t, err)
}

func TestGen(t *testing.T) {
	env := newTestEnv(t, threeNetworksYAML)
	out, err := env.run(t, nil, "gen", "--package", "firmware", "--tags", "rp2040")
	require.NoError(t, err)
	assert.Contains(t, out, "package firmware")
	assert.Contains(t, out, "//go:build rp2040")
	assert.Contains(t, out, `wifitab.Entry{SSID: "SSID2", Password: "********"}`)

	dst := filepath.Join(env.dir, "credentials_gen.go")
	out, err = env.run(t, nil, "gen", "-o", dst)
	require.NoError(t, err)
	assert.Empty(t, out)
	src, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(src), "var credentials = wifitab.MustNew(")
	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConnectFallsThrough(t *testing.T) {
	env := newTestEnv(t, threeNetworksYAML)
	var joined []string
	runner := runnerFunc(func(args []string) ([]byte, error) {
		i := slices.Index(args, "connect")
		require.GreaterOrEqual(t, i, 0)
		ssid := args[i+1]
		joined = append(joined, ssid)
		if ssid == "SSID1" {
			return []byte("Error: No network with SSID 'SSID1' found.\n"), errors.New("exit status 10")
		}
		return []byte("Device 'wlan0' successfully activated.\n"), nil
	})
	out, err := env.run(t, runner, "connect", "--ifname", "wlan0")
	require.NoError(t, err)
	assert.Equal(t, "connected to SSID2\n", out)
	assert.Equal(t, []string{"SSID1", "SSID2"}, joined)
}

func TestConnectExhausted(t *testing.T) {
	env := newTestEnv(t, threeNetworksYAML)
	runner := runnerFunc(func(args []string) ([]byte, error) {
		return []byte("Error: Connection activation failed.\n"), errors.New("exit status 4")
	})
	_, err := env.run(t, runner, "connect", "--passes", "1")
	assert.ErrorIs(t, err, connmgr.ErrAllCredentialsExhausted)
}

func TestConnectEmpty(t *testing.T) {
	env := newTestEnv(t, "networks: []\n")
	runner := runnerFunc(func(args []string) ([]byte, error) {
		t.Fatal("nmcli must not run without credentials")
		return nil, nil
	})
	_, err := env.run(t, runner, "connect")
	assert.ErrorIs(t, err, connmgr.ErrEmptyCredentialList)
}

func TestMissingCredentialsFile(t *testing.T) {
	env := newTestEnv(t, threeNetworksYAML)
	require.NoError(t, os.Remove(env.creds))
	_, err := env.run(t, nil, "list")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t, threeNetworksYAML)
	out, err := env.run(t, nil, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "wifitab "))
}
