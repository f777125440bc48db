package nmcli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soypat/wifitab"
	"github.com/soypat/wifitab/connmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	args [][]string
	out  []byte
	err  error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.args = append(f.args, append([]string{name}, args...))
	return f.out, f.err
}

func TestJoinArgs(t *testing.T) {
	r := &fakeRunner{}
	c := &Client{Ifname: "wlan0", Runner: r}

	err := c.Join(context.Background(), wifitab.Entry{SSID: "SSID1", Password: "++++++++"})
	require.NoError(t, err)
	err = c.Join(context.Background(), wifitab.Entry{SSID: "OpenNet"})
	require.NoError(t, err)

	require.Len(t, r.args, 2)
	assert.Equal(t, []string{"nmcli", "device", "wifi", "connect", "SSID1", "password", "++++++++", "ifname", "wlan0"}, r.args[0])
	assert.Equal(t, []string{"nmcli", "device", "wifi", "connect", "OpenNet", "ifname", "wlan0"}, r.args[1])
}

func TestJoinWaitFromDeadline(t *testing.T) {
	r := &fakeRunner{}
	c := &Client{Runner: r}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Join(ctx, wifitab.Entry{SSID: "n"}))
	assert.Equal(t, []string{"nmcli", "--wait", "5", "device", "wifi", "connect", "n"}, r.args[0])
}

func TestJoinError(t *testing.T) {
	r := &fakeRunner{
		out: []byte("Error: No network with SSID 'SSID1' found.\n"),
		err: errors.New("exit status 10"),
	}
	c := &Client{Runner: r}
	err := c.Join(context.Background(), wifitab.Entry{SSID: "SSID1", Password: "++++++++"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No network with SSID")
	assert.NotContains(t, err.Error(), "++++++++")
}

func TestScan(t *testing.T) {
	r := &fakeRunner{out: []byte("SSID1:80\n:55\nweird\\:name:100\nSSID3:0\n")}
	c := &Client{Ifname: "wlan0", Rescan: true, Runner: r}
	nets, err := c.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []connmgr.Network{
		{SSID: "SSID1", RSSI: -60},
		{SSID: "weird:name", RSSI: -50},
		{SSID: "SSID3", RSSI: -100},
	}, nets)
	assert.Equal(t, []string{"nmcli", "-t", "-f", "SSID,SIGNAL", "device", "wifi", "list", "ifname", "wlan0", "--rescan", "yes"}, r.args[0])
}

func TestScanBadOutput(t *testing.T) {
	for _, out := range []string{"SSID1\n", "SSID1:strong\n"} {
		c := &Client{Runner: &fakeRunner{out: []byte(out)}}
		_, err := c.Scan(context.Background())
		assert.Error(t, err, out)
	}
}

func TestSplitTerse(t *testing.T) {
	assert.Equal(t, []string{"a:b", "c\\d", ""}, splitTerse(`a\:b:c\\d:`))
}
