package wifitab

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var threeNetworks = []Entry{
	{SSID: "SSID1", Password: "++++++++"},
	{SSID: "SSID2", Password: "********"},
	{SSID: "SSID3", Password: "$$$$$$$$"},
}

func TestListDeclarationOrder(t *testing.T) {
	tab, err := New(threeNetworks...)
	require.NoError(t, err)
	assert.Equal(t, threeNetworks, tab.List())
	assert.Equal(t, 3, tab.Len())
	assert.False(t, tab.IsEmpty())
	for i, e := range threeNetworks {
		assert.Equal(t, e, tab.At(i))
		assert.Equal(t, i, tab.Index(e.SSID))
	}
	assert.Equal(t, -1, tab.Index("missing"))
}

func TestListEmpty(t *testing.T) {
	tab, err := New()
	require.NoError(t, err)
	list := tab.List()
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.True(t, tab.IsEmpty())

	var zero Table
	assert.True(t, zero.Equal(tab))
	assert.Empty(t, zero.List())
}

func TestOpenNetworkUnchanged(t *testing.T) {
	open := Entry{SSID: "OpenNet"}
	tab := MustNew(open)
	got := tab.List()
	require.Len(t, got, 1)
	assert.Equal(t, open, got[0])
	assert.True(t, got[0].IsOpen())
	assert.Equal(t, AuthOpen, got[0].Auth())
}

func TestListIdempotentAndIsolated(t *testing.T) {
	tab := MustNew(threeNetworks...)
	first := tab.List()
	first[0].SSID = "mutated"
	first[1] = Entry{SSID: "x"}
	second := tab.List()
	assert.Equal(t, threeNetworks, second)
	assert.Equal(t, second, tab.List())
}

func TestNewCopiesInput(t *testing.T) {
	in := append([]Entry(nil), threeNetworks...)
	tab := MustNew(in...)
	in[2].Password = "changed!"
	assert.Equal(t, threeNetworks[2], tab.At(2))
}

func TestNewRejectsInvalidSSID(t *testing.T) {
	_, err := New(Entry{SSID: "ok"}, Entry{Password: "12345678"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptySSID)
	var ierr *IndexError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, 1, ierr.Index)

	_, err = New(Entry{SSID: strings.Repeat("a", MaxSSIDLen+1)})
	assert.ErrorIs(t, err, ErrSSIDTooLong)

	_, err = New(Entry{SSID: strings.Repeat("a", MaxSSIDLen)})
	assert.NoError(t, err)

	assert.Panics(t, func() { MustNew(Entry{}) })
}

func TestEqual(t *testing.T) {
	a := MustNew(threeNetworks...)
	b := MustNew(threeNetworks...)
	c := MustNew(threeNetworks[1], threeNetworks[0], threeNetworks[2])
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(MustNew(threeNetworks[:2]...)))
}

func TestConcurrentReads(t *testing.T) {
	tab := MustNew(threeNetworks...)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				list := tab.List()
				list[0].SSID = "scratch"
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, threeNetworks, tab.List())
}

func TestCheckPassphrase(t *testing.T) {
	cases := []struct {
		pass string
		ok   bool
	}{
		{"", true},
		{"1234567", false},
		{"12345678", true},
		{strings.Repeat("p", MaxPassphraseLen), true},
		{strings.Repeat("p", MaxPassphraseLen+1), false},
		{strings.Repeat("aF", rawPSKLen/2), true},
		{strings.Repeat("zz", rawPSKLen/2), false},
	}
	for _, c := range cases {
		err := Entry{SSID: "n", Password: c.pass}.CheckPassphrase()
		if c.ok {
			assert.NoError(t, err, "len=%d", len(c.pass))
		} else {
			assert.ErrorIs(t, err, ErrBadPassphrase, "len=%d", len(c.pass))
		}
	}
}

func TestEntryString(t *testing.T) {
	assert.Equal(t, "OpenNet (open)", Entry{SSID: "OpenNet"}.String())
	s := Entry{SSID: "SSID2", Password: "********"}.String()
	assert.Equal(t, "SSID2 (passlen=8)", s)
	assert.NotContains(t, s, "****")
}

func TestAuth(t *testing.T) {
	assert.Equal(t, AuthWPA2, threeNetworks[0].Auth())
	assert.Equal(t, "wpa2", AuthWPA2.String())
	assert.False(t, authUndefined.IsValid())
	assert.True(t, AuthWPA2WPA3.IsValid())
	assert.False(t, Auth(200).IsValid())
}

func TestEntryAuthMode(t *testing.T) {
	wpa3 := Entry{SSID: "Home6E", Password: "sae", AuthMode: AuthWPA3}
	assert.Equal(t, AuthWPA3, wpa3.Auth())
	assert.False(t, wpa3.IsOpen())
	assert.NoError(t, wpa3.Validate())
	assert.NoError(t, wpa3.CheckPassphrase())
	assert.Equal(t, "Home6E (wpa3, passlen=3)", wpa3.String())

	// Short passwords are still rejected for WPA2.
	wpa3.AuthMode = AuthWPA2
	assert.ErrorIs(t, wpa3.CheckPassphrase(), ErrBadPassphrase)

	_, err := New(Entry{SSID: "x", AuthMode: AuthWPA3})
	assert.ErrorIs(t, err, ErrAuthMismatch)
	_, err = New(Entry{SSID: "x", Password: "12345678", AuthMode: AuthOpen})
	assert.ErrorIs(t, err, ErrAuthMismatch)
	_, err = New(Entry{SSID: "x", Password: "12345678", AuthMode: Auth(99)})
	assert.ErrorIs(t, err, ErrAuthMismatch)

	tab, err := New(Entry{SSID: "x", AuthMode: AuthOpen})
	require.NoError(t, err)
	assert.True(t, tab.At(0).IsOpen())
}

func TestParseAuth(t *testing.T) {
	for _, a := range []Auth{AuthOpen, AuthWPA, AuthWPA2, AuthWPA3, AuthWPA2WPA3} {
		got, err := ParseAuth(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	got, err := ParseAuth("")
	require.NoError(t, err)
	assert.False(t, got.IsValid())
	_, err = ParseAuth("wep")
	assert.Error(t, err)
}
