package cywjoin

import (
	"errors"
	"testing"

	"github.com/soypat/wifitab"
	"github.com/stretchr/testify/assert"
)

func TestJoinError(t *testing.T) {
	err := error(&joinError{ssid: "SSID1", err: errLinkDown})
	assert.Equal(t, "cywjoin: join SSID1: link down after join", err.Error())
	assert.True(t, errors.Is(err, errLinkDown))
}

func TestAuthCode(t *testing.T) {
	cases := []struct {
		e    wifitab.Entry
		want uint8
	}{
		{wifitab.Entry{SSID: "open"}, joinAuthOpen},
		{wifitab.Entry{SSID: "wpa2", Password: "12345678"}, joinAuthWPA2},
		{wifitab.Entry{SSID: "wpa", Password: "12345678", AuthMode: wifitab.AuthWPA}, joinAuthWPA},
		{wifitab.Entry{SSID: "wpa3", Password: "sae", AuthMode: wifitab.AuthWPA3}, joinAuthWPA3},
		{wifitab.Entry{SSID: "mixed", Password: "12345678", AuthMode: wifitab.AuthWPA2WPA3}, joinAuthWPA2WPA3},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, authCode(c.e), c.e.SSID)
	}
}
