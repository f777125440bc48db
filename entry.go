package wifitab

import (
	"errors"
	"strconv"
)

const (
	// MaxSSIDLen is the maximum length of an SSID in bytes as defined by IEEE 802.11.
	MaxSSIDLen = 32
	// MinPassphraseLen and MaxPassphraseLen bound a WPA/WPA2 ASCII passphrase.
	MinPassphraseLen = 8
	MaxPassphraseLen = 63
	// rawPSKLen is the length of a hex-encoded 256-bit pre-shared key.
	rawPSKLen = 64
)

var (
	ErrEmptySSID     = errors.New("wifitab: empty SSID")
	ErrSSIDTooLong   = errors.New("wifitab: SSID longer than 32 bytes")
	ErrBadPassphrase = errors.New("wifitab: passphrase must be empty, 8..63 characters or 64 hex digits")
	ErrAuthMismatch  = errors.New("wifitab: authentication method does not match password")
)

// Entry is a single network credential: the SSID to join and the
// pre-shared key used to authenticate. An empty Password denotes an open network.
type Entry struct {
	SSID     string
	Password string
	// AuthMode forces the authentication method, i.e. for WPA3-only networks.
	// When zero it is derived from Password.
	AuthMode Auth
}

// Auth returns the authentication method a driver should use to join the network.
// Unless AuthMode is set, entries with a password are WPA2 networks and
// entries without one are open.
func (e Entry) Auth() Auth {
	if e.AuthMode.IsValid() {
		return e.AuthMode
	} else if e.Password == "" {
		return AuthOpen
	}
	return AuthWPA2
}

// IsOpen reports whether the entry describes an open (unencrypted) network.
func (e Entry) IsOpen() bool { return e.Auth() == AuthOpen }

// Validate checks the SSID and that AuthMode agrees with the presence of a
// password. The password itself is not checked, see [Entry.CheckPassphrase].
func (e Entry) Validate() error {
	if e.SSID == "" {
		return ErrEmptySSID
	} else if len(e.SSID) > MaxSSIDLen {
		return ErrSSIDTooLong
	}
	if e.AuthMode == authUndefined {
		return nil
	} else if !e.AuthMode.IsValid() || (e.AuthMode == AuthOpen) != (e.Password == "") {
		return ErrAuthMismatch
	}
	return nil
}

// CheckPassphrase checks the password is acceptable to a WPA/WPA2 supplicant.
// Tables never call this: whether a weak or malformed passphrase is attempted
// at all is up to the consumer.
func (e Entry) CheckPassphrase() error {
	n := len(e.Password)
	switch {
	case n == 0:
		return nil
	case e.Auth() == AuthWPA3:
		return nil // SAE passwords have no length bounds.
	case n >= MinPassphraseLen && n <= MaxPassphraseLen:
		return nil
	case n == rawPSKLen && isHex(e.Password):
		return nil
	}
	return ErrBadPassphrase
}

// String returns the SSID along with the authentication in use. The password is never printed.
func (e Entry) String() string {
	auth := e.Auth()
	switch auth {
	case AuthOpen:
		return e.SSID + " (open)"
	case AuthWPA2:
		return e.SSID + " (passlen=" + strconv.Itoa(len(e.Password)) + ")"
	}
	return e.SSID + " (" + auth.String() + ", passlen=" + strconv.Itoa(len(e.Password)) + ")"
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
