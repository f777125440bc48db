package wifitab

import (
	"errors"
	"strconv"
)

// Auth specifies the authentication method used to join a WiFi network.
type Auth uint8

const (
	authUndefined Auth = iota
	AuthOpen
	AuthWPA
	AuthWPA2
	AuthWPA3
	AuthWPA2WPA3
)

func (a Auth) String() string {
	switch a {
	case AuthOpen:
		return "open"
	case AuthWPA:
		return "wpa"
	case AuthWPA2:
		return "wpa2"
	case AuthWPA3:
		return "wpa3"
	case AuthWPA2WPA3:
		return "wpa2/wpa3"
	}
	return "undefined"
}

// IsValid reports whether a is one of the defined authentication methods.
func (a Auth) IsValid() bool { return a > authUndefined && a <= AuthWPA2WPA3 }

// ParseAuth parses the lower case name returned by [Auth.String]. The empty
// string parses to the zero Auth which lets [Entry.Auth] derive the method
// from the password.
func ParseAuth(s string) (Auth, error) {
	switch s {
	case "":
		return authUndefined, nil
	case "open":
		return AuthOpen, nil
	case "wpa":
		return AuthWPA, nil
	case "wpa2":
		return AuthWPA2, nil
	case "wpa3":
		return AuthWPA3, nil
	case "wpa2/wpa3", "wpa2-wpa3":
		return AuthWPA2WPA3, nil
	}
	return authUndefined, errors.New("wifitab: unknown auth " + strconv.Quote(s))
}
