// Package credfile reads and writes credential tables as YAML files.
//
// Credentials should be kept out of version control. The expected layout is:
//
//	networks:
//	  - ssid: SSID1
//	    password: "++++++++"
//	  - ssid: OpenNet # no password: open network.
//	  - ssid: Home6E
//	    password: "sae-secret"
//	    auth: wpa3 # optional: open, wpa, wpa2, wpa3 or wpa2/wpa3.
package credfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/soypat/wifitab"
	"gopkg.in/yaml.v3"
)

var (
	ErrDuplicateSSID    = errors.New("credfile: duplicate SSID")
	ErrNullValue        = errors.New("credfile: null value, omit the key instead")
	ErrTrailingDocument = errors.New("credfile: more than one YAML document")
)

// FileYAML is the on-disk representation of a credential table.
type FileYAML struct {
	Networks []NetworkYAML `yaml:"networks"`
}

// NetworkYAML is a single network of a [FileYAML].
type NetworkYAML struct {
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password,omitempty"`
	Auth     string `yaml:"auth,omitempty"`
}

// UnmarshalYAML rejects unknown and null-valued keys. A null password would
// otherwise silently turn the network into an open one.
func (n *NetworkYAML) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			key, val := value.Content[i], value.Content[i+1]
			switch key.Value {
			case "ssid", "password", "auth":
			default:
				return fmt.Errorf("line %d: unknown field %q in network", key.Line, key.Value)
			}
			if val.Kind == yaml.ScalarNode && val.ShortTag() == "!!null" {
				return fmt.Errorf("line %d: %q: %w", key.Line, key.Value, ErrNullValue)
			}
		}
	}
	type plain NetworkYAML
	return value.Decode((*plain)(n))
}

// Load reads the credential file at path.
func Load(path string) (wifitab.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return wifitab.Table{}, err
	}
	defer f.Close()
	tab, err := Parse(f)
	if err != nil {
		return wifitab.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return tab, nil
}

// Parse decodes a single YAML credential document. Unknown keys, null values,
// repeated SSIDs and further documents are rejected. An empty input yields an empty table.
func Parse(r io.Reader) (wifitab.Table, error) {
	var doc FileYAML
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&doc)
	if errors.Is(err, io.EOF) {
		return wifitab.Table{}, nil
	} else if err != nil {
		return wifitab.Table{}, fmt.Errorf("decode credentials: %w", err)
	}
	var extra yaml.Node
	if err = dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return wifitab.Table{}, fmt.Errorf("decode credentials: %w", err)
		}
		return wifitab.Table{}, ErrTrailingDocument
	}
	return doc.Table()
}

// Table converts the document into a table preserving the order of networks.
func (doc *FileYAML) Table() (wifitab.Table, error) {
	entries := make([]wifitab.Entry, len(doc.Networks))
	seen := make(map[string]int, len(doc.Networks))
	for i, n := range doc.Networks {
		if prev, ok := seen[n.SSID]; ok && n.SSID != "" {
			return wifitab.Table{}, fmt.Errorf("%w %q at networks[%d] and networks[%d]", ErrDuplicateSSID, n.SSID, prev, i)
		}
		seen[n.SSID] = i
		auth, err := wifitab.ParseAuth(n.Auth)
		if err != nil {
			return wifitab.Table{}, fmt.Errorf("networks[%d]: %w", i, err)
		}
		entries[i] = wifitab.Entry{SSID: n.SSID, Password: n.Password, AuthMode: auth}
	}
	tab, err := wifitab.New(entries...)
	if err != nil {
		return wifitab.Table{}, fmt.Errorf("networks: %w", err)
	}
	return tab, nil
}

// Encode writes tab as a YAML credential document.
func Encode(w io.Writer, tab wifitab.Table) error {
	doc := FileYAML{Networks: make([]NetworkYAML, 0, tab.Len())}
	for _, e := range tab.List() {
		n := NetworkYAML{SSID: e.SSID, Password: e.Password}
		if e.AuthMode.IsValid() {
			n.Auth = e.AuthMode.String()
		}
		doc.Networks = append(doc.Networks, n)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}
