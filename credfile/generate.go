package credfile

import (
	"bytes"
	"errors"
	"fmt"
	"go/build/constraint"
	"go/format"
	"go/token"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/soypat/wifitab"
)

// GenerateConfig configures [Generate].
type GenerateConfig struct {
	// Package is the package clause of the generated file. Defaults to "main".
	Package string
	// VarName is the name of the generated table variable. Defaults to "credentials".
	VarName string
	// BuildTags is an optional build constraint expression, i.e: "rp2040 || rp2350".
	BuildTags string
	// Source names the file the table was generated from in the header comment.
	Source string
}

var genTemplate = template.Must(template.New("gen").Funcs(template.FuncMap{
	"quote":     strconv.Quote,
	"authIdent": authIdent,
}).Parse(`// Code generated by wifitab gen{{if .Source}} from {{.Source}}{{end}}. DO NOT EDIT.
{{if .BuildTags}}
//go:build {{.BuildTags}}
{{end}}
package {{.Package}}

import "github.com/soypat/wifitab"

// {{.VarName}} lists networks in the order they are attempted.
var {{.VarName}} = wifitab.MustNew({{range .Entries}}
	wifitab.Entry{SSID: {{quote .SSID}}, Password: {{quote .Password}}{{if .AuthMode.IsValid}}, AuthMode: wifitab.{{authIdent .AuthMode}}{{end}}},{{end}}
)
`))

// Generate writes Go source declaring tab as a package-level variable so the
// credentials are compiled into the binary. The output is gofmt formatted.
func Generate(w io.Writer, tab wifitab.Table, cfg GenerateConfig) error {
	if cfg.Package == "" {
		cfg.Package = "main"
	}
	if cfg.VarName == "" {
		cfg.VarName = "credentials"
	}
	if !token.IsIdentifier(cfg.Package) || !token.IsIdentifier(cfg.VarName) {
		return errors.New("credfile: package and variable names must be Go identifiers")
	}
	if strings.ContainsAny(cfg.Source, "\r\n") {
		return errors.New("credfile: source name must be a single line")
	}
	if cfg.BuildTags != "" {
		if strings.ContainsAny(cfg.BuildTags, "\r\n") {
			return errors.New("credfile: build tags must be a single line")
		}
		if _, err := constraint.Parse("//go:build " + cfg.BuildTags); err != nil {
			return fmt.Errorf("credfile: build tags %q: %w", cfg.BuildTags, err)
		}
	}
	var buf bytes.Buffer
	err := genTemplate.Execute(&buf, struct {
		GenerateConfig
		Entries []wifitab.Entry
	}{GenerateConfig: cfg, Entries: tab.List()})
	if err != nil {
		return err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return err
	}
	_, err = w.Write(src)
	return err
}

func authIdent(a wifitab.Auth) string {
	switch a {
	case wifitab.AuthOpen:
		return "AuthOpen"
	case wifitab.AuthWPA:
		return "AuthWPA"
	case wifitab.AuthWPA3:
		return "AuthWPA3"
	case wifitab.AuthWPA2WPA3:
		return "AuthWPA2WPA3"
	}
	return "AuthWPA2"
}
