package cli

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/soypat/wifitab/credfile"
	"github.com/spf13/cobra"
)

func (a *app) newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate Go source that compiles the credentials into a binary",
		Long: `Gen writes a Go file declaring the credentials file as a wifitab.Table
package-level variable. Intended for go:generate directives in firmware packages:

  //go:generate go run github.com/soypat/wifitab/cmd/wifitab gen -f credentials.yaml -o credentials_gen.go`,
		Args: cobra.NoArgs,
		RunE: a.runGen,
	}
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().String("package", "main", "package name of the generated file")
	cmd.Flags().String("var", "credentials", "name of the generated table variable")
	cmd.Flags().String("tags", "", `build constraint of the generated file, i.e. "rp2040 || rp2350"`)
	return cmd
}

func (a *app) runGen(cmd *cobra.Command, args []string) error {
	tab, err := a.loadTable()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	err = credfile.Generate(&buf, tab, credfile.GenerateConfig{
		Package:   a.v.GetString("package"),
		VarName:   a.v.GetString("var"),
		BuildTags: a.v.GetString("tags"),
		Source:    filepath.Base(a.v.GetString(keyFile)),
	})
	if err != nil {
		return err
	}
	output := a.v.GetString("output")
	if output == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	// Generated file holds secrets.
	return os.WriteFile(output, buf.Bytes(), 0o600)
}
