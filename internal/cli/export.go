package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/derivgraph/pkg/derivation"
	errs "github.com/matzehuels/derivgraph/pkg/errors"
	dgio "github.com/matzehuels/derivgraph/pkg/io"
)

func (c *CLI) exportCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write a validated graph as JSON or YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var write func(io.Writer) error

			w := cmd.OutOrStdout()
			st, _, err := c.mustLoad(cmd.Context(), cmd.ErrOrStderr(), args)
			if err != nil {
				return err
			}
			g, _ := st.Graph()

			switch format {
			case "json":
				write = func(dst io.Writer) error { return dgio.WriteJSON(g, dst) }
			case "yaml", "yml":
				write = func(dst io.Writer) error { return dgio.WriteYAML(g, dst) }
			default:
				return errs.New(errs.ErrCodeInvalidInput, "invalid format %q (want json or yaml)", format)
			}

			if output == "" {
				return write(w)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := write(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printSuccess(w, "Exported %s", st.Source)
			printFile(w, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema derivation graphs are validated against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(derivation.Schema())
			return err
		},
	}
}
