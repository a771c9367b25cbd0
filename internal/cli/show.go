package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/derivgraph/pkg/derivation"
)

const listLimit = 8

func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Summarize a derivation graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			st, _, err := c.mustLoad(cmd.Context(), cmd.ErrOrStderr(), args)
			if err != nil {
				return err
			}
			g, _ := st.Graph()
			sum := derivation.Summarize(g)

			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}

			fmt.Fprintln(w, StyleTitle.Render("Derivation graph"))
			printKeyValue(w, "Source", st.Source)
			printKeyValue(w, "Load ID", st.ID)
			printKeyValue(w, "Nodes", StyleNumber.Render(fmt.Sprint(sum.Nodes)))
			printKeyValue(w, "Links", StyleNumber.Render(fmt.Sprint(sum.Links)))
			printKeyValue(w, "Rules", formatRules(sum.Rules))
			printKeyValue(w, "Roots", formatIDs(sum.Roots, listLimit))
			printKeyValue(w, "Leaves", formatIDs(sum.Leaves, listLimit))

			if problems := derivation.Check(g); len(problems) > 0 {
				fmt.Fprintln(w)
				printWarning(w, "%d integrity problem(s)", len(problems))
				printNextStep(w, "Details", "derivgraph check "+strings.Join(args, " "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func formatRules(rules []derivation.RuleCount) string {
	if len(rules) == 0 {
		return "none"
	}
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = fmt.Sprintf("%s×%d", r.Rule, r.Count)
	}
	return strings.Join(parts, "  ")
}

func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a derivation graph against the schema",
		Long: `Validate a derivation graph against the bundled JSON schema.

Validation is structural: field presence and types. Use "check" to look for
references to missing node ids.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			st, payload, err := c.load(cmd.Context(), args)
			if err != nil {
				return err
			}

			if _, failed := st.Err(); failed {
				printError(w, "%s is not a valid derivation graph", st.Source)
				// The error slot holds one joined message; re-parse for the list.
				var ve *derivation.SchemaValidationError
				if _, err := derivation.Parse(payload); errors.As(err, &ve) {
					for _, issue := range ve.Issues {
						printDetail(w, "%s", issue)
					}
				}
				return errInvalidGraph
			}

			g, _ := st.Graph()
			printSuccess(w, "%s is valid", st.Source)
			printStats(w, g.NodeCount(), g.LinkCount(), false)
			return nil
		},
	}
}

func (c *CLI) checkCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Report references to missing or duplicate node ids",
		Long: `Check a derivation graph for referential integrity.

Reports duplicate node ids, children that reference no node, and links whose
source or target references no node. These are warnings: the graph still
loads. Pass --strict to exit non-zero when problems are found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			st, _, err := c.mustLoad(cmd.Context(), cmd.ErrOrStderr(), args)
			if err != nil {
				return err
			}
			g, _ := st.Graph()

			problems := derivation.Check(g)
			if len(problems) == 0 {
				printSuccess(w, "%s: no integrity problems", st.Source)
				return nil
			}

			for _, p := range problems {
				printWarning(w, "%s", p)
			}
			printDetail(w, "%d problem(s) in %s", len(problems), st.Source)
			if strict {
				return fmt.Errorf("%d integrity problem(s)", len(problems))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when problems are found")
	return cmd
}
