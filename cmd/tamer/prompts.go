package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var promptsExportForce bool

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect and override prompt templates",
	Long: `Prompts are Go text/templates compiled into the binary. A file named
<key>.tmpl in ~/.tamer/prompts replaces the built-in template for that key.`,
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompt keys and whether they are overridden",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		list, err := a.prompts.List()
		if err != nil {
			return err
		}

		return a.out.Print(list, func(w io.Writer) error {
			rows := make([][]string, 0, len(list))
			for _, p := range list {
				source := "embedded"
				if p.IsOverride {
					source = p.Path
				}
				rows = append(rows, []string{p.Key, p.Hash[:12], source})
			}
			_, err := fmt.Fprintln(w, a.out.Table([]string{"Key", "Hash", "Source"}, rows, nil))
			return err
		})
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print the template resolved for a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		p, err := a.prompts.Resolve(args[0])
		if err != nil {
			return err
		}
		return a.out.Print(p, func(w io.Writer) error {
			_, err := io.WriteString(w, p.Text)
			return err
		})
	},
}

var promptsExportCmd = &cobra.Command{
	Use:   "export <key>",
	Short: "Copy a built-in template into the override directory for editing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		path, err := a.prompts.Export(args[0], promptsExportForce)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	promptsExportCmd.Flags().BoolVar(&promptsExportForce, "force", false, "overwrite an existing override")

	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	promptsCmd.AddCommand(promptsExportCmd)
	rootCmd.AddCommand(promptsCmd)
}
