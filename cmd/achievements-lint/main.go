// achievements-lint checks an achievement catalog against the rule library.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"smartbeans/achievements"
)

type rootOptions struct {
	format string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "achievements-lint",
		Short:         "Validate and inspect the achievement catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "output format (text|json)")

	root.AddCommand(newValidateCommand(opts), newDumpCommand(), newKindsCommand(opts))
	return root
}

func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [catalog.yaml]",
		Short: "Check that every achievement has a valid rule",
		Long: `Parse a catalog and build its rule registry. Without an argument the
catalog embedded in the server is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(args)
			if err == nil {
				_, err = achievements.BuildRegistry(catalog)
			}
			return report(cmd.OutOrStdout(), opts.format, catalog, err)
		},
	}
}

func newDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump [catalog.yaml]",
		Short: "Print the normalized catalog as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(args)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(catalog.All())
		},
	}
}

func newKindsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the rule kinds a catalog may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kinds := achievements.RuleKinds()
			if opts.format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(kinds)
			}
			for _, k := range kinds {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func loadCatalog(args []string) (*achievements.Catalog, error) {
	if len(args) == 0 {
		return achievements.DefaultCatalog()
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return achievements.ParseCatalog(data)
}

type validationResult struct {
	Valid        bool   `json:"valid"`
	Achievements int    `json:"achievements,omitempty"`
	Error        string `json:"error,omitempty"`
}

func report(w io.Writer, format string, catalog *achievements.Catalog, err error) error {
	res := validationResult{Valid: err == nil}
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Achievements = catalog.Len()
	}

	if format == "json" {
		if encErr := json.NewEncoder(w).Encode(res); encErr != nil {
			return encErr
		}
	} else if res.Valid {
		fmt.Fprintf(w, "OK: %d achievements\n", res.Achievements)
	}
	return err
}
