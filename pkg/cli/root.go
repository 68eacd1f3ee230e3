// Package cli wires the configuration surface to the export pipeline and
// the regroup splitter.
package cli

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/anod/todoport/pkg/auth"
	"github.com/anod/todoport/pkg/config"
	"github.com/anod/todoport/pkg/export"
	"github.com/anod/todoport/pkg/graph"
	"github.com/anod/todoport/pkg/todoist"
)

// Execute runs the root command and returns its terminal error, if any.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &config.Options{}

	cmd := &cobra.Command{
		Use:   "todoport OUTPUT",
		Short: "Export Microsoft To Do tasks to a Todoist-importable CSV",
		Long: `todoport signs in to Microsoft To Do with the OAuth2 device-code flow,
fetches every list and task, and writes CSV files Todoist can import.

OUTPUT is a file path, or a directory when --split or --regroup is used.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Output = args[0]
			opts.LoadEnv()
			if err := opts.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.IncludeCompleted, "include-completed", false, "include completed tasks")
	f.BoolVar(&opts.IncludeChecked, "include-checked", false, "include checked checklist items")
	f.BoolVar(&opts.NoChecklists, "no-checklists", false, "do not expand checklist items into rows")
	f.BoolVar(&opts.PrefixListName, "prefix-list-name", false, "prefix task content with the list name (legacy schema only)")
	f.StringVar(&opts.PriorityOverrides, "priority-map", "", "priority overrides as key=value pairs, e.g. low=2,high=4")
	f.BoolVar(&opts.Split, "split", false, "write one CSV per source list into the OUTPUT directory")
	f.StringVar(&opts.Regroup, "regroup", "", "re-partition a previous combined export into per-list files (no network)")
	f.BoolVar(&opts.Template, "template", false, "write the Todoist import template schema")
	f.StringVar(&opts.Author, "author", "", "AUTHOR column value for the template schema")
	f.StringVar(&opts.ClientID, "client-id", "", "Azure AD application client id (overrides "+config.EnvClientID+")")
	f.StringVar(&opts.Tenant, "tenant", "", "Azure AD tenant id (overrides "+config.EnvTenantID+")")

	return cmd
}

func run(ctx context.Context, opts *config.Options) error {
	if opts.Regroup != "" {
		return regroup(opts)
	}

	tok, err := auth.Acquire(ctx, auth.Options{
		ClientID: opts.ClientID,
		Tenant:   opts.Tenant,
	})
	if err != nil {
		return err
	}
	log.Info("authenticated")

	pipeline := &export.Pipeline{
		Source:     graph.NewClient(tok.AccessToken),
		Priorities: opts.Priorities,
		Options: todoist.Options{
			IncludeCompleted: opts.IncludeCompleted,
			IncludeChecked:   opts.IncludeChecked,
			NoChecklists:     opts.NoChecklists,
			PrefixListName:   opts.PrefixListName,
		},
	}

	groups, err := pipeline.Export(ctx)
	if err != nil {
		return err
	}

	var written int
	if opts.Split {
		if err := os.MkdirAll(opts.Output, 0o755); err != nil {
			return &export.WriteError{Path: opts.Output, Err: err}
		}
		written, err = export.WriteSplit(opts.Output, groups, opts.Schema(), opts.Author)
	} else {
		written, err = export.WriteCombined(opts.Output, groups, opts.Schema(), opts.Author)
	}
	if err != nil {
		return err
	}

	log.Info("export complete", "rows", written)
	return nil
}

// regroup re-partitions a previous combined export by its embedded list
// markers. Rows are rewritten under the schema they were read with.
func regroup(opts *config.Options) error {
	f, err := os.Open(opts.Regroup)
	if err != nil {
		return &config.Error{Option: "--regroup", Reason: err.Error()}
	}
	defer f.Close()

	rows, schema, err := todoist.ReadRows(f)
	if err != nil {
		return &config.Error{Option: "--regroup", Reason: err.Error()}
	}

	groups := export.Split(rows)

	if err := os.MkdirAll(opts.Output, 0o755); err != nil {
		return &export.WriteError{Path: opts.Output, Err: err}
	}
	written, err := export.WriteSplit(opts.Output, groups, schema, opts.Author)
	if err != nil {
		return err
	}

	log.Info("regroup complete", "lists", len(groups), "rows", written)
	return nil
}
