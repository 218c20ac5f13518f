package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-dwh-etl/internal/db"
)

var statusReset bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the recorded pipeline state",
	Long: `Show the last completed pipeline phase, when it completed, and the
dialect and tool version that ran it.

With --reset the recorded state is dropped instead, so the next run starts
from 'create-tables' without --force. Tables and their rows are not touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		wh, err := connect(ctx)
		if err != nil {
			return err
		}
		defer wh.Close()

		return showStatus(ctx, cmd.OutOrStdout(), db.NewMetadataStore(wh.DB), statusReset)
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusReset, "reset", false,
		"drop the recorded pipeline state")
}

func showStatus(ctx context.Context, w io.Writer, store *db.MetadataStore, reset bool) error {
	if reset {
		if err := store.Drop(ctx); err != nil {
			return err
		}
		fmt.Fprintln(w, "Pipeline state cleared.")
		return nil
	}

	values, err := store.All(ctx)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		fmt.Fprintln(w, "No pipeline state recorded; run 'pgedge-dwh-etl create-tables' first.")
		return nil
	}
	writeStatus(w, values)
	return nil
}

func writeStatus(w io.Writer, values map[string]string) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Key", "Value"})
	for _, k := range keys {
		table.Append([]string{k, values[k]})
	}
	table.Render()
}
