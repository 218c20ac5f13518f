package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-dwh-etl/internal/etl"
	"github.com/pgEdge/pgedge-dwh-etl/internal/objstore"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the source data locations are reachable",
	Long: `Check that the log and song data prefixes each hold at least one
object and that the JSONPaths file exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateSources(); err != nil {
			return err
		}
		results := checkSources(context.Background(), objectStore(), cfg.CopyParams())
		return writeCheck(cmd.OutOrStdout(), results)
	},
}

func checkSources(ctx context.Context, store objstore.Store, params etl.CopyParams) []objstore.CheckResult {
	return []objstore.CheckResult{
		objstore.CheckPrefix(ctx, store, etl.Unquote(params.LogData)),
		objstore.CheckPrefix(ctx, store, etl.Unquote(params.SongData)),
		objstore.CheckObject(ctx, store, etl.Unquote(params.LogJSONPath)),
	}
}

// writeCheck renders the results and returns an error when any failed.
func writeCheck(w io.Writer, results []objstore.CheckResult) error {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Source", "Objects", "Status"})

	failed := 0
	for _, r := range results {
		status := "ok"
		if !r.OK() {
			status = r.Err.Error()
			failed++
		}
		table.Append([]string{r.URI, strconv.Itoa(r.Objects), status})
	}
	table.Render()

	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed the check", failed, len(results))
	}
	return nil
}
