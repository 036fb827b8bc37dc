package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	syncQuery string
	syncMesh  bool
	syncMax   int
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Search the literature database and import matching records",
	Long: `Sync searches the literature database with a query, then fetches and
imports every matching record that is not already mapped.

Example:
  litbridge sync --query "zika virus" --mesh --max 100
  litbridge sync --query "29456894 OR 29456895" --policy queued`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncQuery, "query", "", "search query (required)")
	syncCmd.Flags().BoolVar(&syncMesh, "mesh", false, "search the query as a MeSH term")
	syncCmd.Flags().IntVar(&syncMax, "max", 0, "maximum records to import (0 = all matches)")
	_ = syncCmd.MarkFlagRequired("query")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	query := syncQuery
	if syncMesh {
		query += "[MESH]"
	}

	ctx := context.Background()
	ids, err := p.Source.Search(ctx, query, syncMax)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "No records match the query")
		return nil
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "Found %d records\n", len(ids))
	}

	res, err := p.Run(ctx, ids)
	if res != nil {
		printResult(res)
	}
	return err
}
