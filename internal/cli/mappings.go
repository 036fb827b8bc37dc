package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openlitdb/litbridge/internal/mapstore"
)

// mappingsCmd represents the mappings command
var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Inspect the persistent mapping tables",
}

var mappingsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show entry counts per mapping table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store := mapstore.Open(cfg.Mappings.Dir, cfg.Wikibase.Name)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		total := 0
		for _, class := range mapstore.Classes() {
			n, err := store.Count(class)
			if err != nil {
				return err
			}
			total += n
			fmt.Fprintf(w, "%s\t%d\n", class, n)
		}
		fmt.Fprintf(w, "total\t%d\n", total)
		return w.Flush()
	},
}

var mappingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the backing file of every mapping table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store := mapstore.Open(cfg.Mappings.Dir, cfg.Wikibase.Name)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, class := range mapstore.Classes() {
			fmt.Fprintf(w, "%s\t%s\n", class, store.Path(class))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(mappingsCmd)
	mappingsCmd.AddCommand(mappingsStatsCmd)
	mappingsCmd.AddCommand(mappingsPathCmd)
}
