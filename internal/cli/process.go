package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openlitdb/litbridge/internal/model"
	"github.com/openlitdb/litbridge/internal/pubmed"
)

var processFile string

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process [pmid...]",
	Short: "Import specific records by identifier or from a local file",
	Long: `Process imports the given records. Identifiers are fetched from the
literature database; --file reads an already-downloaded record document
(efetch XML, or the JSON record-tree dump) instead, so curated corpora
can be imported offline.

Example:
  litbridge process 29456894 29456895
  litbridge process --file corpus.xml --policy auto
  litbridge process --file records.json`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processFile, "file", "", "read records from a local XML file instead of fetching")
}

func runProcess(cmd *cobra.Command, args []string) error {
	if processFile == "" && len(args) == 0 {
		return fmt.Errorf("nothing to process: give identifiers or --file")
	}

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
	ctx := context.Background()

	if processFile != "" {
		records, err := readRecordFile(processFile)
		if err != nil {
			return err
		}
		p.Source = &localSource{records: records}
		ids := make([]string, 0, len(records))
		for _, r := range records {
			ids = append(ids, r.Text("PMID"))
		}
		res, err := p.Run(ctx, ids)
		if res != nil {
			printResult(res)
		}
		return err
	}

	res, err := p.Run(ctx, args)
	if res != nil {
		printResult(res)
	}
	return err
}

func readRecordFile(path string) ([]*model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".json") {
		var records []*model.Record
		if err := json.NewDecoder(f).Decode(&records); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return records, nil
	}
	records, err := pubmed.ParseRecords(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

// localSource serves records already read from disk. Search is meaningless
// against a file.
type localSource struct {
	records []*model.Record
}

func (s *localSource) Search(ctx context.Context, term string, max int) ([]string, error) {
	return nil, fmt.Errorf("search is not available for local files")
}

func (s *localSource) FetchRecords(ctx context.Context, ids []string) ([]*model.Record, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*model.Record
	for _, r := range s.records {
		if want[r.Text("PMID")] {
			out = append(out, r)
		}
	}
	return out, nil
}
