package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openlitdb/litbridge/internal/assemble"
	"github.com/openlitdb/litbridge/internal/langid"
	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
	"github.com/openlitdb/litbridge/internal/pipeline"
	"github.com/openlitdb/litbridge/internal/pubmed"
	"github.com/openlitdb/litbridge/internal/resolve"
	"github.com/openlitdb/litbridge/internal/serialize"
	"github.com/openlitdb/litbridge/internal/transform"
	"github.com/openlitdb/litbridge/internal/wikibase"
)

var (
	cfgFile   string
	verbose   bool
	policy    string
	threshold float64
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "litbridge",
	Short: "Litbridge - bibliographic records into knowledge-base items",
	Long: `Litbridge maps bibliographic citation records onto structured
knowledge-base items: one item per journal, one per article, with every
field expressed as a referenced statement.

Names of people, journals, subjects and grants are resolved against
persistent mapping tables; unresolved mentions go through the configured
resolution policy (interactive, auto, queued, or llm) before anything
is written.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("litbridge v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.litbridge/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&policy, "policy", "interactive", "resolution policy (interactive, auto, queued, llm)")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", 0.9, "auto-accept similarity threshold")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("resolution.policy", rootCmd.PersistentFlags().Lookup("policy"))
	_ = viper.BindPFlag("resolution.threshold", rootCmd.PersistentFlags().Lookup("threshold"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.litbridge")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match LITBRIDGE_*
	viper.SetEnvPrefix("LITBRIDGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file, environment and flags over the defaults.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Verbose = cfg.Verbose || verbose
	return cfg, nil
}

func newLogger(cfg *model.Config) (*zap.Logger, error) {
	if cfg.Verbose {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// newDecider builds the resolution decider named by the policy.
func newDecider(cfg *model.Config, log *zap.Logger) (resolve.Decider, error) {
	switch cfg.Resolution.Policy {
	case "", "interactive":
		return resolve.NewInteractiveDecider(), nil
	case "auto":
		return &resolve.AutoAcceptDecider{Threshold: cfg.Resolution.Threshold}, nil
	case "queued":
		return &resolve.QueuedDecider{Path: cfg.Resolution.QueueFile}, nil
	case "llm":
		return resolve.NewLLMDecider(os.Getenv("OPENAI_API_KEY"), cfg.Resolution.LLMModel, log)
	default:
		return nil, fmt.Errorf("unknown resolution policy %q", cfg.Resolution.Policy)
	}
}

// buildPipeline wires every component from the configuration.
func buildPipeline(cfg *model.Config, log *zap.Logger) (*pipeline.Pipeline, error) {
	decider, err := newDecider(cfg, log)
	if err != nil {
		return nil, err
	}

	store := mapstore.Open(cfg.Mappings.Dir, cfg.Wikibase.Name)
	client := wikibase.NewHTTPClient(cfg.Wikibase, cfg.HTTP)
	resolver := &resolve.Resolver{
		Store:    store,
		Searcher: client,
		Decider:  decider,
		Log:      log,
	}
	deps := &transform.Deps{
		Resolver: resolver,
		Codes:    &langid.Codes{Store: store},
		Detector: langid.NewDetector(),
		Xref: &wikibase.Xref{
			Client:   client,
			Endpoint: cfg.Wikibase.SPARQLEndpoint,
			Store:    store,
		},
		Log: log,
	}

	return &pipeline.Pipeline{
		Source: pubmed.NewHTTPClient(cfg.Entrez, cfg.HTTP),
		Assembler: &assemble.Assembler{
			Deps:       deps,
			Client:     client,
			Serializer: serialize.New(cfg.Wikibase.URL),
			Log:        log,
		},
		Log: log,
	}, nil
}

func printResult(res *pipeline.Result) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Processed:  %d\n", res.Processed)
	fmt.Fprintf(os.Stderr, "  Skipped:    %d\n", res.Skipped)
	fmt.Fprintf(os.Stderr, "  Deferred:   %d\n", res.Deferred)
	fmt.Fprintf(os.Stderr, "  Failed:     %d\n", res.Failed)
	fmt.Fprintf(os.Stderr, "\n")
}
