package model

import "time"

// Config holds the complete litbridge configuration.
type Config struct {
	Wikibase   WikibaseConfig   `yaml:"wikibase" mapstructure:"wikibase"`
	Entrez     EntrezConfig     `yaml:"entrez" mapstructure:"entrez"`
	Mappings   MappingsConfig   `yaml:"mappings" mapstructure:"mappings"`
	Resolution ResolutionConfig `yaml:"resolution" mapstructure:"resolution"`
	HTTP       HTTPConfig       `yaml:"http" mapstructure:"http"`
	Verbose    bool             `yaml:"verbose" mapstructure:"verbose"`
}

// WikibaseConfig identifies the target knowledge base and the bot account.
// Name is the namespace key stored inside every mapping entry, so the same
// mapping tables can host identifiers for more than one target instance.
type WikibaseConfig struct {
	Name           string `yaml:"name" mapstructure:"name"`
	URL            string `yaml:"url" mapstructure:"url"`
	APIURL         string `yaml:"api_url" mapstructure:"api_url"`
	SPARQLEndpoint string `yaml:"sparql_endpoint" mapstructure:"sparql_endpoint"`
	BotUser        string `yaml:"bot_user" mapstructure:"bot_user"`
	BotPassword    string `yaml:"bot_password" mapstructure:"bot_password"`
}

// EntrezConfig configures the literature database client.
type EntrezConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Email   string `yaml:"email" mapstructure:"email"`
	Tool    string `yaml:"tool" mapstructure:"tool"`
}

// MappingsConfig locates the on-disk mapping tables.
type MappingsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ResolutionConfig selects how resolution questions are answered.
// Policy is one of "interactive", "auto", "queued", "llm".
type ResolutionConfig struct {
	Policy    string  `yaml:"policy" mapstructure:"policy"`
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
	QueueFile string  `yaml:"queue_file" mapstructure:"queue_file"`
	LLMModel  string  `yaml:"llm_model" mapstructure:"llm_model"`
}

// HTTPConfig bounds the outbound HTTP clients.
type HTTPConfig struct {
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSec float64       `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	UserAgent      string        `yaml:"user_agent" mapstructure:"user_agent"`
}

// DefaultConfig returns sensible defaults for every setting.
func DefaultConfig() *Config {
	return &Config{
		Wikibase: WikibaseConfig{
			Name: "litbridge",
		},
		Entrez: EntrezConfig{
			BaseURL: "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
			Tool:    "litbridge",
		},
		Mappings: MappingsConfig{
			Dir: "./mappings",
		},
		Resolution: ResolutionConfig{
			Policy:    "interactive",
			Threshold: 0.9,
			QueueFile: "./pending-resolutions.json",
		},
		HTTP: HTTPConfig{
			Timeout:        30 * time.Second,
			RequestsPerSec: 3,
			UserAgent:      "litbridge/0.1 (+https://github.com/openlitdb/litbridge)",
		},
	}
}
