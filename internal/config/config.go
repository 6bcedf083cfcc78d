package config

import "fmt"

// Config represents the full application configuration.
type Config struct {
	Paths         PathsConfig         `yaml:"paths"`
	Review        ReviewConfig        `yaml:"review"`
	Provider      ProviderConfig      `yaml:"provider"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PathsConfig locates the grading context and the working directories.
// IntermediateDir and OutputDir mirror the submission's path under InputDir.
type PathsConfig struct {
	// ProblemStatement is the file containing the detailed assignment
	// description.
	ProblemStatement string `yaml:"problemStatement"`

	// Rubric is the file describing what qualitative feedback should
	// cover.
	Rubric string `yaml:"rubric"`

	InputDir        string `yaml:"inputDir"`
	IntermediateDir string `yaml:"intermediateDir"`
	OutputDir       string `yaml:"outputDir"`
}

// ReviewConfig configures the annotation pipeline.
type ReviewConfig struct {
	// Model drives the Draft and Review stages.
	Model string `yaml:"model"`

	// SummarizerModel drives the smaller calls: linter-output digestion
	// and summary reformatting (single-file mode only).
	SummarizerModel string `yaml:"summarizerModel"`

	// Threshold is the minimum changed-line count for a modified file to
	// receive feedback.
	Threshold int `yaml:"threshold"`

	// WrapWidth is the column width feedback comments are wrapped to.
	WrapWidth int `yaml:"wrapWidth"`

	// Language is the source-language extension submissions must carry,
	// e.g. ".c". Files of any other extension are ignored entirely.
	Language string `yaml:"language"`
}

// ProviderConfig configures the generative service client.
type ProviderConfig struct {
	// Name selects the client: "openai" or "static" (offline dry runs).
	Name    string `yaml:"name"`
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
	Timeout string `yaml:"timeout"`
}

// StoreConfig configures the optional token-metering store.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures progress logging.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // debug, info, warn
	Format  string `yaml:"format"` // human, json; empty picks by TTY
}

// Validate checks settings that must be present before any unit is
// processed. Missing context files themselves surface when they are read at
// run start.
func (c Config) Validate() error {
	if c.Paths.ProblemStatement == "" {
		return fmt.Errorf("paths.problemStatement is required")
	}
	if c.Paths.Rubric == "" {
		return fmt.Errorf("paths.rubric is required")
	}
	if c.Review.Model == "" {
		return fmt.Errorf("review.model is required")
	}
	if c.Provider.Name == "openai" && c.Provider.APIKey == "" {
		return fmt.Errorf("provider.apiKey is required for the openai provider")
	}
	return nil
}
