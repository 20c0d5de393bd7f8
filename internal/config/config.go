package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PartitionerConfig holds the defaults for the partitioning pipeline. The
// CLI's positional arguments override these.
type PartitionerConfig struct {
	NumPartitions int    `yaml:"num_partitions"`
	OutputDir     string `yaml:"output_dir"`
	FilePrefix    string `yaml:"file_prefix"`
}

// NormalizerConfig controls schema normalization.
type NormalizerConfig struct {
	// Seed for the synthetic-value generator used when a required column is
	// missing. 0 means derive one from the wall clock at run start.
	Seed int64 `yaml:"seed"`
}

// ResultsConfig names the worker result tables and the report target.
type ResultsConfig struct {
	AlertsPath   string `yaml:"alerts_path"`
	BlockingPath string `yaml:"blocking_path"`
	ReportPath   string `yaml:"report_path"`
}

// ClickHouseConfig holds connection settings for the ClickHouse writer.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// WriterDef defines a single optional artifact writer.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// FeedConfig holds the NATS bridge settings used to stream partitions to
// external workers and to collect their results.
type FeedConfig struct {
	NATSURL         string `yaml:"nats_url"`
	SubjectPrefix   string `yaml:"subject_prefix"`
	AlertSubject    string `yaml:"alert_subject"`
	BlockingSubject string `yaml:"blocking_subject"`
}

// APIConfig controls the report HTTP server.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Partitioner PartitionerConfig `yaml:"partitioner"`
	Normalizer  NormalizerConfig  `yaml:"normalizer"`
	Results     ResultsConfig     `yaml:"results"`
	Writers     []WriterDef       `yaml:"writers"`
	Feed        FeedConfig        `yaml:"feed"`
	API         APIConfig         `yaml:"api"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Partitioner: PartitionerConfig{
			NumPartitions: 4,
			OutputDir:     "data/partitions",
			FilePrefix:    "part",
		},
		Results: ResultsConfig{
			AlertsPath:   "results/metrics/alerts.csv",
			BlockingPath: "results/metrics/blocking.csv",
			ReportPath:   "results/analysis_report.txt",
		},
		Feed: FeedConfig{
			NATSURL:         "nats://127.0.0.1:4222",
			SubjectPrefix:   "flowlens.partitions",
			AlertSubject:    "flowlens.results.alerts",
			BlockingSubject: "flowlens.results.blocking",
		},
		API: APIConfig{
			ListenAddr: ":8080",
		},
	}
}

// LoadConfig reads the configuration from a YAML file. A missing file is not
// an error: the defaults are returned so the CLIs work without any config.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return cfg, nil
}
