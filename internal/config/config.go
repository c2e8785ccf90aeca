package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/adaptive/scheduler/internal/core/domain"
)

const (
	DefaultFileWriteDelay = 150 * time.Millisecond // let the file finish writing before reload
)

var (
	lastReload  time.Time
	reloadMutex sync.Mutex
)

// DefaultConfig returns a configuration with reasonable defaults for every
// knob.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Theme:      "default",
			LogDir:     "./logs",
			FileOutput: false,
			PrettyLogs: true,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
		},
		Tuning: TuningConfig{
			SampleWindowSize: 50,
			ConcurrencyLimit: 3,
			ProbeTimeout:     5 * time.Second,
			RetryCount:       2,

			WeightQuality:     0.5,
			WeightMetric:      0.35,
			WeightSuccessRate: 0.15,

			CooldownFloor: 5 * time.Minute,
			CooldownCeil:  2 * time.Hour,
			CooldownBase:  30 * time.Minute,

			AvailabilityMinRate: 0.75,
			EmergencyHardFails:  2,

			LatencyCapMs:  3000,
			JitterCapMs:   500,
			LossCap:       1.0,
			BpsSoftCap:    50_000_000,
			ThroughputCap: 15,

			DecisionCacheSize: 1000,
			DecisionCacheTTL:  time.Hour,
			GeoCacheTTL:       24 * time.Hour,
			ProbeCacheTTL:     60 * time.Second,

			PreheatCount:       10,
			PreheatConcurrency: 3,

			StaleAfter:      3 * time.Hour,
			LowWaterQuality: 20,

			AllowDirectFallback: true,
		},
		Classify: ClassifyConfig{
			VideoHostRegex:    `(?i)(youtube|netflix|twitch|vimeo|hulu|disneyplus)`,
			AIHostRegex:       `(?i)(openai|anthropic|claude|gemini|cohere|huggingface)`,
			LargePayloadBytes: 512 * 1024,
			GamingPorts:       []int{3074, 3478, 3479, 3480, 27015, 27016},
		},
		Regions: []RegionConfig{
			{Name: "China", Regex: `(?i)(cn|china|beijing|shanghai)`, Icon: "cn"},
			{Name: "Taiwan", Regex: `(?i)(tw|taiwan|taipei)`, Icon: "tw"},
			{Name: "Japan", Regex: `(?i)(jp|japan|tokyo)`, Icon: "jp"},
			{Name: "US", Regex: `(?i)(us|usa|america)`, Icon: "us"},
		},
	}
}

// Load loads configuration from file and SCHEDULER_-prefixed environment
// variables, watching the file for changes via fsnotify.
func Load(onConfigChange func()) (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("scheduler")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("SCHEDULER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if configFile := os.Getenv("SCHEDULER_CONFIG_FILE"); configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
			}
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if endpointsFile := os.Getenv("SCHEDULER_ENDPOINTS_FILE"); endpointsFile != "" {
		extra, err := LoadEndpointsFile(endpointsFile)
		if err != nil {
			return nil, fmt.Errorf("loading endpoints file %s: %w", endpointsFile, err)
		}
		cfg.Endpoints = append(cfg.Endpoints, extra...)
	}

	viper.WatchConfig()

	if onConfigChange != nil {
		viper.OnConfigChange(func(e fsnotify.Event) {
			reloadMutex.Lock()
			defer reloadMutex.Unlock()

			now := time.Now()
			if now.Sub(lastReload) < 500*time.Millisecond {
				return // ignore rapid-fire duplicate events
			}
			lastReload = now

			time.Sleep(DefaultFileWriteDelay)
			onConfigChange()
		})
	}

	return cfg, nil
}

// LoadEndpointsFile reads a standalone YAML document of endpoint entries,
// separate from the main scheduler config file, so an operator-facing
// process that regenerates a proxy list on its own schedule (e.g. a fleet
// discovery job) can feed it straight into the scheduler without touching
// scheduler.yaml.
func LoadEndpointsFile(path string) ([]EndpointConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading endpoints file: %w", err)
	}

	var doc struct {
		Endpoints []EndpointConfig `yaml:"endpoints"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing endpoints file: %w", err)
	}
	return doc.Endpoints, nil
}

// Validate rejects malformed endpoint configuration at load time without
// failing the whole pool; callers should log and skip invalid entries
// rather than abort startup.
func (c *EndpointConfig) Validate() error {
	if c.Server == "" {
		return domain.NewInputError("server", c.Server, "endpoint server address cannot be empty")
	}
	if c.ID == "" && c.Name == "" {
		return domain.NewInputError("id/name", c.ID, "endpoint must have an id or a name")
	}
	return nil
}
