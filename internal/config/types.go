package config

import "time"

// Config holds all tuning knobs for the scheduler.
type Config struct {
	Logging   LoggingConfig    `yaml:"logging"`
	Endpoints []EndpointConfig `yaml:"endpoints"`
	Tuning    TuningConfig     `yaml:"tuning"`
	Regions   []RegionConfig   `yaml:"regions"`
	Classify  ClassifyConfig   `yaml:"classify"`
	Privacy   PrivacyConfig    `yaml:"privacy"`
}

// EndpointConfig describes one configured outbound proxy candidate.
type EndpointConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Server   string `yaml:"server"` // host:port
	ProbeURL string `yaml:"probe_url"`
	Type     string `yaml:"type"`
}

// TuningConfig carries every numeric knob governing probing, scoring and
// selection.
type TuningConfig struct {
	SampleWindowSize int           `yaml:"sample_window_size"`
	ConcurrencyLimit int           `yaml:"concurrency_limit"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	RetryCount       int           `yaml:"retry_count"`

	WeightQuality     float64 `yaml:"weight_quality"`
	WeightMetric      float64 `yaml:"weight_metric"`
	WeightSuccessRate float64 `yaml:"weight_success_rate"`

	CooldownFloor time.Duration `yaml:"cooldown_floor"`
	CooldownCeil  time.Duration `yaml:"cooldown_ceiling"`
	CooldownBase  time.Duration `yaml:"cooldown_base"`

	AvailabilityMinRate float64 `yaml:"availability_min_rate"`
	EmergencyHardFails  int     `yaml:"emergency_hard_fail_count"`

	LatencyCapMs  float64 `yaml:"latency_cap_ms"`
	JitterCapMs   float64 `yaml:"jitter_cap_ms"`
	LossCap       float64 `yaml:"loss_cap"`
	BpsSoftCap    float64 `yaml:"bps_soft_cap"`
	ThroughputCap float64 `yaml:"throughput_score_cap"`

	DecisionCacheSize int           `yaml:"decision_cache_size"`
	DecisionCacheTTL  time.Duration `yaml:"decision_cache_ttl"`
	GeoCacheTTL       time.Duration `yaml:"geo_cache_ttl"`
	ProbeCacheTTL     time.Duration `yaml:"probe_cache_ttl"`

	PreheatCount       int `yaml:"preheat_count"`
	PreheatConcurrency int `yaml:"preheat_concurrency"`

	StaleAfter      time.Duration `yaml:"stale_after"`
	LowWaterQuality float64       `yaml:"low_water_quality"`

	AllowDirectFallback bool `yaml:"allow_direct_fallback"`
}

// RegionConfig is one entry of the ordered region table; the regex matches
// endpoint names and/or country strings. First match wins per endpoint when
// region patterns overlap.
type RegionConfig struct {
	Name  string `yaml:"name"`
	Regex string `yaml:"regex"`
	Icon  string `yaml:"icon"`
}

// ClassifyConfig carries the configurable request-class regexes and the
// gaming port set.
type ClassifyConfig struct {
	VideoHostRegex    string `yaml:"video_host_regex"`
	AIHostRegex       string `yaml:"ai_host_regex"`
	LargePayloadBytes int64  `yaml:"large_payload_bytes"`
	GamingPorts       []int  `yaml:"gaming_ports"`
}

// PrivacyConfig controls whether external geo/DNS lookups are permitted.
type PrivacyConfig struct {
	GeoExternalLookup *bool `yaml:"geo_external_lookup"` // nil = host-decided
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Theme      string `yaml:"theme"`
	LogDir     string `yaml:"log_dir"`
	FileOutput bool   `yaml:"file_output"`
	PrettyLogs bool   `yaml:"pretty_logs"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}
