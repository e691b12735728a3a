package config

// Config is the complete credex configuration. It is loaded from a config
// file, CREDEX_* environment variables and command-line flags.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Extract  ExtractConfig  `mapstructure:"extract" yaml:"extract" json:"extract"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output" json:"output"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server" json:"server"`
	Batch    BatchConfig    `mapstructure:"batch" yaml:"batch" json:"batch"`
	Registry RegistryConfig `mapstructure:"registry" yaml:"registry" json:"registry"`
}

// ExtractConfig contains field extraction settings.
type ExtractConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
	Canonicalize  bool    `mapstructure:"canonicalize" yaml:"canonicalize" json:"canonicalize"`
	ScanAllTokens bool    `mapstructure:"scan_all_tokens" yaml:"scan_all_tokens" json:"scan_all_tokens"`
	UnicodeForm   string  `mapstructure:"unicode_form" yaml:"unicode_form" json:"unicode_form"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty" json:"pretty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host             string `mapstructure:"host" yaml:"host" json:"host"`
	Port             int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin       string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxBodyKB        int    `mapstructure:"max_body_kb" yaml:"max_body_kb" json:"max_body_kb"`
	TimeoutSec       int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout  int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RateLimitEnabled bool   `mapstructure:"rate_limit_enabled" yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RequestsPerMin   int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour  int    `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsDay   int    `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxDataPerDay    int64  `mapstructure:"max_data_per_day" yaml:"max_data_per_day" json:"max_data_per_day"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int  `mapstructure:"workers" yaml:"workers" json:"workers"`
	Recursive       bool `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// RegistryConfig selects the register used to verify extracted codes.
type RegistryConfig struct {
	Source     string `mapstructure:"source" yaml:"source" json:"source"`
	Path       string `mapstructure:"path" yaml:"path" json:"path"`
	URL        string `mapstructure:"url" yaml:"url" json:"url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	Attempts   int    `mapstructure:"attempts" yaml:"attempts" json:"attempts"`
	Watch      bool   `mapstructure:"watch" yaml:"watch" json:"watch"`
}
