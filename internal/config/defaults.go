package config

// Default values shared by ApplyDefaults and the flag help text.
const (
	DefaultMaxConcurrent = 4
	DefaultFetchTimeout  = "10s"
	DefaultMaxRedirects  = 5
	DefaultMaxBodyBytes  = 5 * 1024 * 1024
	DefaultUserAgent     = "docrefactor/1.0"
	DefaultDebounce      = "300ms"
	DefaultServeAddr     = ":8080"
)

// DefaultExclude lists rustdoc output that never carries item documentation.
var DefaultExclude = []string{
	"src/**",
	"static.files/**",
	"implementors/**",
	"settings.html",
	"help.html",
	"all.html",
}

// ApplyDefaults fills zero values in place.
func ApplyDefaults(cfg *Config) {
	if len(cfg.Include) == 0 {
		cfg.Include = []string{"*.html"}
	}
	if cfg.Exclude == nil {
		cfg.Exclude = append([]string(nil), DefaultExclude...)
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.Fetch.Timeout == "" {
		cfg.Fetch.Timeout = DefaultFetchTimeout
	}
	if cfg.Fetch.MaxRedirects <= 0 {
		cfg.Fetch.MaxRedirects = DefaultMaxRedirects
	}
	if cfg.Fetch.MaxBodyBytes <= 0 {
		cfg.Fetch.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = DefaultUserAgent
	}
	if cfg.Fetch.Retry.Mode == "" {
		cfg.Fetch.Retry.Mode = string(RetryBackoffLinear)
	}
	if cfg.Fetch.Retry.Initial == "" {
		cfg.Fetch.Retry.Initial = "500ms"
	}
	if cfg.Fetch.Retry.Max == "" {
		cfg.Fetch.Retry.Max = "5s"
	}
	if cfg.Fetch.Retry.MaxRetries < 0 {
		cfg.Fetch.Retry.MaxRetries = 2
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = DefaultDebounce
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = DefaultServeAddr
	}
}
