// Package config provides configuration loading and validation for the
// board crawler.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BOARDCRAWL_OUTPUT_FILE.
const EnvPrefix = "BOARDCRAWL"

// Config is the complete crawler configuration.
type Config struct {
	BoardURL     string   `mapstructure:"board_url" validate:"required,url"`
	LoginURL     string   `mapstructure:"login_url" validate:"required,url"`
	WarmupURLs   []string `mapstructure:"warmup_urls" validate:"dive,url"`
	MenuSelector string   `mapstructure:"menu_selector"`
	FrameName    string   `mapstructure:"frame_name"`
	DomainMarker string   `mapstructure:"domain_marker" validate:"required"`

	Selectors Selectors `mapstructure:"selectors"`
	Timing    Timing    `mapstructure:"timing"`
	Browser   Browser   `mapstructure:"browser"`
	Output    Output    `mapstructure:"output"`

	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Progress bool   `mapstructure:"progress"`
}

// Selectors maps each logical field of the board markup to a CSS selector.
type Selectors struct {
	ListContainer string `mapstructure:"list_container" validate:"required"`
	ListItem      string `mapstructure:"list_item" validate:"required"`
	ListLink      string `mapstructure:"list_link" validate:"required"`
	DetailText    string `mapstructure:"detail_text" validate:"required"`
	DetailImages  string `mapstructure:"detail_images" validate:"required"`
}

// Timing holds every settle delay and bounded wait.
type Timing struct {
	LoginSettle    time.Duration `mapstructure:"login_settle" validate:"min=0"`
	ConfirmSettle  time.Duration `mapstructure:"confirm_settle" validate:"min=0"`
	WarmupSettle   time.Duration `mapstructure:"warmup_settle" validate:"min=0"`
	ClickTimeout   time.Duration `mapstructure:"click_timeout" validate:"gt=0"`
	MenuSettle     time.Duration `mapstructure:"menu_settle" validate:"min=0"`
	FallbackSettle time.Duration `mapstructure:"fallback_settle" validate:"min=0"`
	FrameTimeout   time.Duration `mapstructure:"frame_timeout" validate:"gt=0"`
	ListTimeout    time.Duration `mapstructure:"list_timeout" validate:"gt=0"`
	DetailSettle   time.Duration `mapstructure:"detail_settle" validate:"min=0"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout" validate:"min=0"`
}

// Browser configures the Chrome process.
type Browser struct {
	ExecPath   string `mapstructure:"exec_path"`
	ProfileDir string `mapstructure:"profile_dir"`
	UserAgent  string `mapstructure:"user_agent"`
	Headless   bool   `mapstructure:"headless"`
}

// Output selects where the result is written.
type Output struct {
	File   string `mapstructure:"file" validate:"required"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=xlsx csv sqlite"`
}

// SetDefaults registers the default configuration on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("board_url", "https://cafe.daum.net/WHCRP/VmtR")
	v.SetDefault("login_url", "https://accounts.kakao.com/login?continue=https://cafe.daum.net/")
	v.SetDefault("warmup_urls", []string{"https://top.cafe.daum.net/", "https://cafe.daum.net/WHCRP"})
	v.SetDefault("menu_selector", "#fldlink_VmtR_393")
	v.SetDefault("frame_name", "down")
	v.SetDefault("domain_marker", "cafe.daum.net")

	v.SetDefault("selectors.list_container", "#article-list")
	v.SetDefault("selectors.list_item", "#article-list > li")
	v.SetDefault("selectors.list_link", "strong > a")
	v.SetDefault("selectors.detail_text", "#article > p")
	v.SetDefault("selectors.detail_images", "#user_contents img")

	v.SetDefault("timing.login_settle", 2*time.Second)
	v.SetDefault("timing.confirm_settle", 3*time.Second)
	v.SetDefault("timing.warmup_settle", 3*time.Second)
	v.SetDefault("timing.click_timeout", 10*time.Second)
	v.SetDefault("timing.menu_settle", 3*time.Second)
	v.SetDefault("timing.fallback_settle", 2*time.Second)
	v.SetDefault("timing.frame_timeout", 2*time.Second)
	v.SetDefault("timing.list_timeout", 10*time.Second)
	v.SetDefault("timing.detail_settle", 1500*time.Millisecond)
	v.SetDefault("timing.confirm_timeout", time.Duration(0))

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.profile_dir", "chrome_profile")

	v.SetDefault("output.file", "crawled_products.xlsx")
	v.SetDefault("output.format", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("progress", true)
}

// NewViper returns a viper instance with defaults and environment binding.
// When path is empty, boardcrawl.yaml is searched in . and ./config.
func NewViper(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("boardcrawl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	return v
}

// Load reads the config file (if any) into a Config and validates it. An
// explicitly named file must exist; the default search may find nothing.
func Load(v *viper.Viper, explicit bool) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}
