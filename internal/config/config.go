package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/adwatch/pkg/apify"
	"github.com/sells-group/adwatch/pkg/brightdata"
)

// Config holds the full application configuration. It is built once at
// startup and passed by reference; nothing mutates it afterwards.
type Config struct {
	Sheet      SheetConfig      `yaml:"sheet" mapstructure:"sheet"`
	Apify      ApifyConfig      `yaml:"apify" mapstructure:"apify"`
	BrightData BrightDataConfig `yaml:"brightdata" mapstructure:"brightdata"`
	Browser    BrowserConfig    `yaml:"browser" mapstructure:"browser"`
	Monitor    MonitorConfig    `yaml:"monitor" mapstructure:"monitor"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SheetConfig identifies the spreadsheet and its access token.
type SheetConfig struct {
	ID    string `yaml:"id" mapstructure:"id"`
	Token string `yaml:"token" mapstructure:"token"`
}

// ApifyConfig holds profile lookup service settings.
type ApifyConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	ActorID string `yaml:"actor_id" mapstructure:"actor_id"`
}

// BrightDataConfig holds bulk company collection settings.
type BrightDataConfig struct {
	Token            string `yaml:"token" mapstructure:"token"`
	DatasetID        string `yaml:"dataset_id" mapstructure:"dataset_id"`
	PollIntervalSecs int    `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
	PollTimeoutSecs  int    `yaml:"poll_timeout_secs" mapstructure:"poll_timeout_secs"`
}

// PollInterval returns the fixed progress poll interval.
func (c BrightDataConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSecs) * time.Second
}

// PollTimeout returns the overall collection wait budget.
func (c BrightDataConfig) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutSecs) * time.Second
}

// BrowserConfig configures the ad-library browser session.
type BrowserConfig struct {
	Username        string `yaml:"username" mapstructure:"username"`
	Password        string `yaml:"password" mapstructure:"password"`
	Visible         bool   `yaml:"visible" mapstructure:"visible"`
	ChromePath      string `yaml:"chrome_path" mapstructure:"chrome_path"`
	SettleSecs      int    `yaml:"settle_secs" mapstructure:"settle_secs"`
	CompanyWaitSecs int    `yaml:"company_wait_secs" mapstructure:"company_wait_secs"`
}

// SettleWait returns the fixed delay used after navigation in place of a
// page-load-complete signal.
func (c BrowserConfig) SettleWait() time.Duration {
	return time.Duration(c.SettleSecs) * time.Second
}

// CompanyWait returns the pause between companies within a batch.
func (c BrowserConfig) CompanyWait() time.Duration {
	return time.Duration(c.CompanyWaitSecs) * time.Second
}

// MonitorConfig configures the scan loop.
type MonitorConfig struct {
	BatchSize     int `yaml:"batch_size" mapstructure:"batch_size"`
	IdleWaitSecs  int `yaml:"idle_wait_secs" mapstructure:"idle_wait_secs"`
	ErrorWaitSecs int `yaml:"error_wait_secs" mapstructure:"error_wait_secs"`
}

// IdleWait returns the sleep applied when a scan finds nothing to do.
func (c MonitorConfig) IdleWait() time.Duration {
	return time.Duration(c.IdleWaitSecs) * time.Second
}

// ErrorWait returns the backoff applied after a failed pass or batch.
func (c MonitorConfig) ErrorWait() time.Duration {
	return time.Duration(c.ErrorWaitSecs) * time.Second
}

// ServerConfig configures the health front-end.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// configKeys is the full set of settings Unmarshal reads. Keys without a
// default still need an explicit env binding to be readable from the
// environment alone.
var configKeys = []string{
	"sheet.id",
	"sheet.token",
	"apify.token",
	"apify.actor_id",
	"brightdata.token",
	"brightdata.dataset_id",
	"brightdata.poll_interval_secs",
	"brightdata.poll_timeout_secs",
	"browser.username",
	"browser.password",
	"browser.visible",
	"browser.chrome_path",
	"browser.settle_secs",
	"browser.company_wait_secs",
	"monitor.batch_size",
	"monitor.idle_wait_secs",
	"monitor.error_wait_secs",
	"server.port",
	"log.level",
	"log.format",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ADWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys through Unmarshal;
	// every key must be bound explicitly or it is invisible without a
	// config file entry or default.
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}

	// Defaults
	v.SetDefault("apify.actor_id", apify.DefaultActorID)
	v.SetDefault("brightdata.dataset_id", brightdata.DefaultDatasetID)
	v.SetDefault("brightdata.poll_interval_secs", 5)
	v.SetDefault("brightdata.poll_timeout_secs", 300)
	v.SetDefault("browser.visible", false)
	v.SetDefault("browser.settle_secs", 8)
	v.SetDefault("browser.company_wait_secs", 2)
	v.SetDefault("monitor.batch_size", 10)
	v.SetDefault("monitor.idle_wait_secs", 30)
	v.SetDefault("monitor.error_wait_secs", 30)
	v.SetDefault("server.port", 10000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings the monitor refuses to start without.
func (c *Config) Validate() error {
	if c.Sheet.ID == "" {
		return eris.New("config: sheet.id is required")
	}
	if c.BrightData.Token == "" {
		return eris.New("config: brightdata.token is required")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
