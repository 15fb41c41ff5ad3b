package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"GBMForecast/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stderr"`
	} `yaml:"log"`
	DataSource struct {
		Provider      string        `yaml:"provider" default:"yahoo" validate:"oneof=yahoo alpaca vstrader synthetic"`
		Symbol        string        `yaml:"symbol" default:"AAPL" validate:"required"`
		Start         string        `yaml:"start" validate:"omitempty,datetime=2006-01-02"`
		End           string        `yaml:"end" validate:"omitempty,datetime=2006-01-02"`
		BaseURL       string        `yaml:"base_url" validate:"omitempty,url"`
		APIKey        string        `yaml:"api_key"`
		APISecret     string        `yaml:"api_secret"`
		SyntheticSeed uint64        `yaml:"synthetic_seed" default:"42"`
		RetryDelay    time.Duration `yaml:"retry_delay" default:"2s"`
	} `yaml:"data_source"`
	Simulation struct {
		NumSimulations      int     `yaml:"num_simulations" default:"1000"`
		HorizonDays         int     `yaml:"horizon_days" default:"252"`
		AnnualizationFactor float64 `yaml:"annualization_factor" default:"252"`
		Confidence          float64 `yaml:"confidence" default:"0.95" validate:"gt=0,lt=1"`
		Seed                *uint64 `yaml:"seed"`
		Workers             int     `yaml:"workers" validate:"gte=0"`
		MaxCells            int     `yaml:"max_cells" default:"50000000" validate:"gte=0"`
	} `yaml:"simulation"`
	Output struct {
		CSVPath   string `yaml:"csv_path"`
		ChartPath string `yaml:"chart_path"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron    string   `yaml:"cron" default:"0 30 22 * * 1-5"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"schedule"`
	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

var validate = validator.New()

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file yields a default configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("ALPACA_SECRET_KEY"); v != "" {
		cfg.DataSource.APISecret = v
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("WATCH_SYMBOLS"); v != "" {
		cfg.Schedule.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("NUM_SIMULATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.NumSimulations = n
		}
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Simulation.Seed = &n
		}
	}
}

// Validate checks field constraints and cross-field rules. Simulation sizes are
// left to the simulator so its error kinds reach the caller unchanged.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return fmt.Errorf("data_source.start (%s) must be before data_source.end (%s)", c.DataSource.Start, c.DataSource.End)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return errors.New("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.DataSource.Provider == "vstrader" && c.DataSource.BaseURL == "" {
		return errors.New("data_source.base_url is required for the vstrader provider")
	}
	if c.DataSource.Provider == "alpaca" && (c.DataSource.APIKey == "" || c.DataSource.APISecret == "") {
		return errors.New("data_source.api_key and api_secret are required for the alpaca provider")
	}
	return nil
}

// DateRange parses the configured range. Empty bounds come back as zero times.
func (c *Config) DateRange() (start, end time.Time, err error) {
	if c.DataSource.Start != "" {
		if start, err = time.Parse(time.DateOnly, c.DataSource.Start); err != nil {
			return start, end, fmt.Errorf("data_source.start: %w", err)
		}
	}
	if c.DataSource.End != "" {
		if end, err = time.Parse(time.DateOnly, c.DataSource.End); err != nil {
			return start, end, fmt.Errorf("data_source.end: %w", err)
		}
	}
	return start, end, nil
}

// SimulationParameters returns the run size.
func (c *Config) SimulationParameters() model.SimulationParameters {
	return model.SimulationParameters{
		NumSimulations:      c.Simulation.NumSimulations,
		HorizonDays:         c.Simulation.HorizonDays,
		AnnualizationFactor: c.Simulation.AnnualizationFactor,
	}
}

// TelegramEnabled reports whether reports can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// WatchSymbols lists the symbols for watch mode, falling back to the single symbol.
func (c *Config) WatchSymbols() []string {
	if len(c.Schedule.Symbols) > 0 {
		return c.Schedule.Symbols
	}
	return []string{c.DataSource.Symbol}
}
