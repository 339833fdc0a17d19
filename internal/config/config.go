// Package config loads the service configuration from YAML and the
// environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/merqhr/timesheet/internal/calendar"
	"github.com/merqhr/timesheet/internal/timesheet"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Timesheet TimesheetConfig `mapstructure:"timesheet"`
	Export    ExportConfig    `mapstructure:"export"`
	Email     EmailConfig     `mapstructure:"email"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds sqlite configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// CalendarConfig holds the deployment calendar settings. Timezone fixes
// the reference for future-date checks; rest days default to Saturday and
// Sunday.
type CalendarConfig struct {
	Timezone string   `mapstructure:"timezone"`
	RestDays []string `mapstructure:"rest_days"`
}

// TimesheetConfig holds the timesheet policy
type TimesheetConfig struct {
	DefaultProjectName string             `mapstructure:"default_project_name"`
	DailyCap           float64            `mapstructure:"daily_cap"`
	PrefillHours       map[string]float64 `mapstructure:"prefill_hours"`
}

// ExportConfig holds Excel export settings
type ExportConfig struct {
	OutputDir   string `mapstructure:"output_dir"`
	CompanyName string `mapstructure:"company_name"`
}

// EmailConfig holds SMTP submission settings
type EmailConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	From         string   `mapstructure:"from"`
	HRRecipients []string `mapstructure:"hr_recipients"`
	Domain       string   `mapstructure:"domain"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/timesheet.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")

	viper.SetDefault("calendar.timezone", "Africa/Addis_Ababa")
	viper.SetDefault("calendar.rest_days", []string{"saturday", "sunday"})

	viper.SetDefault("timesheet.default_project_name", "General")
	viper.SetDefault("timesheet.daily_cap", 24.0)
	viper.SetDefault("timesheet.prefill_hours", map[string]float64{
		"monday": 8, "tuesday": 8, "wednesday": 8, "thursday": 8, "friday": 8,
	})

	viper.SetDefault("export.output_dir", "exports")
	viper.SetDefault("export.company_name", "MERQ Consultancy")

	viper.SetDefault("email.enabled", false)
	viper.SetDefault("email.port", 587)
	viper.SetDefault("email.domain", "merqconsultancy.org")
}

func bindEnvVars() {
	viper.BindEnv("email.host", "SMTP_HOST")
	viper.BindEnv("email.username", "SMTP_USERNAME")
	viper.BindEnv("email.password", "SMTP_PASSWORD")
	viper.BindEnv("database.path", "TIMESHEET_DB_PATH")
}

var weekdayByName = map[string]calendar.Weekday{
	"monday":    calendar.Monday,
	"tuesday":   calendar.Tuesday,
	"wednesday": calendar.Wednesday,
	"thursday":  calendar.Thursday,
	"friday":    calendar.Friday,
	"saturday":  calendar.Saturday,
	"sunday":    calendar.Sunday,
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Timesheet.DailyCap <= 0 {
		return fmt.Errorf("daily cap must be positive: %f", c.Timesheet.DailyCap)
	}
	for name := range c.Timesheet.PrefillHours {
		if _, ok := weekdayByName[strings.ToLower(name)]; !ok {
			return fmt.Errorf("unknown weekday in prefill_hours: %q", name)
		}
	}
	for _, name := range c.Calendar.RestDays {
		if _, ok := weekdayByName[strings.ToLower(name)]; !ok {
			return fmt.Errorf("unknown weekday in rest_days: %q", name)
		}
	}
	if c.Email.Enabled {
		if c.Email.Host == "" || c.Email.From == "" || len(c.Email.HRRecipients) == 0 {
			return fmt.Errorf("email submission enabled but host, from or hr_recipients missing")
		}
	}
	return nil
}

// CalendarConfig translates the raw settings for the calendar engine
func (c *Config) CalendarEngineConfig() calendar.Config {
	rest := make([]calendar.Weekday, 0, len(c.Calendar.RestDays))
	for _, name := range c.Calendar.RestDays {
		rest = append(rest, weekdayByName[strings.ToLower(name)])
	}
	return calendar.Config{Timezone: c.Calendar.Timezone, RestDays: rest}
}

// StoreConfig translates the raw settings for the timesheet store
func (c *Config) StoreConfig() timesheet.Config {
	prefill := make(map[calendar.Weekday]float64, len(c.Timesheet.PrefillHours))
	for name, hours := range c.Timesheet.PrefillHours {
		prefill[weekdayByName[strings.ToLower(name)]] = hours
	}
	return timesheet.Config{
		DefaultProjectName: c.Timesheet.DefaultProjectName,
		DailyCap:           c.Timesheet.DailyCap,
		PrefillHours:       prefill,
	}
}
