package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type GuardianConfig struct {
	BreakMinutes   int `mapstructure:"break_minutes"`
	BedtimeMinutes int `mapstructure:"bedtime_minutes"` // minutes since midnight
}

type Config struct {
	DatabasePath    string         `mapstructure:"database_path"`
	SocketPath      string         `mapstructure:"socket_path"`
	CheckInKeepLast int            `mapstructure:"checkin_keep_last"`
	Guardian        GuardianConfig `mapstructure:"guardian"`
}

func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")                // name of config file (without extension)
		viper.SetConfigType("yaml")                  // REQUIRED if the config file does not have the extension in the name
		viper.AddConfigPath(".")                     // optionally look for config in the working directory
		viper.AddConfigPath("$HOME/.config/brujula") // call multiple times to add many search paths
		viper.AddConfigPath("/etc/brujula/")         // path to look for the config file in
	}

	viper.SetEnvPrefix("BRUJULA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// Set defaults
	viper.SetDefault("database_path", "brujula.db")
	viper.SetDefault("socket_path", "/tmp/brujula.sock")
	viper.SetDefault("checkin_keep_last", 500)
	viper.SetDefault("guardian.break_minutes", 45)
	viper.SetDefault("guardian.bedtime_minutes", 60) // 01:00

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error if defaults are okay
			log.Println("Config file not found, using defaults.")
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Guardian.BreakMinutes < 1 {
		log.Println("Warning: guardian.break_minutes too low, setting to 45")
		cfg.Guardian.BreakMinutes = 45
	}
	if cfg.Guardian.BedtimeMinutes < 0 || cfg.Guardian.BedtimeMinutes > 1439 {
		log.Printf("Warning: guardian.bedtime_minutes %d out of range, defaulting to 60", cfg.Guardian.BedtimeMinutes)
		cfg.Guardian.BedtimeMinutes = 60
	}
	if cfg.CheckInKeepLast < 0 {
		log.Println("Warning: checkin_keep_last negative, disabling pruning")
		cfg.CheckInKeepLast = 0
	}

	log.Printf("Configuration loaded: %+v", cfg)
	return &cfg, nil
}

func (g GuardianConfig) BreakInterval() time.Duration {
	return time.Duration(g.BreakMinutes) * time.Minute
}
