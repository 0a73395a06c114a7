package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Catalogs CatalogsConfig `mapstructure:"catalogs"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Tracker  TrackerConfig  `mapstructure:"tracker"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // mysql, sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	Path     string `mapstructure:"path"` // sqlite file path
}

type RabbitMQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	VHost    string `mapstructure:"vhost"`
	Queue    string `mapstructure:"queue"`
}

// CatalogsConfig points at the four pattern catalog files. The files are
// configparser-style INI, one section per detector.
type CatalogsConfig struct {
	Smali string `mapstructure:"smali"`
	Wide  string `mapstructure:"wide"`
	Arm   string `mapstructure:"arm"`
	Kit   string `mapstructure:"kit"`
}

// IngestConfig configures the report drop-dir pipeline.
type IngestConfig struct {
	ReportDir   string `mapstructure:"report_dir"`  // watched for <sha256>.json
	ArchiveDir  string `mapstructure:"archive_dir"` // ingested reports move here; empty = leave in place
	Concurrency int    `mapstructure:"concurrency"` // consumer workers
}

type TrackerConfig struct {
	FeedURL string `mapstructure:"feed_url"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	// Credentials come from the environment in deployments.
	viper.BindEnv("database.host", "MYSQL_HOST")
	viper.BindEnv("database.port", "MYSQL_PORT")
	viper.BindEnv("database.user", "MYSQL_USER")
	viper.BindEnv("database.password", "MYSQL_PASS")
	viper.BindEnv("database.db_name", "MYSQL_DB")

	viper.BindEnv("rabbitmq.host", "RABBITMQ_HOST")
	viper.BindEnv("rabbitmq.port", "RABBITMQ_PORT")
	viper.BindEnv("rabbitmq.user", "RABBITMQ_USER")
	viper.BindEnv("rabbitmq.password", "RABBITMQ_PASS")

	viper.BindEnv("tracker.feed_url", "TRACKER_FEED_URL")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
