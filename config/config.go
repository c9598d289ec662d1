// Package config loads process-wide configuration for nifty.
//
// Configuration is read once at startup from a YAML file and passed around
// as an immutable value; nothing in this module consults ambient state after
// Load returns.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	xerrors "github.com/niftyshare/nifty/errors"
)

// AWSConfig holds settings for the S3-backed provider.
type AWSConfig struct {
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	Bucket     string `mapstructure:"bucket"`
	Region     string `mapstructure:"region"`
	// Endpoint overrides the default S3 endpoint. Required for some regions
	// and for S3-compatible backends such as Wasabi.
	Endpoint   string `mapstructure:"endpoint"`
	RootFolder string `mapstructure:"root_folder"`
}

// GoogleConfig holds settings for the GCS-backed provider.
type GoogleConfig struct {
	Bucket          string `mapstructure:"bucket"`
	CredentialsPath string `mapstructure:"credentials_path"`
	RootFolder      string `mapstructure:"root_folder"`
}

// MinioConfig holds settings for S3-compatible endpoints driven through the
// MinIO client.
type MinioConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	Bucket     string `mapstructure:"bucket"`
	Region     string `mapstructure:"region"`
	UseSSL     bool   `mapstructure:"use_ssl"`
	RootFolder string `mapstructure:"root_folder"`
}

// MailConfig holds SMTP transport and sender identity settings.
type MailConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	SenderName    string `mapstructure:"sender_name"`
	SenderAddress string `mapstructure:"sender_address"`
}

// SQLiteConfig holds settings for the embedded ledger engine.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// MySQLConfig holds settings for the client/server ledger engine.
type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// LedgerConfig selects and configures the ledger backend.
type LedgerConfig struct {
	// Engine is "sqlite" or "mysql".
	Engine string       `mapstructure:"engine"`
	Table  string       `mapstructure:"table"`
	SQLite SQLiteConfig `mapstructure:"sqlite"`
	MySQL  MySQLConfig  `mapstructure:"mysql"`
}

// Config is the root configuration value.
type Config struct {
	AWS         AWSConfig    `mapstructure:"aws"`
	Google      GoogleConfig `mapstructure:"google"`
	Minio       MinioConfig  `mapstructure:"minio"`
	Mail        MailConfig   `mapstructure:"mail"`
	Ledger      LedgerConfig `mapstructure:"ledger"`
	TemplateDir string       `mapstructure:"template_dir"`
}

// Load reads configuration from the given file, or from nifty.yaml in the
// working directory or $HOME/.nifty/ when path is empty. Defaults are
// applied before unmarshalling.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("nifty")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.nifty")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, xerrors.New("config", fmt.Errorf("reading config: %w", err))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, xerrors.New("config", fmt.Errorf("unmarshalling config: %w", err))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("template_dir", "mail_templates")
	v.SetDefault("mail.port", 587)
	v.SetDefault("ledger.engine", "sqlite")
	v.SetDefault("ledger.table", "nifty_transfers")
	v.SetDefault("ledger.sqlite.path", "nifty.db")
	v.SetDefault("ledger.mysql.port", 3306)
	v.SetDefault("aws.root_folder", "testfolder")
	v.SetDefault("google.root_folder", "testfolder")
	v.SetDefault("minio.root_folder", "testfolder")
	v.SetDefault("minio.use_ssl", true)
}

func (c *Config) validate() error {
	switch c.Ledger.Engine {
	case "sqlite", "mysql":
	default:
		return xerrors.New("config", xerrors.ErrInvalidRequest).
			WithMessage(fmt.Sprintf("unknown ledger engine %q", c.Ledger.Engine))
	}
	if c.Ledger.Table == "" {
		return xerrors.New("config", xerrors.ErrInvalidRequest).
			WithMessage("ledger table name cannot be empty")
	}
	return nil
}
