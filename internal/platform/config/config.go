package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

// ServerConfig は HTTP サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// KafkaConfig はイベント発行に関する設定です。brokers が空の場合イベント発行は無効になります。
type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	EventsTopic string   `yaml:"events_topic"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envOverrides はファイル設定を上書きする環境変数群です。接頭辞は
// FIELDSERVICE です (例: FIELDSERVICE_DATABASE_PASSWORD)。
type envOverrides struct {
	ServerListenAddr string   `envconfig:"SERVER_LISTEN_ADDR"`
	DatabaseHost     string   `envconfig:"DATABASE_HOST"`
	DatabasePort     int      `envconfig:"DATABASE_PORT"`
	DatabaseUser     string   `envconfig:"DATABASE_USER"`
	DatabasePassword string   `envconfig:"DATABASE_PASSWORD"`
	DatabaseName     string   `envconfig:"DATABASE_NAME"`
	KafkaBrokers     []string `envconfig:"KAFKA_BROKERS"`
	KafkaEventsTopic string   `envconfig:"KAFKA_EVENTS_TOPIC"`
}

func (c *Config) applyEnvOverrides() error {
	var env envOverrides
	if err := envconfig.Process("fieldservice", &env); err != nil {
		return fmt.Errorf("config: process environment: %w", err)
	}

	if env.ServerListenAddr != "" {
		c.Server.ListenAddr = env.ServerListenAddr
	}
	if env.DatabaseHost != "" {
		c.Database.Host = env.DatabaseHost
	}
	if env.DatabasePort != 0 {
		c.Database.Port = env.DatabasePort
	}
	if env.DatabaseUser != "" {
		c.Database.User = env.DatabaseUser
	}
	if env.DatabasePassword != "" {
		c.Database.Password = env.DatabasePassword
	}
	if env.DatabaseName != "" {
		c.Database.Name = env.DatabaseName
	}
	if len(env.KafkaBrokers) > 0 {
		c.Kafka.Brokers = env.KafkaBrokers
	}
	if env.KafkaEventsTopic != "" {
		c.Kafka.EventsTopic = env.KafkaEventsTopic
	}

	return nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.EventsTopic == "" {
		return fmt.Errorf("config: kafka.events_topic must be set when brokers are configured")
	}

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// EventsEnabled はイベント発行が設定されているかを返します。
func (k KafkaConfig) EventsEnabled() bool {
	return len(k.Brokers) > 0
}

// DSN は pgx 用の接続文字列を返します。認証情報は URL エスケープされます。
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.Name, d.SSLMode)
}
