package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	AccountBackendFile   = "file"
	AccountBackendOracle = "oracle"

	PasswordHashSHA256 = "sha256"
	PasswordHashBcrypt = "bcrypt"
)

type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Auth    AuthConfig
	Session SessionConfig
	Redis   RedisConfig
	DB      DBConfig
	Logger  LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DataConfig locates the question banks and the settings/account documents.
type DataConfig struct {
	Dir          string
	SettingsFile string
	UsersFile    string
}

type AuthConfig struct {
	JWT            JWTConfig
	PasswordHash   string
	AdminUsername  string
	AccountBackend string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL time.Duration
}

type SessionConfig struct {
	Backend string
	TTL     time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type LoggerConfig struct {
	Level string
	Env   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")

	v.SetDefault("data.dir", "./data")
	v.SetDefault("data.settings_file", "settings.json")
	v.SetDefault("data.users_file", "users.json")

	v.SetDefault("auth.jwt.secret_key", "change-me")
	v.SetDefault("auth.jwt.access_token_ttl", "12h")
	v.SetDefault("auth.password_hash", PasswordHashSHA256)
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.account_backend", AccountBackendFile)

	v.SetDefault("session.backend", SessionBackendMemory)
	v.SetDefault("session.ttl", "24h")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("db.port", 1521)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
}

// LoadConfig reads config.yaml (optional), a .env file (optional) and the environment.
// Environment variables use the key path with "." replaced by "_", e.g. AUTH_JWT_SECRET_KEY.
func LoadConfig() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Data: DataConfig{
			Dir:          v.GetString("data.dir"),
			SettingsFile: v.GetString("data.settings_file"),
			UsersFile:    v.GetString("data.users_file"),
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				SecretKey:      v.GetString("auth.jwt.secret_key"),
				AccessTokenTTL: v.GetDuration("auth.jwt.access_token_ttl"),
			},
			PasswordHash:   strings.ToLower(v.GetString("auth.password_hash")),
			AdminUsername:  v.GetString("auth.admin_username"),
			AccountBackend: strings.ToLower(v.GetString("auth.account_backend")),
		},
		Session: SessionConfig{
			Backend: strings.ToLower(v.GetString("session.backend")),
			TTL:     v.GetDuration("session.ttl"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		DB: DBConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Auth.PasswordHash {
	case PasswordHashSHA256, PasswordHashBcrypt:
	default:
		return fmt.Errorf("unsupported auth.password_hash %q", c.Auth.PasswordHash)
	}
	switch c.Auth.AccountBackend {
	case AccountBackendFile, AccountBackendOracle:
	default:
		return fmt.Errorf("unsupported auth.account_backend %q", c.Auth.AccountBackend)
	}
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unsupported session.backend %q", c.Session.Backend)
	}
	if c.Data.Dir == "" {
		return errors.New("data.dir must not be empty")
	}
	return nil
}

func (c *Config) GetDSN() string {
	// Oracle DSN format: user/password@host:port/service
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
	)
}
