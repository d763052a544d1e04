// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Session  SessionConfig
	Log      LogConfig
	Admin    AdminConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string { return ":" + s.Port }

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds connection settings. Path is only used by the sqlite driver.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string
	Debug    bool
}

// DSN returns the connection string handed to gorm: key=value for PostgreSQL,
// the file path for sqlite.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as golang-migrate expects it.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// Masked returns DSN with the password hidden, for logs.
func (d DatabaseConfig) Masked() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return strings.Replace(d.DSN(), "password="+d.Password, "password=***", 1)
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool
	Migrations    bool // run AutoMigrate at startup
	SQLMigrations bool // run SQL files from MigrationsDir instead
	MigrationsDir string
	Seed          bool
	TemplatesDir  string
	StaticDir     string
}

// SessionConfig holds cookie and identity cache settings.
type SessionConfig struct {
	Secret      string
	Secure      bool
	IdentityTTL time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
	JSON  bool
}

// AdminConfig is the bootstrap administrator created by the seed when missing.
type AdminConfig struct {
	Email     string
	Password  string
	Firstname string
	Lastname  string
}

const (
	devSessionSecret = "dev-insecure-secret"
	devAdminPassword = "admin123"
)

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "trainings"),
			Password: getEnv("DB_PASSWORD", "trainings123"),
			DBName:   getEnv("DB_NAME", "trainings"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "trainings.db"),
			Debug:    getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Dev:           getEnvBool("DEV", true),
			Migrations:    getEnvBool("MIGRATIONS", true),
			SQLMigrations: getEnvBool("SQL_MIGRATIONS", false),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
			Seed:          getEnvBool("DB_SEED", false),
			TemplatesDir:  getEnv("TEMPLATES_DIR", "templates"),
			StaticDir:     getEnv("STATIC_DIR", "static"),
		},
		Session: SessionConfig{
			Secret:      getEnv("SESSION_SECRET", devSessionSecret),
			Secure:      getEnvBool("SESSION_SECURE", false),
			IdentityTTL: time.Duration(getEnvInt("IDENTITY_CACHE_TTL", 300)) * time.Second,
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			JSON:  getEnvBool("LOG_JSON", false),
		},
		Admin: AdminConfig{
			Email:     getEnv("ADMIN_EMAIL", "admin@example.com"),
			Password:  getEnv("ADMIN_PASSWORD", devAdminPassword),
			Firstname: getEnv("ADMIN_FIRSTNAME", "Admin"),
			Lastname:  getEnv("ADMIN_LASTNAME", "Ecole"),
		},
	}
}

// Validate rejects settings that must not reach production.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.App.SQLMigrations && c.Database.Driver != DriverPostgres {
		return errors.New("SQL_MIGRATIONS requires the postgres driver")
	}
	if !c.App.Dev && c.Session.Secret == devSessionSecret {
		return errors.New("SESSION_SECRET must be set outside development")
	}
	if !c.App.Dev && c.App.Seed && c.Admin.Password == devAdminPassword {
		return errors.New("ADMIN_PASSWORD must be set to seed outside development")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
