package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	HTTP     HTTPConfig
	Export   ExportConfig
	Features FeatureFlags
	Admin    AdminConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ExportConfig controla dónde y cómo se escriben los PDF/XML exportados.
type ExportConfig struct {
	Dir               string
	MinPasswordLength int
	OnCreate          bool   // exportar PDF+XML al crear una factura
	FooterNote        string // texto izquierdo de la barra inferior del PDF
}

// FeatureFlags sustituye los interruptores globales de la aplicación de escritorio.
// Se pasan explícitamente a los constructores que los necesitan.
type FeatureFlags struct {
	Validation     bool
	Authentication bool
	Authorization  bool
}

// AdminConfig usuario inicial que se crea si la tabla de usuarios está vacía.
type AdminConfig struct {
	Username string
	Password string
}

// Load lee la configuración del servidor desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, EXPORT_DIR, FEATURE_VALIDATION, etc.
func Load() (*Config, error) {
	return fromViper(newViper())
}

// LoadCLI igual que Load pero sin exigir JWT_SECRET: las herramientas de línea de
// comandos no emiten ni validan tokens.
func LoadCLI() (*Config, error) {
	return readViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg, err := readViper(v)
	if err != nil {
		return nil, err
	}
	if cfg.Features.Authentication && cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET requerido con FEATURE_AUTHENTICATION activo")
	}
	return cfg, nil
}

func readViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "rechnungsverwaltung"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "rechnungsverwaltung"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 10),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "rechnungsverwaltung"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Export: ExportConfig{
			Dir:               getString(v, "EXPORT_DIR", defaultExportDir()),
			MinPasswordLength: getInt(v, "EXPORT_MIN_PASSWORD_LENGTH", 8),
			OnCreate:          getBool(v, "EXPORT_ON_CREATE", true),
			FooterNote:        getString(v, "EXPORT_FOOTER_NOTE", "BackOffice 2020 – Das ideale Rechnungsprogramm für Handwerksbetriebe"),
		},
		Features: FeatureFlags{
			Validation:     getBool(v, "FEATURE_VALIDATION", true),
			Authentication: getBool(v, "FEATURE_AUTHENTICATION", true),
			Authorization:  getBool(v, "FEATURE_AUTHORIZATION", true),
		},
		Admin: AdminConfig{
			Username: getString(v, "ADMIN_USERNAME", "admin"),
			Password: getString(v, "ADMIN_PASSWORD", ""),
		},
	}

	if cfg.Export.MinPasswordLength < 1 {
		return nil, fmt.Errorf("config: EXPORT_MIN_PASSWORD_LENGTH debe ser positivo")
	}
	return cfg, nil
}

// defaultExportDir %PROGRAMDATA%\Rechnungsverwaltung\export en Windows, ./export en el resto.
func defaultExportDir() string {
	if pd := os.Getenv("PROGRAMDATA"); pd != "" {
		return filepath.Join(pd, "Rechnungsverwaltung", "export")
	}
	return "export"
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v.GetString(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
