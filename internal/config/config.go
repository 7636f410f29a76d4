// Package config provides functionality for managing configuration options
// for the server using command-line flags, a JSON config file, a .env file
// and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/atinyakov/JobTracker/internal/token"
)

// Defaults used when no source sets a value.
const (
	DefaultAddr            = "localhost:8080"
	DefaultConfigPath      = "config.json"
	DefaultEnvFile         = ".env"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultCORSOrigin      = "http://localhost:5173"
)

// Options holds the configuration values for the server.
type Options struct {
	// Addr is the listening address (ip:port).
	Addr string `env:"SERVER_ADDRESS"`

	// DatabaseDSN holds the Postgres connection string.
	DatabaseDSN string `env:"DATABASE_DSN"`

	// JWTSecret signs bearer tokens. At least 32 bytes.
	JWTSecret string `env:"JWT_SECRET"`

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration `env:"TOKEN_TTL"`

	// JWTIssuer, when set, is written to and required in tokens.
	JWTIssuer string `env:"JWT_ISSUER"`

	// BcryptCost is the password hashing cost. Zero picks the library default.
	BcryptCost int `env:"BCRYPT_COST"`

	// CORSOrigins is the browser origin allow-list.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	// LogLevel is a zap level name.
	LogLevel string `env:"LOG_LEVEL"`

	// ShutdownTimeout bounds the graceful shutdown.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	// Config is the path to the JSON config file.
	Config string `env:"CONFIG"`

	// EnvFile is the path to the .env file.
	EnvFile string
}

// fileOptions mirrors Options in the JSON config file. Durations are Go
// duration strings such as "30m".
type fileOptions struct {
	Addr            *string  `json:"server_address"`
	DatabaseDSN     *string  `json:"database_dsn"`
	JWTSecret       *string  `json:"jwt_secret"`
	TokenTTL        *string  `json:"token_ttl"`
	JWTIssuer       *string  `json:"jwt_issuer"`
	BcryptCost      *int     `json:"bcrypt_cost"`
	CORSOrigins     []string `json:"cors_origins"`
	TLSCertFile     *string  `json:"tls_cert_file"`
	TLSKeyFile      *string  `json:"tls_key_file"`
	LogLevel        *string  `json:"log_level"`
	ShutdownTimeout *string  `json:"shutdown_timeout"`
}

// Parse builds Options from command-line args and the process environment.
// Later sources win: flags, JSON config file, .env file, environment.
func Parse(args []string) (*Options, error) {
	return parse(args, os.Environ())
}

func parse(args, environ []string) (*Options, error) {
	opts := &Options{
		TokenTTL:        token.DefaultTTL,
		CORSOrigins:     []string{DefaultCORSOrigin},
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
	}

	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	flags.StringVar(&opts.Addr, "a", DefaultAddr, "run on ip:port server")
	flags.StringVar(&opts.DatabaseDSN, "d", "", "db address")
	flags.StringVar(&opts.Config, "config", DefaultConfigPath, "path to config file")
	flags.StringVar(&opts.Config, "c", DefaultConfigPath, "path to config file (shorthand)")
	flags.StringVar(&opts.EnvFile, "env", DefaultEnvFile, "path to .env file")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	vars := environMap(environ)
	if path := vars["CONFIG"]; path != "" {
		opts.Config = path
	}
	if err := opts.loadFile(opts.Config); err != nil {
		return nil, err
	}

	var dotenv map[string]string
	if opts.EnvFile != "" {
		m, err := godotenv.Read(opts.EnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
		dotenv = m
	}
	if dotenv == nil {
		dotenv = make(map[string]string, len(vars))
	}
	// Process environment overrides the .env file.
	for k, v := range vars {
		dotenv[k] = v
	}

	if err := env.ParseWithOptions(opts, env.Options{Environment: dotenv}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	opts.CORSOrigins = cleanList(opts.CORSOrigins)
	return opts, nil
}

func (o *Options) loadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error while reading config file: %w", err)
	}

	var f fileOptions
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}

	setString(&o.Addr, f.Addr)
	setString(&o.DatabaseDSN, f.DatabaseDSN)
	setString(&o.JWTSecret, f.JWTSecret)
	setString(&o.JWTIssuer, f.JWTIssuer)
	setString(&o.TLSCertFile, f.TLSCertFile)
	setString(&o.TLSKeyFile, f.TLSKeyFile)
	setString(&o.LogLevel, f.LogLevel)
	if f.BcryptCost != nil {
		o.BcryptCost = *f.BcryptCost
	}
	if len(f.CORSOrigins) > 0 {
		o.CORSOrigins = f.CORSOrigins
	}
	if err := setDuration(&o.TokenTTL, f.TokenTTL, "token_ttl"); err != nil {
		return err
	}
	return setDuration(&o.ShutdownTimeout, f.ShutdownTimeout, "shutdown_timeout")
}

// Validate reports the first setting that prevents the server from starting.
func (o *Options) Validate() error {
	if o.DatabaseDSN == "" {
		return errors.New("database DSN is required (-d or DATABASE_DSN)")
	}
	if len(o.JWTSecret) < token.MinSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", token.MinSecretLen)
	}
	if o.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if o.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if (o.TLSCertFile == "") != (o.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return nil
}

// TLSEnabled reports whether the server should listen with HTTPS.
func (o *Options) TLSEnabled() bool {
	return o.TLSCertFile != "" && o.TLSKeyFile != ""
}

func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("config file %s: %w", name, err)
	}
	*dst = d
	return nil
}
