package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. PRESENSI_HTTP_ADDR.
const EnvPrefix = "PRESENSI"

type Config struct {
	HTTPAddr string
	GRPCAddr string // empty disables the gRPC health listener

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/presensi.db"

	// Photo uploads
	UploadDir   string
	MaxUploadMB int

	// Bearer tokens
	JWTSecret string
	JWTIssuer string

	Timezone    string
	Location    *time.Location
	AdminRoles  []string
	RequestLogs bool
}

// Load resolves configuration from, in order of precedence: command-line
// flags, PRESENSI_* environment variables, an optional .env file and
// defaults.
func Load(args []string) (Config, error) {
	fs := pflag.NewFlagSet("presensi-server", pflag.ContinueOnError)
	envFile := fs.String("env-file", ".env", "dotenv file to load if present")
	fs.String("http-addr", ":3001", "HTTP listen address")
	fs.String("grpc-addr", "", "gRPC health listen address (empty disables)")
	fs.String("env", "dev", "dev or prod")
	fs.String("db-path", "./data/presensi.db", "SQLite database file")
	fs.String("upload-dir", "./uploads", "directory for check-in photos")
	fs.Int("max-upload-mb", 5, "largest accepted photo in MiB")
	fs.String("timezone", "Asia/Jakarta", "reference zone for reports and messages")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// load .env if it exists (ignore if it does not)
	if _, err := os.Stat(*envFile); err == nil {
		if err := godotenv.Load(*envFile); err != nil {
			return Config{}, errors.Wrapf(err, "load %s", *envFile)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, errors.Wrapf(err, "stat %s", *envFile)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "")
	v.SetDefault("admin_roles", "admin")
	v.SetDefault("request_logs", true)

	for key, flag := range map[string]string{
		"http_addr":     "http-addr",
		"grpc_addr":     "grpc-addr",
		"env":           "env",
		"db_path":       "db-path",
		"upload_dir":    "upload-dir",
		"max_upload_mb": "max-upload-mb",
		"timezone":      "timezone",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return Config{}, errors.Wrapf(err, "bind flag %s", flag)
		}
	}

	env := strings.ToLower(strings.TrimSpace(v.GetString("env")))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	cfg := Config{
		HTTPAddr:    v.GetString("http_addr"),
		GRPCAddr:    strings.TrimSpace(v.GetString("grpc_addr")),
		Env:         env,
		DBPath:      v.GetString("db_path"),
		UploadDir:   v.GetString("upload_dir"),
		MaxUploadMB: v.GetInt("max_upload_mb"),
		JWTSecret:   v.GetString("jwt_secret"),
		JWTIssuer:   v.GetString("jwt_issuer"),
		Timezone:    strings.TrimSpace(v.GetString("timezone")),
		AdminRoles:  splitCSV(v.GetString("admin_roles")),
		RequestLogs: v.GetBool("request_logs"),
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 5
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, errors.Wrapf(err, "timezone %q", cfg.Timezone)
	}
	cfg.Location = loc

	if cfg.JWTSecret == "" {
		if cfg.Env == "prod" {
			return Config{}, errors.New("PRESENSI_JWT_SECRET must be set in prod")
		}
		cfg.JWTSecret = "dev-secret"
	}

	return cfg, nil
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
