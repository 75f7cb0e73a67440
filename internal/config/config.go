package config

import (
	"time"

	"exam-allocator/internal/allocator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the settings of the allocation server.
//
// Fields:
// - Env: The current environment (local, development, production).
// - Port: The port the HTTP server listens on.
// - SessionSecret: Key used to sign session cookies.
// - Auth: Optional login credentials; login is disabled when Username is empty.
// - UploadLimit: Maximum accepted upload size in bytes.
// - WorkspaceTTL: Idle time after which a workspace is dropped.
// - DefaultMode: Assignment mode for new workspaces.
// - Export: Labels written into exported files.
type Config struct {
	Env           string
	Port          int
	SessionSecret string
	Auth          AuthConfig
	UploadLimit   int64
	WorkspaceTTL  time.Duration
	DefaultMode   allocator.Mode
	Export        ExportConfig
}

type AuthConfig struct {
	Username string
	Password string
}

type ExportConfig struct {
	Sheet    string // Sheet name of the xlsx export.
	Title    string // Title printed on the pdf export.
	FontPath string // Optional UTF-8 TTF for the pdf export.
}

// MustLoad reads the configuration from the environment, after loading
// a .env file when one is present. Every key is prefixed with EXAMALLOC_.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EXAMALLOC")
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("port", 9595)
	v.SetDefault("session_secret", "")
	v.SetDefault("auth_username", "")
	v.SetDefault("auth_password", "")
	v.SetDefault("upload_limit", 10<<20)
	v.SetDefault("workspace_ttl", "2h")
	v.SetDefault("mode", string(allocator.ModeNearest))
	v.SetDefault("export_sheet", "Allocation")
	v.SetDefault("export_title", "Exam Center Allocation")
	v.SetDefault("pdf_font", "")

	port := v.GetInt("port")
	if port <= 0 {
		panic("failed to parse port from configuration")
	}

	uploadLimit := v.GetInt64("upload_limit")
	if uploadLimit <= 0 {
		panic("failed to parse upload limit from configuration, must be a positive number of bytes")
	}

	ttl := v.GetDuration("workspace_ttl")
	if ttl <= 0 {
		panic("failed to parse workspace ttl from configuration")
	}

	mode, err := allocator.ParseMode(v.GetString("mode"))
	if err != nil {
		panic("failed to parse assignment mode from configuration, must be nearest or round-robin")
	}

	secret := v.GetString("session_secret")
	if secret == "" {
		// Sessions will not survive a restart.
		secret = uuid.NewString()
	}

	return &Config{
		Env:           v.GetString("env"),
		Port:          port,
		SessionSecret: secret,
		Auth: AuthConfig{
			Username: v.GetString("auth_username"),
			Password: v.GetString("auth_password"),
		},
		UploadLimit:  uploadLimit,
		WorkspaceTTL: ttl,
		DefaultMode:  mode,
		Export: ExportConfig{
			Sheet:    v.GetString("export_sheet"),
			Title:    v.GetString("export_title"),
			FontPath: v.GetString("pdf_font"),
		},
	}
}

func (c *Config) AuthEnabled() bool {
	return c.Auth.Username != ""
}
