package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Constants
const (
	DefaultConfigFile   = "config.toml"
	DefaultSnapshotFile = "workshops_snapshot.json"
	DefaultAuthFile     = "auth.secret"
	BackupDir           = "backup"
	BackupSuffix        = ".backup"
	TmpSuffix           = ".tmp.json"
	FilePermissions     = 0644

	DefaultPort           = 8080
	DefaultDataset        = "production"
	DefaultAPIVersion     = "2024-01-01"
	DefaultCacheTTL       = 5 * time.Minute
	DefaultSiteTitle      = "Web Impact Workshops"
	DefaultSiteHomepage   = "https://webimpactuw.org/"
	DefaultRequestTimeout = 15 * time.Second

	// Error messages
	ErrInvalidQuarter   = "Invalid quarter"
	ErrInvalidYear      = "Invalid year"
	ErrInvalidFormat    = "Invalid format"
	ErrInternalServer   = "Internal server error"
	ErrContentFetch     = "Failed to load workshops"
	ErrNoQuarters       = "No quarters available"
	ErrFailedToGenerate = "Failed to generate export"

	// Metadata
	MetadataSourceSanity   = "sanity"
	MetadataSourceSnapshot = "snapshot"

	// Mode strings
	ModeOnline  = "online"
	ModeOffline = "offline"

	// ICS constants
	ICSProductID = "-//Web Impact//Workshop Calendar//EN"
	ICSTimezone  = "America/Los_Angeles"
	ICSUIDDomain = "workshops.webimpactuw.org"

	// Theme cookie
	ThemeCookie = "theme"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// DefaultSocialLinks are shown in the page header when the config lists none
var DefaultSocialLinks = []SocialLink{
	{Name: "Discord", Icon: "/static/discord.svg", Href: "https://discord.gg/GqfcCyvWxU"},
	{Name: "Instagram", Icon: "/static/instagram.svg", Href: "https://www.instagram.com/webimpactuw/"},
	{Name: "GitHub", Icon: "/static/github.svg", Href: "https://www.github.com/webimpactuw/"},
	{Name: "LinkedIn", Icon: "/static/linkedin.svg", Href: "https://www.linkedin.com/company/webimpact-uw/"},
}

// Config holds the runtime settings of the calendar service.
type Config struct {
	Port          int           `toml:"port"`
	SiteTitle     string        `toml:"site_title"`
	SiteHomepage  string        `toml:"site_homepage"`
	ProjectID     string        `toml:"sanity_project_id"`
	Dataset       string        `toml:"sanity_dataset"`
	APIVersion    string        `toml:"sanity_api_version"`
	Token         string        `toml:"sanity_token"`
	CacheTTL      time.Duration `toml:"-"`
	AuthFile      string        `toml:"auth_file"`
	SnapshotFile  string        `toml:"snapshot_file"`
	CSRFKey       string        `toml:"csrf_key"`
	SecureCookies bool          `toml:"secure_cookies"`
	SocialLinks   []SocialLink  `toml:"social_links"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	cfg := Config{
		Port:         DefaultPort,
		SiteTitle:    DefaultSiteTitle,
		SiteHomepage: DefaultSiteHomepage,
		Dataset:      DefaultDataset,
		APIVersion:   DefaultAPIVersion,
		CacheTTL:     DefaultCacheTTL,
		AuthFile:     DefaultAuthFile,
		SnapshotFile: DefaultSnapshotFile,
		SocialLinks:  DefaultSocialLinks,
	}
	if cwd, err := os.Getwd(); err == nil {
		cfg.AuthFile = filepath.Join(cwd, DefaultAuthFile)
		cfg.SnapshotFile = filepath.Join(cwd, DefaultSnapshotFile)
	}
	return cfg
}

// LoadConfig builds the configuration from defaults, the optional TOML file at
// path and environment variables (a .env file in the working directory is
// loaded first). Environment variables win over the file.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		// array tables append to a non-empty slice
		cfg.SocialLinks = nil
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		var raw struct {
			CacheTTL string `toml:"cache_ttl"`
		}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if raw.CacheTTL != "" {
			ttl, err := time.ParseDuration(raw.CacheTTL)
			if err != nil {
				return Config{}, fmt.Errorf("parse cache_ttl: %w", err)
			}
			cfg.CacheTTL = ttl
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if len(cfg.SocialLinks) == 0 {
		cfg.SocialLinks = DefaultSocialLinks
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("SANITY_PROJECT_ID"); v != "" {
		cfg.ProjectID = v
	}
	if v := os.Getenv("SANITY_DATASET"); v != "" {
		cfg.Dataset = v
	}
	if v := os.Getenv("SANITY_API_VERSION"); v != "" {
		cfg.APIVersion = strings.TrimPrefix(v, "v")
	}
	if v := os.Getenv("SANITY_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("AUTH_FILE"); v != "" {
		cfg.AuthFile = v
	}
	if v := os.Getenv("SNAPSHOT_FILE"); v != "" {
		cfg.SnapshotFile = v
	}
	if v := os.Getenv("CSRF_KEY"); v != "" {
		cfg.CSRFKey = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL %q: %w", v, err)
		}
		cfg.CacheTTL = ttl
	}
	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SECURE_COOKIES %q: %w", v, err)
		}
		cfg.SecureCookies = secure
	}
	return nil
}
