// Load envs from .env
// Load YAML config
// Apply env overrides and defaults
// Validate config

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

const (
	EnginePlaywright = "playwright"
	EngineChromedp   = "chromedp"
)

type Config struct {
	Browser  Browser  `yaml:"browser"`
	Search   Search   `yaml:"search"`
	Snapshot Snapshot `yaml:"snapshot"`
	Report   Report   `yaml:"report"`
	Telegram Telegram `yaml:"telegram"`
	Server   Server   `yaml:"server"`
}

// Browser is passed to the browser package when a session is launched.
type Browser struct {
	Engine            string        `yaml:"engine"`
	Headless          bool          `yaml:"headless"`
	BinaryPath        string        `yaml:"binary_path"`
	Container         bool          `yaml:"container"`
	WindowWidth       int           `yaml:"window_width"`
	WindowHeight      int           `yaml:"window_height"`
	UserAgent         string        `yaml:"user_agent"`
	ExtraArgs         []string      `yaml:"extra_args"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	CookiesFile       string        `yaml:"cookies_file"`
	DebugDir          string        `yaml:"debug_dir"`
}

type Search struct {
	BaseURL     string        `yaml:"base_url"`
	MaxScrolls  int           `yaml:"max_scrolls"`
	ScrollPause time.Duration `yaml:"scroll_pause"`
	CardWait    time.Duration `yaml:"card_wait"`
	MinInterval time.Duration `yaml:"min_interval"`
	MaxCards    int           `yaml:"max_cards"`
}

type Snapshot struct {
	Dir     string        `yaml:"dir"`
	TTL     time.Duration `yaml:"ttl"`
	Offline bool          `yaml:"offline"`
}

type Report struct {
	TopCompanies int    `yaml:"top_companies"`
	OutputDir    string `yaml:"output_dir"`
}

type Telegram struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
	// MaxPostings caps how many postings one notification run sends.
	MaxPostings int `yaml:"max_postings"`
	// CacheDir holds the links already sent, so reruns only notify new postings.
	CacheDir string `yaml:"cache_dir"`
}

// Enabled reports whether both credentials are present.
func (t Telegram) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

type Server struct {
	Port string `yaml:"port"`
}

// Load reads .env, the YAML file at path (DefaultPath when empty, or
// EASYHUNT_CONFIG), applies environment overrides and defaults and validates
// the result. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("EASYHUNT_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{Browser: Browser{Headless: true}}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		log.Printf("ℹ️ No config file at %s, using defaults", path)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		c.Telegram.Token = token
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}

	if engine := os.Getenv("BROWSER_ENGINE"); engine != "" {
		c.Browser.Engine = engine
	}

	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		c.Browser.BinaryPath = bin
	}

	if headless := os.Getenv("HEADLESS"); headless != "" {
		v, err := strconv.ParseBool(headless)
		if err != nil {
			return fmt.Errorf("invalid HEADLESS: %w", err)
		}
		c.Browser.Headless = v
	}

	// a PORT variable means we are running inside a hosted container
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
		c.Browser.Container = true
		c.Browser.Headless = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.Browser.Engine = strings.ToLower(strings.TrimSpace(c.Browser.Engine))
	if c.Browser.Engine == "" {
		c.Browser.Engine = EnginePlaywright
	}
	if c.Browser.WindowWidth == 0 {
		c.Browser.WindowWidth = 1920
	}
	if c.Browser.WindowHeight == 0 {
		c.Browser.WindowHeight = 1080
	}
	if c.Browser.NavigationTimeout == 0 {
		c.Browser.NavigationTimeout = 30 * time.Second
	}

	if c.Search.BaseURL == "" {
		c.Search.BaseURL = "https://www.linkedin.com/jobs/search/"
	}
	if c.Search.MaxScrolls == 0 {
		c.Search.MaxScrolls = 5
	}
	if c.Search.ScrollPause == 0 {
		c.Search.ScrollPause = 2 * time.Second
	}
	if c.Search.CardWait == 0 {
		c.Search.CardWait = 20 * time.Second
	}
	if c.Search.MinInterval == 0 {
		c.Search.MinInterval = 3 * time.Second
	}

	if c.Snapshot.TTL == 0 {
		c.Snapshot.TTL = 24 * time.Hour
	}

	if c.Report.TopCompanies == 0 {
		c.Report.TopCompanies = 20
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "logs"
	}

	if c.Telegram.MaxPostings == 0 {
		c.Telegram.MaxPostings = 10
	}
	if c.Telegram.CacheDir == "" {
		c.Telegram.CacheDir = ".cache"
	}

	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
}

// Validate checks value ranges. Missing Telegram credentials only disable the
// notifier.
func (c *Config) Validate() error {
	switch c.Browser.Engine {
	case EnginePlaywright, EngineChromedp:
	default:
		return fmt.Errorf("config error: unknown browser engine %q", c.Browser.Engine)
	}
	if c.Search.MaxScrolls < 0 {
		return fmt.Errorf("config error: search.max_scrolls must be non-negative")
	}
	if c.Search.MaxCards < 0 {
		return fmt.Errorf("config error: search.max_cards must be non-negative")
	}
	if c.Report.TopCompanies < 0 {
		return fmt.Errorf("config error: report.top_companies must be non-negative")
	}
	if c.Snapshot.Offline && c.Snapshot.Dir == "" {
		return fmt.Errorf("config error: snapshot.offline requires snapshot.dir")
	}
	return nil
}
