package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/domain"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" default:"development"`
	Port     string `env:"PORT" default:"3000"`
	DataFile string `env:"DATA_FILE" default:"device.json"`

	// Accounts is the configured credential list as comma-separated
	// "username:password" pairs, e.g. "Mr1:7777,Mr2:8888". It is reconciled
	// into the store at startup: missing accounts are inserted, existing
	// passwords refreshed, session and ownership fields never touched.
	Accounts string `env:"ACCOUNTS"`

	LoginRedirectURL string `env:"LOGIN_REDIRECT_URL"`
	DeclineMessage   string `env:"DECLINE_MESSAGE" default:"Sorry! Admin did not approve your login."`

	// LogoutReleasesOwnership controls whether logout clears the device
	// binding entirely (true: the next login from any device is auto-granted)
	// or only drops the session token (false: a different device still has to
	// go through the approval flow).
	LogoutReleasesOwnership bool `env:"LOGOUT_RELEASES_OWNERSHIP" default:"true"`

	SweepInterval       time.Duration `env:"SWEEP_INTERVAL" default:"60s"`
	InactivityThreshold time.Duration `env:"INACTIVITY_THRESHOLD" default:"30m"`
	HeartbeatDebounce   time.Duration `env:"HEARTBEAT_DEBOUNCE" default:"10s"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Accounts == "" {
		return fmt.Errorf("ACCOUNTS is required")
	}
	if _, err := ParseAccounts(cfg.Accounts); err != nil {
		return fmt.Errorf("ACCOUNTS is malformed: %w", err)
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	if cfg.InactivityThreshold <= 0 {
		return fmt.Errorf("INACTIVITY_THRESHOLD must be positive")
	}
	if cfg.HeartbeatDebounce < 0 {
		return fmt.Errorf("HEARTBEAT_DEBOUNCE must not be negative")
	}
	return nil
}

// Credentials parses the configured account list. Call after Load has
// validated it; a malformed list only errors there.
func (c *Config) Credentials() []domain.Credential {
	creds, _ := ParseAccounts(c.Accounts)
	return creds
}

// ParseAccounts splits comma-separated "username:password" pairs. Usernames
// must be unique and neither side may be empty.
func ParseAccounts(raw string) ([]domain.Credential, error) {
	seen := make(map[string]struct{})
	var creds []domain.Credential
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		username, password, ok := strings.Cut(pair, ":")
		if !ok || username == "" || password == "" {
			return nil, fmt.Errorf("entry %q is not username:password", pair)
		}
		if _, dup := seen[username]; dup {
			return nil, fmt.Errorf("duplicate username %q", username)
		}
		seen[username] = struct{}{}
		creds = append(creds, domain.Credential{Username: username, Password: password})
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("no accounts configured")
	}
	return creds, nil
}
