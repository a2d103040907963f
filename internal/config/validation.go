package config

import (
	"fmt"
	"strings"
)

// validate rejects malformed values. Missing paths are not errors here;
// they disable the matching feature at runtime.
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Bot.validate(); err != nil {
		return err
	}
	if err := c.Output.validate(); err != nil {
		return err
	}
	return c.Auth.validate()
}

func (a *AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level must be one of debug/info/warn/error, got %q", a.LogLevel)
	}
	if strings.TrimSpace(a.HTTPAddr) == "" {
		return fmt.Errorf("app.http_addr cannot be empty")
	}
	return nil
}

func (b *BotConfig) validate() error {
	if strings.TrimSpace(b.Sentinel) == "" {
		return fmt.Errorf("bot.sentinel cannot be empty")
	}
	return nil
}

func (o *OutputConfig) validate() error {
	switch o.ResolvedDriver() {
	case DriverCSV, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("output.driver only supports csv or sqlite, got %s", o.Driver)
	}
}

func (a *AuthConfig) validate() error {
	for user, pass := range a.Accounts {
		if strings.TrimSpace(user) == "" {
			return fmt.Errorf("auth.accounts contains an empty user name")
		}
		if pass == "" {
			return fmt.Errorf("auth.accounts.%s has an empty password", user)
		}
	}
	return nil
}
