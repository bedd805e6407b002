package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validatePrinter(); err != nil {
		return err
	}
	if err := c.validateNotify(); err != nil {
		return err
	}
	if err := c.validateAgent(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSource() error {
	if c.Source.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/labelspool/config.toml"
		}
		return fmt.Errorf("source.token is required. Edit %s (create with 'labelspool config init')", defaultPath)
	}
	if c.Source.BaseURL == "" {
		return errors.New("source.base_url must be set")
	}
	if c.Source.StatusID <= 0 {
		return errors.New("source.status_id must be a positive status identifier")
	}
	return nil
}

func (c *Config) validatePrinter() error {
	if c.Printer.Name == "" {
		return errors.New("printer.name must be set")
	}
	return nil
}

func (c *Config) validateNotify() error {
	if c.Notify.WebhookURL == "" {
		// Notifications disabled; remaining fields are ignored.
		return nil
	}
	if c.Notify.Token == "" {
		return errors.New("notify.token must be set when notify.webhook_url is configured")
	}
	if c.Notify.RecipientID == "" {
		return errors.New("notify.recipient_id must be set when notify.webhook_url is configured")
	}
	return nil
}

func (c *Config) validateAgent() error {
	if c.Agent.PollInterval <= 0 {
		return errors.New("agent.poll_interval must be a positive number of seconds")
	}
	if c.Agent.QuietHoursStart < 0 || c.Agent.QuietHoursStart > 23 {
		return errors.New("agent.quiet_hours_start must be an hour between 0 and 23")
	}
	if c.Agent.QuietHoursEnd < 0 || c.Agent.QuietHoursEnd > 23 {
		return errors.New("agent.quiet_hours_end must be an hour between 0 and 23")
	}
	if c.Agent.ExpiryDays <= 0 {
		return errors.New("agent.expiry_days must be a positive number of days")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
