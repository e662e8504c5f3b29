package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Mail.User == "" {
		return errors.New("mail.user is required")
	}
	if c.Mail.Pass == "" {
		return errors.New("mail.pass is required")
	}
	if c.Mail.IMAP.Host == "" {
		return errors.New("mail.imap.host is required")
	}
	if c.Mail.SMTP.Host == "" {
		return errors.New("mail.smtp.host is required")
	}
	if c.Mail.SMTP.From == "" {
		return errors.New("mail.smtp.from is required")
	}

	if c.Calendar.CalendarID == "" {
		return errors.New("calendar.calendar_id is required")
	}
	if c.Calendar.APIKey == "" {
		return errors.New("calendar.api_key is required")
	}
	if _, err := time.LoadLocation(c.Calendar.TimeZone); err != nil {
		return fmt.Errorf("calendar.time_zone %q is invalid: %w", c.Calendar.TimeZone, err)
	}
	if c.Calendar.LookBackDays < 1 {
		return errors.New("calendar.look_back_days must be >= 1")
	}

	if c.FX.TTL < 0 {
		return errors.New("fx.ttl must be >= 0")
	}

	if c.Database.Enabled() {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Run.ExtractConcurrency < 1 {
		return errors.New("run.extract_concurrency must be >= 1")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
