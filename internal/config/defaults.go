package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultIMAPPort           = 993
	DefaultSMTPPort           = 465
	DefaultCalendarBaseURL    = "https://www.googleapis.com/calendar/v3"
	DefaultTimeZone           = "Asia/Seoul"
	DefaultLessonSuffix       = " - Preply lesson"
	DefaultLookBackDays       = 14
	DefaultFXTTL              = 30 * time.Minute
	DefaultFXConnectTimeout   = 5 * time.Second
	DefaultFXRequestTimeout   = 7 * time.Second
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 4
	DefaultMinConns           = 1
	DefaultServerPort         = 8080
	DefaultMetricsPath        = "/metrics"
	DefaultExtractConcurrency = 8
)

func (c *Config) applyDefaults() {
	// Mail defaults
	if c.Mail.IMAP.Port == 0 {
		c.Mail.IMAP.Port = DefaultIMAPPort
	}
	if c.Mail.SMTP.Port == 0 {
		c.Mail.SMTP.Port = DefaultSMTPPort
	}
	if c.Mail.SMTP.From == "" {
		c.Mail.SMTP.From = c.Mail.User
	}

	// Calendar defaults
	if c.Calendar.BaseURL == "" {
		c.Calendar.BaseURL = DefaultCalendarBaseURL
	}
	if c.Calendar.TimeZone == "" {
		c.Calendar.TimeZone = DefaultTimeZone
	}
	if c.Calendar.LessonSuffix == "" {
		c.Calendar.LessonSuffix = DefaultLessonSuffix
	}
	if c.Calendar.LookBackDays == 0 {
		c.Calendar.LookBackDays = DefaultLookBackDays
	}

	// FX defaults
	if c.FX.TTL == 0 {
		c.FX.TTL = DefaultFXTTL
	}
	if c.FX.ConnectTimeout == 0 {
		c.FX.ConnectTimeout = DefaultFXConnectTimeout
	}
	if c.FX.RequestTimeout == 0 {
		c.FX.RequestTimeout = DefaultFXRequestTimeout
	}

	// Database defaults (only meaningful when archiving is enabled)
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}

	// Run defaults
	if c.Run.ExtractConcurrency == 0 {
		c.Run.ExtractConcurrency = DefaultExtractConcurrency
	}
}
