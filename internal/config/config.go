package config

import "time"

// Config is the root configuration for the summarizer.
type Config struct {
	Mail     MailConfig     `yaml:"mail"`
	Calendar CalendarConfig `yaml:"calendar"`
	FX       FXConfig       `yaml:"fx"`
	Database DBConfig       `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Run      RunConfig      `yaml:"run"`
}

// MailConfig holds the mailbox account plus both transports.
type MailConfig struct {
	User string     `yaml:"user"`
	Pass string     `yaml:"pass"`
	IMAP IMAPConfig `yaml:"imap"`
	SMTP SMTPConfig `yaml:"smtp"`
}

// IMAPConfig holds the inbound mailbox endpoint.
type IMAPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SMTPConfig holds the outbound report transport.
type SMTPConfig struct {
	Host string   `yaml:"host"`
	Port int      `yaml:"port"`
	From string   `yaml:"from"`
	To   []string `yaml:"to"`
}

// CalendarConfig holds the Google Calendar feed settings.
type CalendarConfig struct {
	BaseURL      string `yaml:"base_url"`
	CalendarID   string `yaml:"calendar_id"`
	APIKey       string `yaml:"api_key"`
	TimeZone     string `yaml:"time_zone"`
	LessonSuffix string `yaml:"lesson_suffix"`
	LookBackDays int    `yaml:"look_back_days"`
}

// FXConfig holds exchange-rate cache settings.
type FXConfig struct {
	TTL            time.Duration `yaml:"ttl"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DBConfig holds the optional run-history archive connection. An empty host
// disables archiving.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether the archive is configured at all.
func (db DBConfig) Enabled() bool { return db.Host != "" }

// ServerConfig holds the HTTP trigger endpoint settings.
type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPath string `yaml:"metrics_path"`
}

// RunConfig holds run-mode settings.
type RunConfig struct {
	Autorun            bool `yaml:"autorun"`
	ExtractConcurrency int  `yaml:"extract_concurrency"`
}
