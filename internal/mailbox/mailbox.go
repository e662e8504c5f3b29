package mailbox

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	_ "github.com/emersion/go-message/charset"

	"github.com/ramsbaby/lessonledger/internal/extract"
)

const (
	defaultFolder  = "INBOX"
	defaultTimeout = 30 * time.Second

	// senderDomain restricts the server-side search to platform mail.
	senderDomain = "preply.com"
)

// Subject markers used to classify fetched mail. The server-side search only
// narrows by sender and date; classification happens here where the subjects
// are already MIME-decoded.
var (
	bookingMarkers = []string{
		"예약했어요",
		"scheduled a new lesson",
	}
	cancellationMarkers = []string{
		"수업을 취소했습니다",
		"cancelled the lesson",
	}
)

// Batch is one mailbox sweep, split by message kind.
type Batch struct {
	Bookings      []extract.Message
	Cancellations []extract.Message
}

// Source fetches platform mail from a single IMAP account.
type Source struct {
	addr    string
	user    string
	pass    string
	folder  string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithFolder selects a folder other than INBOX.
func WithFolder(name string) Option {
	return func(s *Source) {
		s.folder = name
	}
}

// WithTimeout sets the per-command IMAP timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) {
		s.timeout = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource creates a Source for addr ("host:port", implicit TLS).
func NewSource(addr, user, pass string, opts ...Option) *Source {
	s := &Source{
		addr:    addr,
		user:    user,
		pass:    pass,
		folder:  defaultFolder,
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch sweeps the folder once and returns platform mail received since the
// given time, classified by subject. Mail that matches neither marker set is
// dropped.
func (s *Source) Fetch(ctx context.Context, since time.Time) (Batch, error) {
	var batch Batch

	c, err := client.DialTLS(s.addr, nil)
	if err != nil {
		return batch, fmt.Errorf("dial imap %s: %w", s.addr, err)
	}
	c.Timeout = s.timeout
	defer c.Logout()

	if err := c.Login(s.user, s.pass); err != nil {
		return batch, fmt.Errorf("imap login: %w", err)
	}

	if _, err := c.Select(s.folder, true); err != nil {
		return batch, fmt.Errorf("select %s: %w", s.folder, err)
	}

	if err := ctx.Err(); err != nil {
		return batch, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = since
	criteria.Header.Add("From", senderDomain)

	ids, err := c.Search(criteria)
	if err != nil {
		return batch, fmt.Errorf("imap search: %w", err)
	}
	if len(ids) == 0 {
		s.logger.Debug("no platform mail in window", "since", since)
		return batch, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchInternalDate, section.FetchItem()}

	ch := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, ch)
	}()

	var parsed, skipped int
	for raw := range ch {
		msg, err := parseFetched(raw, section)
		if err != nil {
			skipped++
			s.logger.Warn("skipping unparseable message", "err", err)
			continue
		}
		parsed++

		switch {
		case subjectMatches(msg.subject, bookingMarkers):
			batch.Bookings = append(batch.Bookings, msg)
		case subjectMatches(msg.subject, cancellationMarkers):
			batch.Cancellations = append(batch.Cancellations, msg)
		}
	}

	if err := <-done; err != nil {
		return batch, fmt.Errorf("imap fetch: %w", err)
	}

	s.logger.Info("mailbox sweep complete",
		"searched", len(ids),
		"parsed", parsed,
		"skipped", skipped,
		"bookings", len(batch.Bookings),
		"cancellations", len(batch.Cancellations),
	)
	return batch, nil
}

// Bookings sweeps for booking mail received since the given time.
func (s *Source) Bookings(ctx context.Context, since time.Time) ([]extract.Message, error) {
	batch, err := s.Fetch(ctx, since)
	if err != nil {
		return nil, err
	}
	return batch.Bookings, nil
}

// Cancellations sweeps for cancellation mail received on the given day.
func (s *Source) Cancellations(ctx context.Context, day time.Time) ([]extract.Message, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	batch, err := s.Fetch(ctx, dayStart)
	if err != nil {
		return nil, err
	}
	return batch.Cancellations, nil
}

func subjectMatches(subject string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(subject, m) {
			return true
		}
	}
	return false
}
