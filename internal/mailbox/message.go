package mailbox

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-message/mail"
)

// fetchedMessage is a fully materialized mail message. It satisfies
// extract.Message; the MIME tree is walked once at parse time.
type fetchedMessage struct {
	subject    string
	receivedAt time.Time
	hasTime    bool
	html       string
	plain      string
}

func (m *fetchedMessage) Subject() string { return m.subject }

func (m *fetchedMessage) ReceivedAt() (time.Time, bool) {
	return m.receivedAt, m.hasTime
}

func (m *fetchedMessage) HTML() (string, bool) {
	return m.html, m.html != ""
}

func (m *fetchedMessage) PlainText() (string, bool) {
	return m.plain, m.plain != ""
}

// parseFetched turns one fetched IMAP message into a fetchedMessage, keeping
// the first text/html and first text/plain parts it finds.
func parseFetched(raw *imap.Message, section *imap.BodySectionName) (*fetchedMessage, error) {
	body := raw.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("message %d has no body section", raw.SeqNum)
	}

	mr, err := mail.CreateReader(body)
	if err != nil {
		return nil, fmt.Errorf("read message %d: %w", raw.SeqNum, err)
	}

	msg := &fetchedMessage{}
	if !raw.InternalDate.IsZero() {
		msg.receivedAt = raw.InternalDate
		msg.hasTime = true
	}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.subject = subject
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("walk message %d: %w", raw.SeqNum, err)
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil {
			continue
		}

		switch {
		case strings.EqualFold(contentType, "text/html") && msg.html == "":
			data, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("read html part: %w", err)
			}
			msg.html = string(data)
		case strings.EqualFold(contentType, "text/plain") && msg.plain == "":
			data, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("read plain part: %w", err)
			}
			msg.plain = string(data)
		}
	}

	return msg, nil
}
