package extract

import "time"

// KST is the fixed reference zone for all extracted timestamps.
var KST = time.FixedZone("KST", 9*60*60)

// Message is the slice of a mail message the extractors need. Implementations
// resolve nested multipart structures themselves; the extractors only see the
// chosen body.
type Message interface {
	// Subject returns the message subject, or "".
	Subject() string

	// ReceivedAt returns the delivery time, if the source recorded one.
	ReceivedAt() (time.Time, bool)

	// HTML returns the first text/html body part, if any.
	HTML() (string, bool)

	// PlainText returns the first text/plain body part, if any.
	PlainText() (string, bool)
}
