package extract

import (
	"time"

	"github.com/ramsbaby/lessonledger/internal/model"
)

// Rate parses a single priced-booking message into a RateEntry. ok is false
// on any parse miss; nothing here returns an error.
func Rate(msg Message) (model.RateEntry, bool) {
	body := bodyText(msg)
	if body == "" {
		return model.RateEntry{}, false
	}

	student, ok := matchFirst(body, bookingStudentPatterns)
	if !ok {
		return model.RateEntry{}, false
	}

	num, curTok, ok := findPrice(body)
	if !ok {
		return model.RateEntry{}, false
	}
	amount, ok := parseAmount(num)
	if !ok {
		return model.RateEntry{}, false
	}

	return model.RateEntry{
		Student:    student,
		Money:      model.NewMoney(amount, canonicalCurrency(curTok)),
		ReceivedAt: receivedAt(msg),
	}, true
}

// receivedAt resolves the message delivery time in KST, defaulting to now.
func receivedAt(msg Message) time.Time {
	if at, ok := msg.ReceivedAt(); ok {
		return at.In(KST)
	}
	return time.Now().In(KST)
}
