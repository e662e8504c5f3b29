package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ramsbaby/lessonledger/internal/model"
)

// Marker substrings a compensable cancellation mail must carry. Both come
// from the Korean notification template.
const (
	cancelledWithin12hMarker = "12시간 이내에 취소"
	compensationPaidMarker   = "보상이 지급"
)

var (
	lessonDateRe  = regexp.MustCompile(`레슨\s*[:：]\s*(\d{1,2})월\s*(\d{1,2})일`)
	subjectNameRe = regexp.MustCompile(`^\s*(.+?)\s*학생이 수업을 취소했습니다`)
)

// Compensation parses a cancellation message into a same-day payable entry.
// Beyond the shared text handling it gates on the cancellation/compensation
// marker phrases and on the lesson date resolving to today; anything else is
// a miss. today decides the year for the month/day marker and the comparison
// date, both in KST.
func Compensation(msg Message, today time.Time) (model.RateEntry, bool) {
	body := bodyText(msg)
	if body == "" {
		return model.RateEntry{}, false
	}

	if !strings.Contains(body, cancelledWithin12hMarker) ||
		!strings.Contains(body, compensationPaidMarker) {
		return model.RateEntry{}, false
	}

	lessonDay, ok := lessonDate(body, today)
	if !ok || !sameDay(lessonDay, today.In(KST)) {
		return model.RateEntry{}, false
	}

	student, ok := matchFirst(body, cancellationStudentPatterns)
	if !ok {
		student, ok = subjectName(msg.Subject())
		if !ok {
			return model.RateEntry{}, false
		}
	}

	num, curTok, ok := cancellationPrice(body)
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

// cancellationPrice tries a bare $amount first, then amount followed by a
// code or symbol.
func cancellationPrice(s string) (num, currency string, ok bool) {
	if m := dollarAmountRe.FindStringSubmatch(s); m != nil {
		return m[1], "$", true
	}
	if m := amountAnyMarkerRe.FindStringSubmatch(s); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

// lessonDate resolves the "레슨: {m}월 {d}일" marker against today's year.
func lessonDate(body string, today time.Time) (time.Time, bool) {
	m := lessonDateRe.FindStringSubmatch(body)
	if m == nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(m[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(today.In(KST).Year(), time.Month(month), day, 0, 0, 0, 0, KST), true
}

// subjectName extracts the leading name fragment from subjects of the form
// "{name} 학생이 수업을 취소했습니다".
func subjectName(subject string) (string, bool) {
	m := subjectNameRe.FindStringSubmatch(subject)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// sameDay reports whether two instants fall on the same calendar day in
// their respective zones (both are expected in KST already).
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
