package job

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ramsbaby/lessonledger/internal/extract"
	"github.com/ramsbaby/lessonledger/internal/fx"
	"github.com/ramsbaby/lessonledger/internal/model"
)

var runDay = time.Date(2026, 8, 30, 12, 0, 0, 0, extract.KST)

type fakeMsg struct {
	subject string
	plain   string
}

func (m fakeMsg) Subject() string               { return m.subject }
func (m fakeMsg) ReceivedAt() (time.Time, bool) { return time.Time{}, false }
func (m fakeMsg) HTML() (string, bool)          { return "", false }
func (m fakeMsg) PlainText() (string, bool)     { return m.plain, m.plain != "" }

type fakeMail struct {
	bookings   []extract.Message
	bookingErr error
	cancels    []extract.Message
	cancelErr  error
}

func (f *fakeMail) Bookings(ctx context.Context, since time.Time) ([]extract.Message, error) {
	return f.bookings, f.bookingErr
}

func (f *fakeMail) Cancellations(ctx context.Context, day time.Time) ([]extract.Message, error) {
	return f.cancels, f.cancelErr
}

type fakeCalendar struct {
	events []model.LessonEvent
	err    error
}

func (f *fakeCalendar) TodayLessons(ctx context.Context, day time.Time, tz *time.Location, suffix string) ([]model.LessonEvent, error) {
	return f.events, f.err
}

type fakeRates struct {
	krwPer map[string]string
}

func (f *fakeRates) KRWPer(ctx context.Context, currency string) (decimal.Decimal, error) {
	if currency == "KRW" {
		return decimal.NewFromInt(1), nil
	}
	v, ok := f.krwPer[currency]
	if !ok {
		return decimal.Decimal{}, &fx.RateUnavailableError{Currency: currency}
	}
	return decimal.RequireFromString(v), nil
}

func (f *fakeRates) Snapshot(ctx context.Context, currency string) (fx.Snapshot, error) {
	rate, err := f.KRWPer(ctx, currency)
	if err != nil {
		return fx.Snapshot{}, err
	}
	return fx.Snapshot{KRWPer: rate, AsOf: runDay, Source: "test"}, nil
}

type fakeSink struct {
	subject string
	body    string
	sent    int
}

func (f *fakeSink) Send(ctx context.Context, subject, body string) error {
	f.subject = subject
	f.body = body
	f.sent++
	return nil
}

type fakeArchive struct {
	saved int
	res   model.Result
}

func (f *fakeArchive) SaveRun(ctx context.Context, runID uuid.UUID, ranAt time.Time, res model.Result) error {
	f.saved++
	f.res = res
	return nil
}

func newTestJob(mail *fakeMail, cal *fakeCalendar, sink *fakeSink, archive RunArchive) *Job {
	return New(Params{
		Mail:         mail,
		Calendar:     cal,
		FX:           &fakeRates{krwPer: map[string]string{"USD": "1350"}},
		Sink:         sink,
		Archive:      archive,
		TimeZone:     extract.KST,
		LessonSuffix: " - Preply lesson",
		LookBackDays: 14,
		Concurrency:  4,
	}, WithClock(func() time.Time { return runDay }))
}

func lessons(names ...string) []model.LessonEvent {
	out := make([]model.LessonEvent, 0, len(names))
	for i, name := range names {
		out = append(out, model.LessonEvent{
			Student: name,
			StartAt: runDay.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

func TestJob_Run(t *testing.T) {
	mail := &fakeMail{
		bookings: []extract.Message{
			fakeMsg{subject: "Camila has scheduled a new lesson", plain: "학생: Camila 비용: $20.00"},
			fakeMsg{subject: "민지 님이 레슨을 예약했어요", plain: "학생: 민지 비용: ₩ 30,000"},
		},
		cancels: []extract.Message{
			fakeMsg{
				subject: "Leo 학생이 수업을 취소했습니다",
				plain:   "수업 시작 12시간 이내에 취소했습니다. 학생: Leo 레슨: 8월 30일 18:00 취소 보상이 지급되었습니다: $20",
			},
		},
	}
	sink := &fakeSink{}
	archive := &fakeArchive{}

	j := newTestJob(mail, &fakeCalendar{events: lessons("camila", "민지", "noah")}, sink, archive)

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if sink.sent != 1 {
		t.Fatalf("sent = %d, want 1", sink.sent)
	}

	if sink.subject != "[Preply] 오늘 레슨 요약 (2026-08-30)" {
		t.Errorf("subject = %q", sink.subject)
	}
	for _, line := range []string{
		"- camila: 16.4 USD",
		"- 민지: 24600 KRW",
		"- leo: 16.4 USD",
		"- 68,880원",
		"- noah",
	} {
		if !strings.Contains(sink.body, line) {
			t.Errorf("body missing %q\nbody:\n%s", line, sink.body)
		}
	}

	if archive.saved != 1 {
		t.Fatalf("archive.saved = %d, want 1", archive.saved)
	}
	if len(archive.res.Rows) != 3 {
		t.Errorf("archived rows = %d, want 3", len(archive.res.Rows))
	}
}

func TestJob_Run_CancellationFailureDegrades(t *testing.T) {
	mail := &fakeMail{
		bookings: []extract.Message{
			fakeMsg{plain: "학생: Camila 비용: $20.00"},
		},
		cancelErr: errors.New("imap search timed out"),
	}
	sink := &fakeSink{}

	j := newTestJob(mail, &fakeCalendar{events: lessons("camila")}, sink, nil)

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if sink.sent != 1 {
		t.Fatalf("sent = %d, want 1", sink.sent)
	}
	if !strings.Contains(sink.body, "- camila: 16.4 USD") {
		t.Errorf("body missing booked row:\n%s", sink.body)
	}
	if strings.Contains(sink.body, "leo") {
		t.Errorf("body has compensation row it should not:\n%s", sink.body)
	}
}

func TestJob_Run_BookingFailureFatal(t *testing.T) {
	mail := &fakeMail{bookingErr: errors.New("imap: connection refused")}
	sink := &fakeSink{}

	j := newTestJob(mail, &fakeCalendar{}, sink, nil)

	if err := j.Run(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if sink.sent != 0 {
		t.Errorf("sent = %d, want 0", sink.sent)
	}
}

func TestJob_Run_CompensationNeverOverridesLesson(t *testing.T) {
	mail := &fakeMail{
		bookings: []extract.Message{
			fakeMsg{plain: "학생: Leo 비용: $25.00"},
		},
		cancels: []extract.Message{
			fakeMsg{
				plain: "수업 시작 12시간 이내에 취소했습니다. 학생: Leo 레슨: 8월 30일 취소 보상이 지급되었습니다: $10",
			},
		},
	}
	sink := &fakeSink{}

	j := newTestJob(mail, &fakeCalendar{events: lessons("leo")}, sink, nil)

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !strings.Contains(sink.body, "- leo: 20.5 USD") {
		t.Errorf("body missing booked rate row:\n%s", sink.body)
	}
	if strings.Contains(sink.body, "8.2") {
		t.Errorf("compensation amount leaked into body:\n%s", sink.body)
	}
}
