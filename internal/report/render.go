package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ramsbaby/lessonledger/internal/engine"
	"github.com/ramsbaby/lessonledger/internal/fx"
	"github.com/ramsbaby/lessonledger/internal/model"
)

// Section headings, fixed strings the recipient's mail filters key on.
const (
	headingSummary   = "[Preply 오늘 수입 요약]"
	headingKRWTotal  = "[원화 환산 합계]"
	headingRates     = "[적용 환율]"
	headingDetail    = "[상세]"
	headingUnmatched = "[단가 미매칭]"

	emptyLine = "- 없음"
)

// Render builds the mail subject and plain-text body for one day's result.
// rates carries the FX snapshots used for the KRW conversion, keyed by
// currency code; KRW itself is never listed.
func Render(day time.Time, res model.Result, rates map[string]fx.Snapshot) (subject, body string) {
	subject = fmt.Sprintf("[Preply] 오늘 레슨 요약 (%s)", day.Format("2006-01-02"))

	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", headingSummary, day.Format("2006-01-02"))
	if len(res.Totals) == 0 {
		b.WriteString(emptyLine + "\n")
	}
	for _, t := range res.Totals {
		fmt.Fprintf(&b, "- %s %s\n", engine.FormatAmount(t.Amount, t.Currency), t.Currency)
	}

	b.WriteString("\n" + headingKRWTotal + "\n")
	printer := message.NewPrinter(language.Korean)
	fmt.Fprintf(&b, "- %s\n", printer.Sprintf("%d원", res.KRWTotal.IntPart()))

	b.WriteString("\n" + headingRates + "\n")
	var rateLines int
	for _, cur := range res.Currencies() {
		snap, ok := rates[cur]
		if !ok || strings.EqualFold(cur, "KRW") {
			continue
		}
		fmt.Fprintf(&b, "- %s→KRW %s (%s, %s 기준)\n",
			cur, snap.KRWPer.String(), snap.Source,
			snap.AsOf.In(day.Location()).Format("15:04"))
		rateLines++
	}
	if rateLines == 0 {
		b.WriteString(emptyLine + "\n")
	}

	b.WriteString("\n" + headingDetail + "\n")
	if len(res.Rows) == 0 {
		b.WriteString(emptyLine + "\n")
	}
	for _, row := range res.Rows {
		fmt.Fprintf(&b, "- %s: %s %s\n",
			row.Student,
			engine.FormatAmount(row.Money.Amount, row.Money.Currency),
			row.Money.Currency)
	}

	b.WriteString("\n" + headingUnmatched + "\n")
	if len(res.Unknown) == 0 {
		b.WriteString(emptyLine + "\n")
	} else {
		unknown := make([]string, len(res.Unknown))
		copy(unknown, res.Unknown)
		sort.Strings(unknown)
		for _, name := range unknown {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}

	return subject, b.String()
}
