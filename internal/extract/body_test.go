package extract

import (
	"strings"
	"testing"
)

func TestBodyText_FlattensHTML(t *testing.T) {
	msg := &testMessage{
		html: `<html><body><table><tr><td>학생:</td><td>민지</td></tr>` +
			`<tr><td>비용:</td><td>20.00&nbsp;$</td></tr></table></body></html>`,
	}
	got := bodyText(msg)
	if !strings.Contains(got, "학생: 민지") {
		t.Errorf("bodyText = %q, want it to contain %q", got, "학생: 민지")
	}
	if !strings.Contains(got, "비용: 20.00 $") {
		t.Errorf("bodyText = %q, want it to contain %q", got, "비용: 20.00 $")
	}
}

func TestBodyText_SkipsScriptAndStyle(t *testing.T) {
	msg := &testMessage{
		html: `<style>.x{color:red}</style><script>var y = 1;</script><p>visible</p>`,
	}
	got := bodyText(msg)
	if got != "visible" {
		t.Errorf("bodyText = %q, want %q", got, "visible")
	}
}

func TestBodyText_FallsBackToPlain(t *testing.T) {
	msg := &testMessage{plain: "Student: Alex\nPrice: 15 USD"}
	got := bodyText(msg)
	if got != "Student: Alex Price: 15 USD" {
		t.Errorf("bodyText = %q", got)
	}
}

func TestBodyText_EmptyMessage(t *testing.T) {
	if got := bodyText(&testMessage{}); got != "" {
		t.Errorf("bodyText = %q, want empty", got)
	}
}

func TestFlattenHTML_EntitiesDecoded(t *testing.T) {
	got := flattenHTML("<p>Price:&nbsp;20&#36;</p>")
	if !strings.Contains(got, "20$") {
		t.Errorf("flattenHTML = %q, want it to contain %q", got, "20$")
	}
}
