package wsbu_test

import (
	"strings"
	"testing"

	"wsbu-go/internal/wsbu"
)

func TestReport(t *testing.T) {
	t.Run("entries keep insertion order", func(t *testing.T) {
		r := wsbu.NewReport()
		r.Infof("step %d", 1)
		r.Warnf("something odd")
		r.Errorf("gave up")

		entries := r.Entries()
		if len(entries) != 3 {
			t.Fatalf("entries = %d, want 3", len(entries))
		}
		want := []wsbu.Entry{
			{Severity: wsbu.SeverityInfo, Message: "step 1"},
			{Severity: wsbu.SeverityWarn, Message: "something odd"},
			{Severity: wsbu.SeverityError, Message: "gave up"},
		}
		for i, e := range entries {
			if e != want[i] {
				t.Errorf("entry %d = %+v, want %+v", i, e, want[i])
			}
		}
		if r.Warnings() != 1 {
			t.Errorf("Warnings() = %d, want 1", r.Warnings())
		}
	})

	t.Run("String renders one message per line", func(t *testing.T) {
		r := wsbu.NewReport()
		r.Infof("first")
		r.Warnf("second")

		if got := r.String(); got != "first\nsecond\n" {
			t.Errorf("String() = %q", got)
		}
	})

	t.Run("empty report", func(t *testing.T) {
		r := wsbu.NewReport()
		if len(r.Entries()) != 0 || r.Warnings() != 0 || r.String() != "" {
			t.Errorf("empty report not empty: %q", r.String())
		}
	})
}

func TestSeverityString(t *testing.T) {
	cases := map[wsbu.Severity]string{
		wsbu.SeverityInfo:  "info",
		wsbu.SeverityWarn:  "warn",
		wsbu.SeverityError: "error",
	}
	for sev, want := range cases {
		if got := sev.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(sev), got, want)
		}
	}
	if got := wsbu.Severity(42).String(); !strings.Contains(got, "42") {
		t.Errorf("unknown severity = %q", got)
	}
}
