package wsbu

import (
	"fmt"
	"strings"
)

// Severity classifies a single report entry.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Entry is one status line produced during an operation.
type Entry struct {
	Severity Severity
	Message  string
}

// Report is the ordered operation log returned by every engine pipeline.
// The engine only appends records; rendering is left entirely to the
// caller, so the core stays decoupled from any UI.
type Report struct {
	// Archive is the name of the archive stored by a successful backup,
	// empty otherwise.
	Archive string

	entries []Entry
}

func NewReport() *Report {
	return &Report{}
}

func (r *Report) append(sev Severity, format string, args ...any) {
	r.entries = append(r.entries, Entry{Severity: sev, Message: fmt.Sprintf(format, args...)})
}

// Infof appends an informational status record.
func (r *Report) Infof(format string, args ...any) {
	r.append(SeverityInfo, format, args...)
}

// Warnf appends a warning record for a recoverable condition.
func (r *Report) Warnf(format string, args ...any) {
	r.append(SeverityWarn, format, args...)
}

// Errorf appends an error record. The engine adds exactly one of these,
// at the fatal step, before aborting the operation.
func (r *Report) Errorf(format string, args ...any) {
	r.append(SeverityError, format, args...)
}

// Entries returns the recorded entries in order.
func (r *Report) Entries() []Entry {
	return r.entries
}

// Warnings returns the number of warning entries.
func (r *Report) Warnings() int {
	n := 0
	for _, e := range r.entries {
		if e.Severity == SeverityWarn {
			n++
		}
	}
	return n
}

// String renders the report as plain text, one message per line.
func (r *Report) String() string {
	var b strings.Builder
	for _, e := range r.entries {
		b.WriteString(e.Message)
		b.WriteByte('\n')
	}
	return b.String()
}
