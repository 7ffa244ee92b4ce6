package cleanup

import "fmt"

// Severity grades a diagnostic emitted during a pipeline run.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Status is one graded diagnostic, optionally tied to a file.
type Status struct {
	Severity Severity `json:"severity"`
	Path     string   `json:"path,omitempty"`
	Message  string   `json:"message"`
}

func (s Status) String() string {
	if s.Path != "" {
		return fmt.Sprintf("%s: %s: %s", s.Severity, s.Path, s.Message)
	}
	return fmt.Sprintf("%s: %s", s.Severity, s.Message)
}

// Report collects statuses across a pipeline run. The caller inspects
// it to decide whether to proceed with the computed changes.
type Report struct {
	Statuses []Status `json:"statuses"`
}

// Add records a status.
func (r *Report) Add(sev Severity, path, format string, args ...any) {
	r.Statuses = append(r.Statuses, Status{
		Severity: sev,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Max returns the highest severity recorded, or SeverityInfo when the
// report is empty.
func (r Report) Max() Severity {
	max := SeverityInfo
	for _, s := range r.Statuses {
		if s.Severity > max {
			max = s.Severity
		}
	}
	return max
}

// OK reports whether the run produced no error or fatal statuses.
func (r Report) OK() bool {
	return r.Max() < SeverityError
}

// Filter returns the statuses at exactly the given severity.
func (r Report) Filter(sev Severity) []Status {
	var out []Status
	for _, s := range r.Statuses {
		if s.Severity == sev {
			out = append(out, s)
		}
	}
	return out
}
