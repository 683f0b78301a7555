package core

import "fmt"

// DiagnosticSeverity mirrors the LSP severities the native analyzer maps
// onto: only Error and Warning are produced by the analyzer's own
// diag_error / diag_warning kinds; anything else is absent (see
// internal/bridge's severity table).
type DiagnosticSeverity int

const (
	SeverityError       DiagnosticSeverity = 1
	SeverityWarning     DiagnosticSeverity = 2
	SeverityInformation DiagnosticSeverity = 3
	SeverityHint        DiagnosticSeverity = 4
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	case SeverityInformation:
		return "Information"
	case SeverityHint:
		return "Hint"
	default:
		return fmt.Sprintf("DiagnosticSeverity(%d)", int(s))
	}
}

// DiagnosticTag adds metadata (strike-through, fade) to a diagnostic range.
type DiagnosticTag int

const (
	TagUnnecessary DiagnosticTag = 1
	TagDeprecated  DiagnosticTag = 2
)

// DiagnosticRelatedInformation points at a secondary location relevant to a
// diagnostic (e.g. "previous declaration here").
type DiagnosticRelatedInformation struct {
	Location Location
	Message  string
}

// Diagnostic is a single analyzer finding for a range within a document.
type Diagnostic struct {
	Range              Range
	Severity           *DiagnosticSeverity
	Code               string
	Source             string
	Message            string
	Tags               []DiagnosticTag
	RelatedInformation []DiagnosticRelatedInformation
}

func (d Diagnostic) HasTag(tag DiagnosticTag) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
