package adapter

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/core"
)

var severityTable = map[core.DiagnosticSeverity]protocol.DiagnosticSeverity{
	core.SeverityError:       protocol.DiagnosticSeverityError,
	core.SeverityWarning:     protocol.DiagnosticSeverityWarning,
	core.SeverityInformation: protocol.DiagnosticSeverityInformation,
	core.SeverityHint:        protocol.DiagnosticSeverityHint,
}

var tagTable = map[core.DiagnosticTag]protocol.DiagnosticTag{
	core.TagUnnecessary: protocol.DiagnosticTagUnnecessary,
	core.TagDeprecated:  protocol.DiagnosticTagDeprecated,
}

// FromCoreDiagnostic converts a single diagnostic. A range that no longer
// resolves against lt (the document changed underneath a stale diagnostic)
// is dropped by the caller, not clamped, so FromCoreDiagnostics skips it.
func FromCoreDiagnostic(lt *core.LineTable, d core.Diagnostic) (protocol.Diagnostic, error) {
	r, err := FromCoreRange(lt, d.Range)
	if err != nil {
		return protocol.Diagnostic{}, err
	}

	out := protocol.Diagnostic{
		Range:   r,
		Message: d.Message,
	}
	if d.Severity != nil {
		if sev, ok := severityTable[*d.Severity]; ok {
			out.Severity = &sev
		}
	}
	if d.Code != "" {
		code := protocol.IntegerOrString{StringValue: &d.Code}
		out.Code = &code
	}
	if d.Source != "" {
		source := d.Source
		out.Source = &source
	}
	if len(d.Tags) > 0 {
		tags := make([]protocol.DiagnosticTag, 0, len(d.Tags))
		for _, t := range d.Tags {
			if pt, ok := tagTable[t]; ok {
				tags = append(tags, pt)
			}
		}
		if len(tags) > 0 {
			out.Tags = &tags
		}
	}
	if len(d.RelatedInformation) > 0 {
		related := make([]protocol.DiagnosticRelatedInformation, 0, len(d.RelatedInformation))
		for _, ri := range d.RelatedInformation {
			loc, err := FromCoreLocation(lt, ri.Location)
			if err != nil {
				continue
			}
			related = append(related, protocol.DiagnosticRelatedInformation{
				Location: loc,
				Message:  ri.Message,
			})
		}
		if len(related) > 0 {
			out.RelatedInformation = &related
		}
	}
	return out, nil
}

// FromCoreDiagnostics converts ds into wire diagnostics, silently dropping
// any whose range no longer resolves against lt.
func FromCoreDiagnostics(lt *core.LineTable, ds []core.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(ds))
	for _, d := range ds {
		pd, err := FromCoreDiagnostic(lt, d)
		if err != nil {
			continue
		}
		out = append(out, pd)
	}
	return out
}
