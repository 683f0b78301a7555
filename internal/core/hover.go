package core

// HoverInfo is the markdown content shown for a hover request, built from
// cursor info's documentation XML (or, failing that, the annotated
// declaration) per section 4.5.
type HoverInfo struct {
	Contents string
	Range    *Range
}
