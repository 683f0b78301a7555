package server

import (
	"encoding/xml"
	"io"
	"strings"
)

// markdownFromDocumentationXML converts the native analyzer's documentation
// XML (a SourceKit-style tagged-element doc comment) to plain markdown by
// walking its token stream and keeping only character data, joined on blank
// lines between elements. There is no structure worth preserving beyond
// paragraph breaks once rendered as hover markdown, so this is intentionally
// a text extraction rather than a tag-by-tag translation.
//
// No third-party XML-to-Markdown converter in the dependency set handles
// this analyzer-specific doc-comment schema, so this stays on the standard
// library's xml.Decoder rather than pulling one in for a single call site.
func markdownFromDocumentationXML(docXML string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(docXML))

	var out strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n\n") {
				out.WriteString("\n\n")
			}
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text != "" {
				out.WriteString(text)
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}
