package processor

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format represents the input shape of a document
type Format int

const (
	FormatDelimitedText Format = iota
	FormatXML
	FormatHTMLTable
)

// String returns the format name
func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatHTMLTable:
		return "html"
	default:
		return "text"
	}
}

var (
	utf8BOM      = []byte{0xEF, 0xBB, 0xBF}
	xmlDecl      = []byte("<?xml")
	htmlMarkers  = [][]byte{[]byte("<!doctype html"), []byte("<html")}
	dteEnvelopes = [][]byte{[]byte("<dte"), []byte("<enviodte"), []byte("<envioboleta"), []byte("<setdte")}
)

// DetectFormat classifies content using the filename extension and the
// content shape. It never fails: delimited text is the fallback.
func DetectFormat(content []byte, filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(content, utf8BOM))

	if ext == ".xml" || bytes.HasPrefix(trimmed, xmlDecl) {
		return FormatXML
	}

	if ext == ".html" || ext == ".htm" || isHTML(trimmed) {
		return FormatHTMLTable
	}

	if isDTEEnvelope(trimmed) {
		return FormatXML
	}

	return FormatDelimitedText
}

func isHTML(content []byte) bool {
	lower := bytes.ToLower(content)
	for _, m := range htmlMarkers {
		if bytes.Contains(lower, m) {
			return true
		}
	}
	open := bytes.Index(lower, []byte("<table"))
	return open >= 0 && bytes.Contains(lower[open:], []byte("</table>"))
}

func isDTEEnvelope(content []byte) bool {
	if len(content) == 0 || content[0] != '<' {
		return false
	}
	// the envelope root must appear near the top of the document
	head := bytes.ToLower(content)
	if len(head) > 512 {
		head = head[:512]
	}
	for _, env := range dteEnvelopes {
		if i := bytes.Index(head, env); i >= 0 {
			next := i + len(env)
			if next < len(head) && (head[next] == '>' || head[next] == ' ' || head[next] == '\n' || head[next] == '\r' || head[next] == '\t') {
				return true
			}
		}
	}
	return false
}
