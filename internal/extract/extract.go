package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// MaxFileBytes is the upload size ceiling shared with the HTTP boundary.
	MaxFileBytes = 10 * 1024 * 1024

	mimePDF  = "application/pdf"
	mimeDOC  = "application/msword"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	minTextLength = 50
)

var (
	// ErrUnsupportedType indicates a declared MIME type outside the allow-list.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrNotEnoughText indicates the document produced too little readable text.
	ErrNotEnoughText = errors.New("could not extract enough text from the document; please ensure your CV contains readable text")
)

// Metadata describes the parsed document.
type Metadata struct {
	FileName  string `json:"fileName"`
	FileSize  int64  `json:"fileSize"`
	FileType  string `json:"fileType"`
	PageCount int    `json:"pageCount,omitempty"`
	WordCount int    `json:"wordCount"`
}

// ParsedCV is the normalized plain text of an uploaded CV plus metadata.
// It lives only for the duration of one request; nothing is persisted.
type ParsedCV struct {
	Text     string
	Metadata Metadata
}

// AllowedType reports whether the declared MIME type is accepted.
func AllowedType(mimeType string) bool {
	switch cleanMime(mimeType) {
	case mimePDF, mimeDOC, mimeDOCX:
		return true
	default:
		return false
	}
}

// Parse extracts normalized plain text from an in-memory upload.
// PDF text and page count come from github.com/ledongthuc/pdf; DOC and DOCX
// are read as OOXML archives (word/document.xml stripped of markup).
func Parse(ctx context.Context, data []byte, mimeType, fileName string) (ParsedCV, error) {
	if err := ctx.Err(); err != nil {
		return ParsedCV{}, err
	}

	var (
		text      string
		pageCount int
		err       error
	)
	declared := cleanMime(mimeType)
	switch declared {
	case mimePDF:
		text, pageCount, err = extractPDF(data)
	case mimeDOC, mimeDOCX:
		text, err = extractWord(data)
	default:
		return ParsedCV{}, fmt.Errorf("parse cv %q: %w: %s", fileName, ErrUnsupportedType, declared)
	}
	if err != nil {
		// An unreadable document and a text-free document look the same to
		// the caller: there is nothing to analyze.
		return ParsedCV{}, fmt.Errorf("parse cv %q (%s): %w", fileName, declared, ErrNotEnoughText)
	}

	text = Normalize(text)
	if len(text) < minTextLength {
		return ParsedCV{}, fmt.Errorf("parse cv %q (%s): %w", fileName, declared, ErrNotEnoughText)
	}

	return ParsedCV{
		Text: text,
		Metadata: Metadata{
			FileName:  fileName,
			FileSize:  int64(len(data)),
			FileType:  declared,
			PageCount: pageCount,
			WordCount: WordCount(text),
		},
	}, nil
}

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	disallowed     = regexp.MustCompile(`[^\w\s\-@.,()]`)
)

// Normalize collapses whitespace runs to single spaces and replaces
// characters outside the allow-list (word chars, whitespace, - @ . , ( ))
// with spaces, then trims.
func Normalize(text string) string {
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = disallowed.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// WordCount counts whitespace-delimited non-empty tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func extractPDF(data []byte) (string, int, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", 0, err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", 0, err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", 0, err
	}
	return buf.String(), pdfReader.NumPage(), nil
}

func extractWord(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty document")
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return stripDocxXML(string(raw)), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func cleanMime(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}
