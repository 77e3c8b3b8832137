package uploads

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrInvalidDocument is returned when uploaded content is not what it claims to be.
var ErrInvalidDocument = errors.New("invalid document")

var pdfMagic = []byte("%PDF-")

// InspectPDF checks that rs holds a readable PDF and returns its page count.
func InspectPDF(rs io.ReadSeeker) (int, error) {
	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(rs, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return 0, fmt.Errorf("%w: not a PDF file", ErrInvalidDocument)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind document: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pages, err := api.PageCount(rs, conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if pages < 1 {
		return 0, fmt.Errorf("%w: PDF has no pages", ErrInvalidDocument)
	}
	return pages, nil
}

// CheckXML reports whether data is a single well-formed XML document.
func CheckXML(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: XML is empty", ErrInvalidDocument)
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	roots, depth := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && strings.TrimSpace(string(t)) != "" {
				return fmt.Errorf("%w: text outside the root element", ErrInvalidDocument)
			}
		}
	}
	if roots != 1 {
		return fmt.Errorf("%w: expected one root element, found %d", ErrInvalidDocument, roots)
	}
	return nil
}
