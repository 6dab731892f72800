package services

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// PDFText is the plain text of a document, one entry per page.
type PDFText struct {
	Pages []string
}

// Text joins the non-empty pages with blank lines.
func (t *PDFText) Text() string {
	parts := make([]string, 0, len(t.Pages))
	for _, p := range t.Pages {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ExtractText reads the text layer of every page. Pages without a text
// layer, such as scans, come back empty.
func (s *PDFService) ExtractText(path string) (*PDFText, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	out := &PDFText{Pages: make([]string, 0, numPages)}
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			out.Pages = append(out.Pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", pageNum, err)
		}
		out.Pages = append(out.Pages, text)
	}
	return out, nil
}
