package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPDFPages caps how much of a paper is read; the opening pages carry the
// abstract and introduction, which is what the interpreter needs.
const maxPDFPages = 5

type pdfStrategy struct{}

func (pdfStrategy) Name() string { return "pdf" }

// Extract reads up to the first maxPDFPages pages, labeling each page.
// Pages that fail to parse are skipped. A panic inside the parser is treated
// as "not a PDF".
func (pdfStrategy) Extract(data []byte) (_ string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}

	pages := reader.NumPage()
	if pages > maxPDFPages {
		pages = maxPDFPages
	}

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&b, "Page %d:\n%s\n\n", i, text)
	}

	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}
