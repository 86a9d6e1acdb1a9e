package extract

import (
	"bytes"
	"strings"

	"github.com/fumiama/go-docx"
)

type docxStrategy struct{}

func (docxStrategy) Name() string { return "docx" }

// Extract concatenates all non-blank paragraphs in document order.
func (docxStrategy) Extract(data []byte) (_ string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}

	var b strings.Builder
	for _, item := range doc.Document.Body.Items {
		p, isParagraph := item.(*docx.Paragraph)
		if !isParagraph {
			continue
		}
		text := strings.TrimSpace(p.String())
		if text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}
