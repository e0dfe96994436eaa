package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"policyrag/internal/config"
	"policyrag/internal/domain/policymodel"
)

// DocTypeFor maps a filename extension onto the supported content types.
func DocTypeFor(path string) policymodel.DocType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return policymodel.PDF
	case ".docx":
		return policymodel.DOCX
	case ".txt":
		return policymodel.TXT
	case ".rtf":
		return policymodel.RTF
	default:
		return policymodel.ERR
	}
}

func extractText(path string, contentType policymodel.DocType) ([]policymodel.PageText, error) {
	switch contentType {
	case policymodel.PDF:
		return extractPDF(path)
	case policymodel.DOCX, policymodel.TXT, policymodel.RTF:
		return extractPlain(path)
	default:
		return nil, policymodel.Faultf(policymodel.FaultParse, "unsupported content type: %s", contentType)
	}
}

func extractPDF(path string) ([]policymodel.PageText, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, policymodel.NewFault(policymodel.FaultParse, false, fmt.Errorf("open pdf: %w", err))
	}

	var pages []policymodel.PageText
	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			// one broken page does not sink the document
			logger.Warn("page extraction failed", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		pages = append(pages, policymodel.PageText{PageNum: i, Text: content})
	}
	if len(pages) == 0 {
		return nil, policymodel.Faultf(policymodel.FaultParse, "no extractable text in %s", filepath.Base(path))
	}
	return pages, nil
}

// extractPlain reads .docx, .rtf and plaintext files. These formats carry no
// page boundaries, so everything lands on page 1.
func extractPlain(path string) ([]policymodel.PageText, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, policymodel.NewFault(policymodel.FaultParse, false, fmt.Errorf("extract %s: %w", filepath.Base(path), err))
	}
	if strings.TrimSpace(text) == "" {
		return nil, policymodel.Faultf(policymodel.FaultParse, "no extractable text in %s", filepath.Base(path))
	}
	return []policymodel.PageText{{PageNum: 1, Text: text}}, nil
}

// protectExtract runs the page parser in its own goroutine so a pathological
// page cannot wedge the whole pipeline.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PageParseWindow):
		return "", errors.New("page parse timed out")
	}
}
