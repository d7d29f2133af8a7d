package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/cosmicai/RagAPI/internal/domain/docModel"
)

func extractText(path string, dt docType) (string, error) {
	switch dt {
	case docTypePDF:
		return extractPDF(path)
	case docTypeDOCX:
		return extractDocx(path)
	case docTypeText:
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", &docModel.ParseError{Filename: filepath.Base(path), Err: err}
		}
		return string(raw), nil
	default:
		return "", &docModel.ParseError{Filename: filepath.Base(path), Err: errors.New("unsupported document type")}
	}
}

func extractPDF(path string) (string, error) {
	logger.Debug("extractPDF", "attempting extraction", path)
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening of pdf file")
		return "", &docModel.ParseError{Filename: filepath.Base(path), Err: err}
	}

	var pages []string
	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			logger.Debug("extractPDF", "page value is null!!", "page #", i)
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// Log warning but continue with other pages
			logger.Error("Error parsing page content", "page #", i, "Error", err)
			continue
		}
		pages = append(pages, content)
	}

	if numPages > 0 && len(pages) == 0 {
		return "", &docModel.ParseError{Filename: filepath.Base(path), Err: errors.New("no readable pages")}
	}
	return strings.Join(pages, "\n\n"), nil
}

// extractDocx reads a .odt, .docx or .rtf file and returns the content as a string
func extractDocx(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from doc")
		return "", &docModel.ParseError{Filename: filepath.Base(path), Err: err}
	}
	return text, nil
}

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
	case <-time.After(time.Second * 10):
		logger.Error("pageExtract", "timeout")
		return "", errors.New("timeout")
	}
}
