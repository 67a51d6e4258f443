package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"resumescreen/resume-screener/internal/models"
)

type PDFExtractorService interface {
	// Validate reports whether the file at path is a readable PDF with at
	// least one page. It never returns an error; the second value carries
	// the rejection reason.
	Validate(filePath string) (bool, string)
	// Extract pulls the text of every page. Per-page failures are recorded
	// inline in the result text; the result's Error field is set only when
	// the whole document is unreadable.
	Extract(filePath string) *models.ExtractionResult
}

type pdfExtractorService struct {
	log *logrus.Logger
}

func NewPDFExtractorService(log *logrus.Logger) PDFExtractorService {
	return &pdfExtractorService{log: log}
}

func (s *pdfExtractorService) Validate(filePath string) (bool, string) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return false, "File does not exist"
	}

	if strings.ToLower(filepath.Ext(filePath)) != ".pdf" {
		return false, "File is not a PDF"
	}

	f, err := os.Open(filePath)
	if err != nil {
		return false, fmt.Sprintf("Error validating PDF: %v", err)
	}
	defer f.Close()

	header := make([]byte, 4)
	if _, err := io.ReadFull(f, header); err != nil || string(header) != "%PDF" {
		return false, "File is not a valid PDF (invalid header)"
	}

	pages, err := pageCount(filePath)
	if err != nil {
		return false, fmt.Sprintf("Error validating PDF: %v", err)
	}
	if pages == 0 {
		return false, "PDF has no pages"
	}

	return true, ""
}

func (s *pdfExtractorService) Extract(filePath string) *models.ExtractionResult {
	result := &models.ExtractionResult{}

	info, err := os.Stat(filePath)
	if err != nil {
		result.Error = fmt.Sprintf("Error extracting text: %v", err)
		return result
	}
	result.FileSize = info.Size()

	start := time.Now()
	text, pages, meta, err := extractDocument(filePath)
	if err != nil {
		s.log.WithError(err).WithField("file", filepath.Base(filePath)).Warn("PDF extraction failed")
		result.Error = fmt.Sprintf("Invalid PDF file: %v", err)
		return result
	}

	result.Text = text
	result.Pages = pages
	result.Metadata = meta
	result.ExtractionTime = roundSeconds(time.Since(start))
	return result
}

// extractDocument walks every page and joins the texts with page-boundary
// markers. The underlying parser panics on some malformed files, so whole
// document and per-page work both convert panics into errors.
func extractDocument(filePath string) (text string, pages int, meta models.PDFMetadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", 0, meta, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pages = r.NumPage()

	var parts []string
	for pageIndex := 1; pageIndex <= pages; pageIndex++ {
		pageText, pageErr := extractPage(r, pageIndex)
		switch {
		case pageErr != nil:
			parts = append(parts, fmt.Sprintf("--- Page %d ---\n[Error extracting text: %v]", pageIndex, pageErr))
		case strings.TrimSpace(pageText) == "":
			parts = append(parts, fmt.Sprintf("--- Page %d ---\n[No text content]", pageIndex))
		default:
			parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", pageIndex, pageText))
		}
	}

	return strings.Join(parts, "\n\n"), pages, readMetadata(r), nil
}

func extractPage(r *pdf.Reader, pageIndex int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()

	page := r.Page(pageIndex)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// readMetadata reads the document information dictionary. Info dictionaries
// in the wild are frequently broken, so failures just leave fields empty.
func readMetadata(r *pdf.Reader) (meta models.PDFMetadata) {
	defer func() {
		recover()
	}()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}

	meta.Title = info.Key("Title").Text()
	meta.Author = info.Key("Author").Text()
	meta.Subject = info.Key("Subject").Text()
	meta.Creator = info.Key("Creator").Text()
	meta.Producer = info.Key("Producer").Text()
	meta.CreationDate = info.Key("CreationDate").Text()
	meta.ModificationDate = info.Key("ModDate").Text()
	return meta
}

func pageCount(filePath string) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return r.NumPage(), nil
}

func roundSeconds(d time.Duration) float64 {
	return float64(d.Milliseconds()) / 1000
}
