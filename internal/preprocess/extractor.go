package preprocess

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Duy-Thong/CopyCheck/internal/metrics"
	"github.com/Duy-Thong/CopyCheck/internal/models"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// OCR is the remote fallback used when a PDF has no text layer
type OCR interface {
	ExtractText(ctx context.Context, filename string, data []byte) (string, error)
}

// Extractor turns uploaded files into plain text. It never fails: anything it
// cannot read becomes empty text, which the engine scores as dissimilar.
type Extractor struct {
	ocr OCR
}

// NewExtractor creates an extractor; ocr may be nil
func NewExtractor(ocr OCR) *Extractor {
	return &Extractor{ocr: ocr}
}

// Extract returns the text of the file and how it was obtained
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (string, string) {
	if !isPDF(filename, data) {
		if utf8.Valid(data) {
			return string(data), models.ExtractionText
		}
		log.Warn().Str("filename", filename).Msg("Unsupported upload, storing empty text")
		metrics.ExtractionFallbacks.WithLabelValues(models.ExtractionNone).Inc()
		return "", models.ExtractionNone
	}

	text, err := ExtractPDF(data)
	if err != nil {
		log.Warn().Err(err).Str("filename", filename).Msg("PDF extraction failed")
	}
	if strings.TrimSpace(text) != "" {
		return text, models.ExtractionPDF
	}

	if e.ocr != nil {
		ocrText, err := e.ocr.ExtractText(ctx, filename, data)
		if err == nil && strings.TrimSpace(ocrText) != "" {
			metrics.ExtractionFallbacks.WithLabelValues(models.ExtractionOCR).Inc()
			return ocrText, models.ExtractionOCR
		}
		if err != nil {
			log.Warn().Err(err).Str("filename", filename).Msg("OCR fallback failed")
		}
	}

	metrics.ExtractionFallbacks.WithLabelValues(models.ExtractionNone).Inc()
	return "", models.ExtractionNone
}

func isPDF(filename string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// ExtractPDF reads the text layer of every page
func ExtractPDF(data []byte) (text string, err error) {
	// The parser panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Debug().Err(err).Int("page", i).Msg("Skipping unreadable PDF page")
			continue
		}
		buf.WriteString(pageText)
		buf.WriteString("\n")
	}

	return buf.String(), nil
}
