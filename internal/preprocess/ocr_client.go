package preprocess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// OCRClient handles communication with the remote OCR API
type OCRClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOCRClient creates a new OCR API client
func NewOCRClient(baseURL, apiKey string, timeout time.Duration) *OCRClient {
	return &OCRClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// OCRResponse represents the response from the OCR API
type OCRResponse struct {
	Text  string `json:"text"`
	Pages int    `json:"pages"`
}

// OCRError represents an error response from the OCR API
type OCRError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *OCRClient) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	url := fmt.Sprintf("%s/api/v1/ocr", c.baseURL)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	log.Trace().Str("filename", filename).Int("bytes", len(data)).Msg("Sending file to OCR")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	// Handle error status codes
	if resp.StatusCode == http.StatusBadRequest ||
		resp.StatusCode == http.StatusUnsupportedMediaType ||
		resp.StatusCode == http.StatusUnprocessableEntity {
		var errResp OCRError
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
		}
		return "", fmt.Errorf("API error: %s - %s", errResp.Error, errResp.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody))
	}

	var ocrResp OCRResponse
	if err := json.Unmarshal(respBody, &ocrResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return ocrResp.Text, nil
}
