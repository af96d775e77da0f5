package preprocess

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOCRClient_ExtractText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/ocr", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("x-api-key"))

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "scan.pdf", header.Filename)
		assert.Equal(t, "%PDF-1.4", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"recognised text","pages":2}`))
	}))
	defer server.Close()

	client := NewOCRClient(server.URL, "key-123", 5*time.Second)
	text, err := client.ExtractText(context.Background(), "scan.pdf", []byte("%PDF-1.4"))

	require.NoError(t, err)
	assert.Equal(t, "recognised text", text)
}

func TestOCRClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"structured bad request", http.StatusBadRequest, `{"error":"bad_file","message":"not a pdf"}`, "bad_file - not a pdf"},
		{"unstructured unprocessable", http.StatusUnprocessableEntity, `oops`, "status 422"},
		{"server error", http.StatusInternalServerError, `boom`, "unexpected status code 500"},
		{"invalid json", http.StatusOK, `{`, "failed to unmarshal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewOCRClient(server.URL, "", time.Second).ExtractText(context.Background(), "scan.pdf", []byte("x"))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
