package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"coverscan/internal/config"
	"coverscan/internal/domain"
	"coverscan/internal/parser"
	claude "coverscan/internal/parser/claude"
	"coverscan/internal/port"
)

const recordText = `{"applicant":{"first_name":{"value":"JOHN","confidence":"high"},"last_name":{"value":"DOE","confidence":"medium"}},"collections":{"vehicles":[{"year":{"value":"2019","confidence":"medium"},"make":{"value":"HONDA","confidence":"high"}}]}}`

func newTestParser(serverURL string) *claude.Parser {
	cfg := &config.ParserProviderConfig{
		Provider:    "claude",
		APIKey:      "test-api-key",
		Model:       "claude-sonnet-4-20250514",
		TimeoutSecs: 30,
	}
	return claude.NewParserWithEndpoint(cfg, serverURL)
}

func textResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
	}
}

func TestClaudeParser_ParsePage_PDF_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request headers
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		// Verify request body
		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, float64(16384), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])

		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)

		// First block: document
		docBlock := content[0].(map[string]interface{})
		assert.Equal(t, "document", docBlock["type"])
		source := docBlock["source"].(map[string]interface{})
		assert.Equal(t, "application/pdf", source["media_type"])

		// Second block: text prompt
		textBlock := content[1].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])
		assert.NotEmpty(t, textBlock["text"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(textResponse(recordText))
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	rec, err := p.ParsePage(context.Background(), port.PageInput{
		FileBytes:   []byte("%PDF-1.4 test content"),
		ContentType: "application/pdf",
		FormType:    domain.FormTypeAuto,
	})

	assert.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Equal(t, "JOHN", *rec.Applicant.FirstName.Value)
	assert.Len(t, rec.Collections.Vehicles, 1)
	assert.Equal(t, "HONDA", *rec.Collections.Vehicles[0].Make.Value)
}

func TestClaudeParser_ParsePage_Image_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			return
		}

		messages := reqBody["messages"].([]interface{})
		msg := messages[0].(map[string]interface{})
		content := msg["content"].([]interface{})

		// First block should be image
		imgBlock := content[0].(map[string]interface{})
		assert.Equal(t, "image", imgBlock["type"])
		source := imgBlock["source"].(map[string]interface{})
		assert.Equal(t, "image/jpeg", source["media_type"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(textResponse(recordText))
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	rec, err := p.ParsePage(context.Background(), port.PageInput{
		FileBytes:   []byte{0xFF, 0xD8, 0xFF, 0xE0},
		ContentType: "image/jpeg",
		FormType:    domain.FormTypeAuto,
	})

	assert.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestClaudeParser_ParsePage_PNG_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			return
		}

		messages := reqBody["messages"].([]interface{})
		msg := messages[0].(map[string]interface{})
		content := msg["content"].([]interface{})

		imgBlock := content[0].(map[string]interface{})
		assert.Equal(t, "image", imgBlock["type"])
		source := imgBlock["source"].(map[string]interface{})
		assert.Equal(t, "image/png", source["media_type"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(textResponse(recordText))
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	rec, err := p.ParsePage(context.Background(), port.PageInput{
		FileBytes:   []byte{0x89, 0x50, 0x4E, 0x47},
		ContentType: "image/png",
		FormType:    domain.FormTypeHome,
	})

	assert.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestClaudeParser_ParsePage_StripsCodeFences(t *testing.T) {
	fenced := "```json\n" + recordText + "\n```"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(textResponse(fenced))
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	rec, err := p.ParsePage(context.Background(), port.PageInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
		FormType:    domain.FormTypeAuto,
	})

	assert.NoError(t, err)
	assert.Equal(t, "JOHN", *rec.Applicant.FirstName.Value)
}

func TestClaudeParser_ParsePage_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"rate limited"}}`))
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	rec, err := p.ParsePage(context.Background(), port.PageInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
		FormType:    domain.FormTypeAuto,
	})

	assert.Nil(t, rec)
	assert.Error(t, err)

	var rlErr *parser.RateLimitError
	assert.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, float64(30), rlErr.RetryAfter.Seconds())
	assert.Contains(t, err.Error(), "anthropic API error (status 429)")
}

func TestClaudeParser_ParsePage_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"server_error","message":"internal error"}}`))
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	rec, err := p.ParsePage(context.Background(), port.PageInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
		FormType:    domain.FormTypeAuto,
	})

	assert.Nil(t, rec)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic API error (status 500)")

	var rlErr *parser.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestClaudeParser_ParsePage_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{},
		})
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	rec, err := p.ParsePage(context.Background(), port.PageInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
		FormType:    domain.FormTypeAuto,
	})

	assert.Nil(t, rec)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestClaudeParser_ParsePage_TruncatedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": `{"applicant":`},
			},
			"stop_reason": "max_tokens",
		})
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	rec, err := p.ParsePage(context.Background(), port.PageInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
		FormType:    domain.FormTypeAuto,
	})

	assert.Nil(t, rec)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "output truncated")
}

func TestClaudeParser_ParsePage_InvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(textResponse("This is not JSON at all, sorry!"))
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	rec, err := p.ParsePage(context.Background(), port.PageInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
		FormType:    domain.FormTypeAuto,
	})

	assert.Nil(t, rec)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing provider JSON output")
}

func TestClaudeParser_ParsePage_UnsupportedContentType(t *testing.T) {
	p := newTestParser("http://unused")

	rec, err := p.ParsePage(context.Background(), port.PageInput{
		FileBytes:   []byte("text content"),
		ContentType: "text/plain",
		FormType:    domain.FormTypeAuto,
	})

	assert.Nil(t, rec)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestClaudeParser_ParsePage_ConnectionRefused(t *testing.T) {
	p := newTestParser("http://localhost:1")

	rec, err := p.ParsePage(context.Background(), port.PageInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
		FormType:    domain.FormTypeAuto,
	})

	assert.Nil(t, rec)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "calling anthropic API")
}

func TestClaudeParser_Name(t *testing.T) {
	p := newTestParser("http://unused")
	assert.Equal(t, "claude", p.Name())
}
