package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/jask/foodcalorie/internal/picker"
	"github.com/jask/foodcalorie/internal/result"
)

const maxErrorBody = 64 << 10

// HTTPClassifier posts the photo as a multipart upload to a predict endpoint.
type HTTPClassifier struct {
	endpoint  string
	fieldName string
	apiKey    string
	httpc     *http.Client
}

func NewHTTPClassifier(endpoint, fieldName, apiKey string, timeout time.Duration) *HTTPClassifier {
	if fieldName == "" {
		fieldName = "data"
	}
	return &HTTPClassifier{
		endpoint:  strings.TrimSpace(endpoint),
		fieldName: fieldName,
		apiKey:    strings.TrimSpace(apiKey),
		httpc:     &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClassifier) Name() string { return "http" }

func (c *HTTPClassifier) Classify(ctx context.Context, f picker.File) ([]result.FoodPrediction, error) {
	body, contentType, err := c.buildBody(f)
	if err != nil {
		return nil, fmt.Errorf("build upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Code: resp.StatusCode, Message: errorMessage(resp, raw)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return decodePredictions(raw)
}

// buildBody writes f as the single file part of a multipart form.
func (c *HTTPClassifier) buildBody(f picker.File) (*bytes.Buffer, string, error) {
	data, err := f.ReadAll()
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, c.fieldName, f.Name))
	h.Set("Content-Type", picker.ContentType(data))
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// errorMessage prefers a message field from a JSON error body, then the status text.
func errorMessage(resp *http.Response, raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if m := strings.TrimSpace(body.Message); m != "" {
			return m
		}
		if m := strings.TrimSpace(body.Error); m != "" {
			return m
		}
	}
	if t := http.StatusText(resp.StatusCode); t != "" {
		return t
	}
	return strings.TrimSpace(resp.Status)
}
