// Package classify sends a food photo to a classification backend and returns its
// predictions.
package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jask/foodcalorie/internal/picker"
	"github.com/jask/foodcalorie/internal/result"
)

// Classifier turns one image into food predictions.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, f picker.File) ([]result.FoodPrediction, error)
}

// ErrEmptyResult means the backend answered successfully without a payload.
var ErrEmptyResult = errors.New("classify: empty result")

// APIError is a structured failure reported by the backend.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("classify: api error %d: %s", e.Code, e.Message)
}

// predictResponse is the wire shape shared by every backend.
type predictResponse struct {
	Data []result.FoodPrediction `json:"data"`
}

// decodePredictions parses a predict response body. An empty body or a JSON null is
// ErrEmptyResult; a body without data is an empty, successful prediction list.
func decodePredictions(body []byte) ([]result.FoodPrediction, error) {
	text := strings.TrimSpace(string(body))
	if text == "" || text == "null" {
		return nil, ErrEmptyResult
	}
	var out predictResponse
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Data, nil
}

// Outcome maps a Classify return into the terminal outcome of an upload.
func Outcome(preds []result.FoodPrediction, err error) result.Outcome {
	if err == nil {
		return result.Success{Items: preds}
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return result.APIError{Code: apiErr.Code, Message: apiErr.Message}
	case errors.Is(err, ErrEmptyResult):
		return result.EmptyResult{}
	default:
		return result.NetworkError{Message: err.Error()}
	}
}
