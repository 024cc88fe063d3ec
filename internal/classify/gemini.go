package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jask/foodcalorie/internal/picker"
	"github.com/jask/foodcalorie/internal/result"
)

// ErrGeminiNoAPIKey is returned when the Gemini backend has no key configured.
var ErrGeminiNoAPIKey = errors.New("gemini: api key not configured")

const geminiInstruction = `You estimate food calories from a photo.
Identify the dish shown. Return ONLY JSON of the form
{"data":[{"name": string, "people": integer, "calorie": number}]}
where "people" is how many people the portion serves and "calorie" is the total kcal.
List the most likely dish first. If no food is visible return {"data":[]}.`

// GeminiClassifier asks a Gemini vision model to classify the photo.
type GeminiClassifier struct {
	apiKey string
	model  string
	opts   []option.ClientOption
}

func NewGeminiClassifier(apiKey, model string, opts ...option.ClientOption) *GeminiClassifier {
	return &GeminiClassifier{apiKey: strings.TrimSpace(apiKey), model: strings.TrimSpace(model), opts: opts}
}

func (g *GeminiClassifier) Name() string { return "gemini" }

func (g *GeminiClassifier) Classify(ctx context.Context, f picker.File) ([]result.FoodPrediction, error) {
	if g.apiKey == "" {
		return nil, ErrGeminiNoAPIKey
	}
	data, err := f.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	opts := append([]option.ClientOption{option.WithAPIKey(g.apiKey)}, g.opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(geminiInstruction)}}

	resp, err := m.GenerateContent(ctx,
		genai.Text("Classify this dish."),
		&genai.Blob{MIMEType: picker.ContentType(data), Data: data},
	)
	if err != nil {
		return nil, geminiError(err)
	}
	return decodePredictions([]byte(stripCodeFences(firstText(resp))))
}

// geminiError maps client errors onto the package's error taxonomy.
func geminiError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Errorf("%w: %v", ErrEmptyResult, blocked)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := strings.TrimSpace(gerr.Message)
		if msg == "" {
			msg = strings.TrimSpace(gerr.Body)
		}
		return &APIError{Code: gerr.Code, Message: msg}
	}
	return err
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			return s
		}
	}
	return ""
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func ptrFloat32(v float32) *float32 { return &v }
