package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/denisok6893-rgb/casa-match/internal/domain"
)

// Extractor turns a free-text buyer query into structured Criteria via
// one chat-completion call. It performs no retries; a calling layer may
// add its own policy on top.
type Extractor struct {
	model llms.Model
	log   *zap.Logger
}

// Config selects the OpenAI-compatible endpoint used for extraction.
type Config struct {
	BaseURL string
	Token   string
	Model   string
}

func New(model llms.Model, log *zap.Logger) *Extractor {
	return &Extractor{model: model, log: log}
}

// NewOpenAI builds an Extractor backed by an OpenAI-compatible chat API.
func NewOpenAI(cfg Config, log *zap.Logger) (*Extractor, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.Token),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}
	return New(client, log), nil
}

// wireCriteria mirrors domain.Criteria for decoding model output.
// Unknown keys are ignored; a type mismatch fails the whole decode.
type wireCriteria struct {
	PriceMin          *float64 `json:"price_min"`
	PriceMax          *float64 `json:"price_max"`
	Locations         []string `json:"locations"`
	RoomsTotal        *int     `json:"rooms_total"`
	RoomsGroundFloor  *int     `json:"rooms_ground_floor"`
	GroundFloorNeeded *bool    `json:"ground_floor_needed"`
	BathroomsTotal    *int     `json:"bathrooms_total"`
	GardenSize        *string  `json:"garden_size"`
	Amenities         []string `json:"amenities"`
}

// Extract performs the NL-to-criteria call. Every failure mode — call
// error, unparseable output, or an object with no recognized keys —
// surfaces as domain.ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, query string) (domain.Criteria, error) {
	content := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(query)},
		},
	}

	resp, err := e.model.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		e.log.Error("extractor call failed", zap.Error(err))
		return domain.Criteria{}, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}
	if len(resp.Choices) == 0 {
		return domain.Criteria{}, fmt.Errorf("%w: model returned no choices", domain.ErrExtraction)
	}

	raw := stripFences(resp.Choices[0].Content)

	var wire wireCriteria
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		e.log.Warn("unparseable extractor response", zap.String("response", raw), zap.Error(err))
		return domain.Criteria{}, fmt.Errorf("%w: decode response: %v", domain.ErrExtraction, err)
	}

	criteria, err := wire.toCriteria()
	if err != nil {
		return domain.Criteria{}, err
	}
	if criteria.Empty() {
		return domain.Criteria{}, fmt.Errorf("%w: no recognized criteria in response", domain.ErrExtraction)
	}

	e.log.Debug("criteria extracted", zap.Any("criteria", criteria))
	return criteria, nil
}

func (w wireCriteria) toCriteria() (domain.Criteria, error) {
	for name, v := range map[string]*float64{"price_min": w.PriceMin, "price_max": w.PriceMax} {
		if v != nil && *v < 0 {
			return domain.Criteria{}, fmt.Errorf("%w: negative %s", domain.ErrExtraction, name)
		}
	}
	for name, v := range map[string]*int{
		"rooms_total":        w.RoomsTotal,
		"rooms_ground_floor": w.RoomsGroundFloor,
		"bathrooms_total":    w.BathroomsTotal,
	} {
		if v != nil && *v < 0 {
			return domain.Criteria{}, fmt.Errorf("%w: negative %s", domain.ErrExtraction, name)
		}
	}

	c := domain.Criteria{
		PriceMin:          w.PriceMin,
		PriceMax:          w.PriceMax,
		Locations:         cleanStrings(w.Locations),
		RoomsTotal:        w.RoomsTotal,
		RoomsGroundFloor:  w.RoomsGroundFloor,
		GroundFloorNeeded: w.GroundFloorNeeded,
		BathroomsTotal:    w.BathroomsTotal,
		Amenities:         cleanStrings(w.Amenities),
	}

	if w.GardenSize != nil {
		size := domain.GardenSize(strings.ToLower(strings.TrimSpace(*w.GardenSize)))
		if !size.Valid() {
			return domain.Criteria{}, fmt.Errorf("%w: unknown garden_size %q", domain.ErrExtraction, *w.GardenSize)
		}
		c.GardenSize = &size
	}
	return c, nil
}

func cleanStrings(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// stripFences removes markdown code fences some models wrap around JSON
// even in JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
