// Package advisor composes climate summaries into generative model prompts
// and validates the model's answers.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/i474232898/agro-climate/internal/climate"
	"github.com/i474232898/agro-climate/internal/common"
)

// insightDays is the breakdown length fed to the insights prompt.
const insightDays = 14

var validate = validator.New()

// Generator is an opaque, non-deterministic text model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ClimateSource provides the climate figures embedded in prompts.
type ClimateSource interface {
	CropClimate(ctx context.Context, place string) (climate.CropClimate, error)
	PastWeather(ctx context.Context, place string, days int) (climate.Breakdown, error)
	Now() time.Time
}

// Crop is one model suggested crop.
type Crop struct {
	Name        string  `json:"name" validate:"required"`
	Suitability float64 `json:"suitability" validate:"gte=0,lte=100"`
	Reason      string  `json:"reason"`
	IdealSeason string  `json:"ideal_season,omitempty"`
}

// CropReport is the crop prediction response.
type CropReport struct {
	Place       string              `json:"place"`
	Date        string              `json:"date"`
	ClimateData climate.CropClimate `json:"climateData"`
	Crops       []Crop              `json:"crops"`
}

// FallbackCrops is served when the model output cannot be used.
var FallbackCrops = []Crop{
	{Name: "Rice", Suitability: 80, Reason: "Moderate temperature and sufficient humidity", IdealSeason: "Kharif"},
	{Name: "Wheat", Suitability: 70, Reason: "Cool temperature suitable for wheat", IdealSeason: "Rabi"},
}

type InsightLocation struct {
	Lat        float64  `json:"lat"`
	Long       float64  `json:"long"`
	ElevationM *float64 `json:"elevation_m"`
}

type FactorSummary struct {
	Task           string `json:"task"`
	Temperature    string `json:"temperature"`
	Rainfall       string `json:"rainfall"`
	Humidity       string `json:"humidity"`
	SolarRadiation string `json:"solar_radiation"`
}

type BloomOutlook struct {
	Probability     string  `json:"probability"`
	ConfidenceScore float64 `json:"confidence_score" validate:"gte=0,lte=100"`
	Reason          string  `json:"reason"`
}

// Insight is the bloom outlook document composed by the model.
type Insight struct {
	Location       InsightLocation `json:"location"`
	FactorSummary  FactorSummary   `json:"factor_summary"`
	BloomOutlook   BloomOutlook    `json:"bloom_outlook"`
	Recommendation string          `json:"recommendation" validate:"required"`
}

// Service turns climate summaries into model backed advice.
//
// Every model answer is decoded into a typed value and validated before use.
// Each operation declares its own fallback: crop prediction serves
// FallbackCrops, insights have none and report ErrUnparsableAIResponse.
type Service struct {
	climate   ClimateSource
	generator Generator
	log       zerolog.Logger
}

// NewService creates a Service. A nil generator makes every operation fail
// with climate.ErrConfiguration.
func NewService(source ClimateSource, generator Generator, log zerolog.Logger) *Service {
	return &Service{
		climate:   source,
		generator: generator,
		log:       log,
	}
}

// PredictCrops suggests crops for place from last month's climate.
func (s *Service) PredictCrops(ctx context.Context, place string) (CropReport, error) {
	if err := s.configured(); err != nil {
		return CropReport{}, err
	}

	summary, err := s.climate.CropClimate(ctx, place)
	if err != nil {
		return CropReport{}, err
	}

	prompt, err := buildCropPrompt(place, summary)
	if err != nil {
		return CropReport{}, err
	}
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return CropReport{}, err
	}

	var crops []Crop
	if err := decodeModelJSON(text, &crops); err != nil {
		s.log.Warn().Err(err).Str("place", place).Msg("serving fallback crop list")
		crops = FallbackCrops
	}

	return CropReport{
		Place:       place,
		Date:        s.climate.Now().UTC().Format("2006-01-02"),
		ClimateData: summary,
		Crops:       crops,
	}, nil
}

// Insights asks the model for a bloom outlook over the last two weeks.
func (s *Service) Insights(ctx context.Context, place string) (Insight, error) {
	if err := s.configured(); err != nil {
		return Insight{}, err
	}

	breakdown, err := s.climate.PastWeather(ctx, place, insightDays)
	if err != nil {
		return Insight{}, err
	}

	prompt, err := buildInsightsPrompt(breakdown)
	if err != nil {
		return Insight{}, err
	}
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return Insight{}, err
	}

	var insight Insight
	if err := decodeModelJSON(text, &insight); err != nil {
		s.log.Error().Err(err).Str("place", place).Msg("insight response rejected")
		return Insight{}, err
	}
	return insight, nil
}

func (s *Service) configured() error {
	if s.generator == nil {
		return fmt.Errorf("%w: GEMINI_API_KEY not configured", climate.ErrConfiguration)
	}
	return nil
}

// decodeModelJSON strips markdown fences, decodes text into v and validates
// the result. Any failure is reported as climate.ErrUnparsableAIResponse.
func decodeModelJSON(text string, v any) error {
	if err := json.Unmarshal([]byte(common.StripCodeFences(text)), v); err != nil {
		return fmt.Errorf("%w: %w", climate.ErrUnparsableAIResponse, err)
	}

	var err error
	switch val := v.(type) {
	case *[]Crop:
		if len(*val) == 0 {
			return fmt.Errorf("%w: empty crop list", climate.ErrUnparsableAIResponse)
		}
		for i := range *val {
			if err = validate.Struct((*val)[i]); err != nil {
				break
			}
		}
	default:
		err = validate.Struct(v)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", climate.ErrUnparsableAIResponse, err)
	}
	return nil
}
