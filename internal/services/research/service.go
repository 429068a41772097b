// Package research supplies the optional web-augmented research brief
// through the Google Gemini API.
package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/common"
	"github.com/ternarybob/sovran/internal/models"
	"google.golang.org/genai"
)

// Service implements interfaces.ResearchService using Gemini with the
// Google Search grounding tool.
type Service struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
}

// NewService creates a Gemini research service. A missing API key yields a
// disabled service; callers treat the brief as best-effort and proceed
// without one.
func NewService(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*Service, error) {
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	service := &Service{
		config:  config,
		logger:  logger,
		timeout: timeout,
	}

	if config.APIKey == "" {
		logger.Warn().Msg("No Gemini API key configured, research service disabled")
		return service, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	service.client = client

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Msg("Gemini research service initialized")

	return service, nil
}

// Brief returns a short grounded summary of the country's current economic
// and political situation. Disabled service reports
// models.ErrProviderDisabled; callers degrade to an empty brief.
func (s *Service) Brief(ctx context.Context, countryName string) (string, error) {
	if s.client == nil {
		return "", models.ErrProviderDisabled
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Summarize the current economic and political situation of %s as it bears on sovereign creditworthiness. "+
			"Cover fiscal policy, external balances, monetary conditions and political stability. "+
			"Five to eight sentences, no preamble.", countryName)

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("research generation failed: %w", err)
	}

	var brief strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					brief.WriteString(part.Text)
				}
			}
			if brief.Len() > 0 {
				break
			}
		}
	}

	if brief.Len() == 0 {
		return "", fmt.Errorf("research returned no text content")
	}

	s.logger.Debug().
		Str("country", countryName).
		Int("length", brief.Len()).
		Msg("Research brief produced")

	return brief.String(), nil
}
