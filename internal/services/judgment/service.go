// Package judgment produces structured sovereign credit judgments through
// the Anthropic Claude API.
package judgment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/common"
	"github.com/ternarybob/sovran/internal/interfaces"
	"github.com/ternarybob/sovran/internal/models"
)

// Service implements interfaces.JudgmentService using Claude.
type Service struct {
	config    *common.ClaudeConfig
	logger    arbor.ILogger
	client    anthropic.Client
	enabled   bool
	timeout   time.Duration
	maxTokens int
}

// NewService creates a Claude judgment service. A missing API key yields a
// disabled service whose Assess returns models.ErrProviderDisabled; the
// application still starts so that read paths keep working.
func NewService(config *common.ClaudeConfig, logger arbor.ILogger) (*Service, error) {
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	service := &Service{
		config:    config,
		logger:    logger,
		enabled:   config.APIKey != "",
		timeout:   timeout,
		maxTokens: maxTokens,
	}

	if service.enabled {
		service.client = anthropic.NewClient(option.WithAPIKey(config.APIKey))
		logger.Debug().
			Str("model", config.Model).
			Dur("timeout", timeout).
			Int("max_tokens", maxTokens).
			Msg("Claude judgment service initialized")
	} else {
		logger.Warn().Msg("No Anthropic API key configured, judgment service disabled")
	}

	return service, nil
}

// Assess sends the evidence bundle to the model and parses its structured
// response. A grade outside the fixed scale fails with
// models.ErrInvalidJudgment; an invalid outlook is normalized instead.
func (s *Service) Assess(ctx context.Context, evidence *interfaces.AssessmentEvidence) (*models.Judgment, error) {
	if !s.enabled {
		return nil, models.ErrProviderDisabled
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(FormatEvidence(evidence))),
		},
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}

	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return nil, fmt.Errorf("judgment API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	if response.Len() == 0 {
		return nil, fmt.Errorf("judgment returned no text content")
	}

	judgment, err := ParseJudgment(response.String())
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("country", evidence.CountryName).
		Str("rating", judgment.Grade).
		Str("outlook", judgment.Outlook).
		Dur("duration", time.Since(startTime)).
		Msg("Judgment produced")

	return judgment, nil
}
