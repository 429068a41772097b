package engine

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/interfaces"
	"github.com/ternarybob/sovran/internal/models"
)

// headlineLimit caps how many cached headlines enter the evidence bundle.
const headlineLimit = 10

// Engine implements interfaces.RatingEngine.
type Engine struct {
	storage      interfaces.StorageManager
	fundamentals interfaces.FundamentalsService
	memories     interfaces.MemoryService
	judgment     interfaces.JudgmentService
	research     interfaces.ResearchService
	logger       arbor.ILogger
	validate     *validator.Validate
}

// NewEngine creates the rating pipeline. research may be nil; the brief is
// best-effort either way.
func NewEngine(
	storage interfaces.StorageManager,
	fundamentals interfaces.FundamentalsService,
	memories interfaces.MemoryService,
	judgment interfaces.JudgmentService,
	research interfaces.ResearchService,
	logger arbor.ILogger,
) *Engine {
	return &Engine{
		storage:      storage,
		fundamentals: fundamentals,
		memories:     memories,
		judgment:     judgment,
		research:     research,
		logger:       logger,
		validate:     validator.New(),
	}
}

// RunRating executes the full pipeline for one country: assemble evidence,
// obtain a judgment, score and commit. Nothing is written unless the
// judgment succeeds, so a failed run leaves the prior rating authoritative.
func (e *Engine) RunRating(ctx context.Context, iso2 string) (*models.RatingOutcome, error) {
	country, err := e.storage.Countries().GetByISO2(ctx, iso2)
	if err != nil {
		return nil, err
	}

	evidence, err := e.assembleEvidence(ctx, country)
	if err != nil {
		return nil, err
	}

	judgment, err := e.judgment.Assess(ctx, evidence)
	if err != nil {
		return nil, err
	}

	composite := CompositeScore(judgment.PillarScores)

	rating := &models.Rating{
		CountryID:      country.ID,
		Grade:          judgment.Grade,
		Outlook:        judgment.Outlook,
		Scores:         judgment.PillarScores,
		CompositeScore: &composite,
		AIRationale:    judgment.Rationale,
		PillarAnalysis: judgment.PillarAnalysis,
		Source:         models.SourceAI,
	}

	committed, err := e.storage.Ratings().Commit(ctx, rating)
	if err != nil {
		return nil, fmt.Errorf("failed to commit rating: %w", err)
	}

	e.logger.Info().
		Str("country", iso2).
		Str("rating", committed.Grade).
		Str("outlook", committed.Outlook).
		Msg("Rating committed")

	return &models.RatingOutcome{
		Country:            country,
		Rating:             committed,
		ApplicableMemories: len(evidence.Memories),
	}, nil
}

// assembleEvidence gathers what is known about the country. Fundamentals
// trigger one on-demand sync when absent; every other gap degrades to an
// empty section rather than failing the run.
func (e *Engine) assembleEvidence(ctx context.Context, country *models.Country) (*interfaces.AssessmentEvidence, error) {
	fundamentals, err := e.storage.Fundamentals().Latest(ctx, country.ID)
	if err != nil {
		return nil, err
	}
	if fundamentals == nil {
		e.logger.Info().Str("country", country.ISO2).Msg("No fundamentals on file, syncing before rating")
		if _, err := e.fundamentals.SyncCountry(ctx, country.ISO2); err != nil {
			e.logger.Warn().Str("country", country.ISO2).Err(err).Msg("On-demand fundamentals sync failed")
		}
		fundamentals, err = e.storage.Fundamentals().Latest(ctx, country.ID)
		if err != nil {
			return nil, err
		}
	}

	headlines, err := e.storage.News().Recent(ctx, country.ID, headlineLimit)
	if err != nil {
		return nil, err
	}

	memories, err := e.memories.ApplicableTo(ctx, country.ID)
	if err != nil {
		return nil, err
	}

	brief := ""
	if e.research != nil {
		brief, err = e.research.Brief(ctx, country.Name)
		if err != nil {
			e.logger.Debug().Str("country", country.ISO2).Err(err).Msg("Research brief unavailable, proceeding without it")
			brief = ""
		}
	}

	return &interfaces.AssessmentEvidence{
		CountryName:   country.Name,
		Fundamentals:  fundamentals,
		Headlines:     headlines,
		Memories:      memories,
		ResearchBrief: brief,
	}, nil
}

// ApplyOverride commits an analyst's manual rating and records the
// rationale as a memory note so future AI runs see it as evidence.
func (e *Engine) ApplyOverride(ctx context.Context, iso2 string, req *models.OverrideRequest) (*models.OverrideOutcome, error) {
	country, err := e.storage.Countries().GetByISO2(ctx, iso2)
	if err != nil {
		return nil, err
	}

	if err := e.validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return nil, &models.ValidationError{
				Field:  errs[0].Field(),
				Reason: "is required",
			}
		}
		return nil, err
	}
	if !models.IsValidGrade(req.Grade) {
		return nil, &models.ValidationError{Field: "rating", Reason: fmt.Sprintf("%q is not on the rating scale", req.Grade)}
	}
	if !models.IsValidOutlook(req.Outlook) {
		return nil, &models.ValidationError{Field: "outlook", Reason: fmt.Sprintf("%q is not a valid outlook", req.Outlook)}
	}

	rating := &models.Rating{
		CountryID:         country.ID,
		Grade:             req.Grade,
		Outlook:           req.Outlook,
		Source:            models.SourceOverride,
		OverrideRationale: req.Rationale,
	}

	committed, err := e.storage.Ratings().Commit(ctx, rating)
	if err != nil {
		return nil, fmt.Errorf("failed to commit override: %w", err)
	}

	title := req.Title
	if title == "" {
		title = fmt.Sprintf("Override: %s %s (%s)", country.Name, req.Grade, req.Outlook)
	}

	note, err := e.storage.Memories().Create(ctx, &models.MemoryNote{
		CountryID:            &country.ID,
		Title:                title,
		Content:              req.Rationale,
		Tags:                 req.Tags,
		ApplicableCountryIDs: req.ApplicableCountryIDs,
	})
	if err != nil {
		// The override itself is committed; surface the note failure rather
		// than unwinding an authoritative rating.
		return nil, fmt.Errorf("override committed but memory note failed: %w", err)
	}

	e.logger.Info().
		Str("country", iso2).
		Str("rating", committed.Grade).
		Int64("memory_id", note.ID).
		Msg("Override applied")

	return &models.OverrideOutcome{Rating: committed, Memory: note}, nil
}
