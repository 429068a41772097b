// Package memory manages analyst rationale notes and their selection as
// rating evidence.
package memory

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/interfaces"
	"github.com/ternarybob/sovran/internal/models"
)

// Service implements interfaces.MemoryService.
type Service struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewService creates a rationale note service.
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{storage: storage, logger: logger}
}

// ApplicableTo returns the notes that count as evidence for the country:
// bound to it directly or listing it as applicable. Filtering happens here
// rather than in SQL because the applicability list is a JSON column.
func (s *Service) ApplicableTo(ctx context.Context, countryID int64) ([]*models.MemoryNote, error) {
	all, err := s.storage.Memories().List(ctx)
	if err != nil {
		return nil, err
	}

	applicable := []*models.MemoryNote{}
	for _, note := range all {
		if note.AppliesTo(countryID) {
			applicable = append(applicable, note)
		}
	}
	return applicable, nil
}

// Create validates and stores a new note.
func (s *Service) Create(ctx context.Context, note *models.MemoryNote) (*models.MemoryNote, error) {
	if err := validate(note); err != nil {
		return nil, err
	}

	created, err := s.storage.Memories().Create(ctx, note)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("id", created.ID).Str("title", created.Title).Msg("Memory note created")
	return created, nil
}

// Get retrieves a note by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.MemoryNote, error) {
	return s.storage.Memories().Get(ctx, id)
}

// List returns all notes, newest first.
func (s *Service) List(ctx context.Context) ([]*models.MemoryNote, error) {
	return s.storage.Memories().List(ctx)
}

// Update validates and rewrites an existing note.
func (s *Service) Update(ctx context.Context, note *models.MemoryNote) (*models.MemoryNote, error) {
	if err := validate(note); err != nil {
		return nil, err
	}
	return s.storage.Memories().Update(ctx, note)
}

// Delete removes a note.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.storage.Memories().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("id", id).Msg("Memory note deleted")
	return nil
}

func validate(note *models.MemoryNote) error {
	if strings.TrimSpace(note.Title) == "" {
		return &models.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(note.Content) == "" {
		return &models.ValidationError{Field: "content", Reason: "must not be empty"}
	}
	return nil
}
