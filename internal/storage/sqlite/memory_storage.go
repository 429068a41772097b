package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/models"
)

// MemoryStorage implements interfaces.MemoryStorage using SQLite
type MemoryStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewMemoryStorage creates a new memory storage instance
func NewMemoryStorage(db *SQLiteDB, logger arbor.ILogger) *MemoryStorage {
	return &MemoryStorage{db: db, logger: logger}
}

// Create stores a new rationale note and returns it with id and joined
// country fields populated
func (s *MemoryStorage) Create(ctx context.Context, note *models.MemoryNote) (*models.MemoryNote, error) {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}

	tagsJSON, err := note.MarshalTags()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	applicableJSON, err := note.MarshalApplicableCountryIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal applicable country ids: %w", err)
	}

	result, err := s.db.DB().ExecContext(ctx, `
		INSERT INTO rationale_memory (country_id, title, content, tags, applicable_country_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		note.CountryID, note.Title, note.Content, tagsJSON, applicableJSON, note.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create memory note: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve memory note id: %w", err)
	}

	return s.Get(ctx, id)
}

// Get retrieves a rationale note by id
func (s *MemoryStorage) Get(ctx context.Context, id int64) (*models.MemoryNote, error) {
	row := s.db.DB().QueryRowContext(ctx, memorySelect+` WHERE m.id = ?`, id)

	note, err := scanMemoryNote(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrMemoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get memory note %d: %w", id, err)
	}
	return note, nil
}

// List returns all rationale notes, newest first
func (s *MemoryStorage) List(ctx context.Context) ([]*models.MemoryNote, error) {
	rows, err := s.db.DB().QueryContext(ctx, memorySelect+` ORDER BY m.created_at DESC, m.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list memory notes: %w", err)
	}
	defer rows.Close()

	notes := []*models.MemoryNote{}
	for rows.Next() {
		note, err := scanMemoryNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memory note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// Update rewrites an existing note's mutable fields
func (s *MemoryStorage) Update(ctx context.Context, note *models.MemoryNote) (*models.MemoryNote, error) {
	tagsJSON, err := note.MarshalTags()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	applicableJSON, err := note.MarshalApplicableCountryIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal applicable country ids: %w", err)
	}

	result, err := s.db.DB().ExecContext(ctx, `
		UPDATE rationale_memory
		SET country_id = ?, title = ?, content = ?, tags = ?, applicable_country_ids = ?
		WHERE id = ?`,
		note.CountryID, note.Title, note.Content, tagsJSON, applicableJSON, note.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update memory note %d: %w", note.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve update result: %w", err)
	}
	if affected == 0 {
		return nil, models.ErrMemoryNotFound
	}

	return s.Get(ctx, note.ID)
}

// Delete removes a rationale note
func (s *MemoryStorage) Delete(ctx context.Context, id int64) error {
	result, err := s.db.DB().ExecContext(ctx, `DELETE FROM rationale_memory WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete memory note %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to resolve delete result: %w", err)
	}
	if affected == 0 {
		return models.ErrMemoryNotFound
	}
	return nil
}

const memorySelect = `
	SELECT m.id, m.country_id, m.title, m.content, m.tags, m.applicable_country_ids, m.created_at,
		c.name, c.iso2
	FROM rationale_memory m
	LEFT JOIN countries c ON c.id = m.country_id`

func scanMemoryNote(row rowScanner) (*models.MemoryNote, error) {
	var note models.MemoryNote
	var countryID sql.NullInt64
	var tagsJSON, applicableJSON string
	var createdAt int64
	var countryName, countryISO2 sql.NullString

	if err := row.Scan(&note.ID, &countryID, &note.Title, &note.Content,
		&tagsJSON, &applicableJSON, &createdAt, &countryName, &countryISO2); err != nil {
		return nil, err
	}

	if countryID.Valid {
		note.CountryID = &countryID.Int64
	}
	note.CreatedAt = time.Unix(createdAt, 0).UTC()
	note.CountryName = countryName.String
	note.CountryISO2 = countryISO2.String
	note.UnmarshalTags(tagsJSON)
	note.UnmarshalApplicableCountryIDs(applicableJSON)
	return &note, nil
}
