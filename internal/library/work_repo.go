package library

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mediafold/mediafold/internal/media"
)

// WorkRepository handles normalized-work database operations. Works are
// recomputed from scratch every normalization pass, so persistence replaces
// the whole set rather than patching rows.
type WorkRepository struct {
	db *DB
}

// NewWorkRepository creates a new work repository
func NewWorkRepository(db *DB) *WorkRepository {
	return &WorkRepository{db: db}
}

// ReplaceAll swaps the stored library for the given works in one
// transaction.
func (r *WorkRepository) ReplaceAll(works []media.Work) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM variants`); err != nil {
		return fmt.Errorf("failed to clear variants: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM works`); err != nil {
		return fmt.Errorf("failed to clear works: %w", err)
	}

	for i := range works {
		if err := insertWork(tx, &works[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertWork(tx *sql.Tx, w *media.Work) error {
	var authorityType sql.NullString
	var authorityID sql.NullInt64
	if w.AuthorityRef != nil {
		authorityType = sql.NullString{String: string(w.AuthorityRef.Type), Valid: true}
		authorityID = sql.NullInt64{Int64: int64(w.AuthorityRef.ID), Valid: true}
	}

	var workID int64
	err := tx.QueryRow(
		`INSERT INTO works (canonical_id, title, year, kind, primary_variant_key, authority_type, authority_id, poster_path, backdrop_path)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		nullString(w.CanonicalID), w.Title, nullYear(w.Year), string(w.Kind),
		w.PrimaryVariantKey, authorityType, authorityID, w.PosterPath, w.BackdropPath,
	).Scan(&workID)
	if err != nil {
		return fmt.Errorf("failed to insert work %q: %w", w.Title, err)
	}

	for pos, v := range w.Variants {
		hints, err := json.Marshal(v.PlayableHints)
		if err != nil {
			return fmt.Errorf("failed to encode playable hints for %s: %w", v.Key, err)
		}
		_, err = tx.Exec(
			`INSERT INTO variants (work_id, variant_key, quality, resolution_height, language, original_with_subs, pipeline, source_item_id, source_label, playable_hints, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			workID, v.Key, string(v.Quality), v.ResolutionHeight, v.Language,
			v.OriginalWithSubs, string(v.Pipeline), v.SourceItemID, v.SourceLabel,
			string(hints), pos,
		)
		if err != nil {
			return fmt.Errorf("failed to insert variant %s: %w", v.Key, err)
		}
	}

	return nil
}

// GetByID retrieves a stored work with its ranked variants.
func (r *WorkRepository) GetByID(id int64) (*StoredWork, error) {
	w := &StoredWork{ID: id}
	var canonicalID sql.NullString
	var year sql.NullInt64
	var authorityType sql.NullString
	var authorityID sql.NullInt64
	var kind string

	err := r.db.QueryRow(
		`SELECT canonical_id, title, year, kind, primary_variant_key, authority_type, authority_id, poster_path, backdrop_path, created_at
		 FROM works WHERE id = $1`, id,
	).Scan(&canonicalID, &w.Title, &year, &kind, &w.PrimaryVariantKey,
		&authorityType, &authorityID, &w.PosterPath, &w.BackdropPath, &w.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work: %w", err)
	}

	w.CanonicalID = canonicalID.String
	w.Kind = media.Kind(kind)
	if year.Valid {
		y := int(year.Int64)
		w.Year = &y
	}
	if authorityType.Valid && authorityID.Valid {
		w.AuthorityRef = &media.AuthorityRef{
			Type: media.AuthorityRefType(authorityType.String),
			ID:   int(authorityID.Int64),
		}
	}

	variants, err := r.loadVariants(id)
	if err != nil {
		return nil, err
	}
	w.Variants = variants

	return w, nil
}

// List returns all stored works ordered by insertion, variants included.
func (r *WorkRepository) List() ([]*StoredWork, error) {
	rows, err := r.db.Query(`SELECT id FROM works ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list works: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan work id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	works := make([]*StoredWork, 0, len(ids))
	for _, id := range ids {
		w, err := r.GetByID(id)
		if err != nil {
			return nil, err
		}
		if w != nil {
			works = append(works, w)
		}
	}
	return works, nil
}

// UpdateEnrichment persists the fields an authority match may change.
func (r *WorkRepository) UpdateEnrichment(id int64, w *media.Work) error {
	var authorityType sql.NullString
	var authorityID sql.NullInt64
	if w.AuthorityRef != nil {
		authorityType = sql.NullString{String: string(w.AuthorityRef.Type), Valid: true}
		authorityID = sql.NullInt64{Int64: int64(w.AuthorityRef.ID), Valid: true}
	}

	_, err := r.db.Exec(
		`UPDATE works SET title = $1, year = $2, authority_type = $3, authority_id = $4, poster_path = $5, backdrop_path = $6 WHERE id = $7`,
		w.Title, nullYear(w.Year), authorityType, authorityID, w.PosterPath, w.BackdropPath, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update enrichment: %w", err)
	}
	return nil
}

// Counts returns the number of stored works and variants, for metrics.
func (r *WorkRepository) Counts() (works, variants int64, err error) {
	if err = r.db.QueryRow(`SELECT COUNT(*) FROM works`).Scan(&works); err != nil {
		return 0, 0, fmt.Errorf("failed to count works: %w", err)
	}
	if err = r.db.QueryRow(`SELECT COUNT(*) FROM variants`).Scan(&variants); err != nil {
		return 0, 0, fmt.Errorf("failed to count variants: %w", err)
	}
	return works, variants, nil
}

func (r *WorkRepository) loadVariants(workID int64) ([]media.Variant, error) {
	rows, err := r.db.Query(
		`SELECT variant_key, quality, resolution_height, language, original_with_subs, pipeline, source_item_id, source_label, playable_hints
		 FROM variants WHERE work_id = $1 ORDER BY position`, workID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	defer rows.Close()

	var variants []media.Variant
	for rows.Next() {
		var v media.Variant
		var quality, pipeline, hints string
		if err := rows.Scan(&v.Key, &quality, &v.ResolutionHeight, &v.Language,
			&v.OriginalWithSubs, &pipeline, &v.SourceItemID, &v.SourceLabel, &hints); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		v.Quality = media.QualityTag(quality)
		v.Pipeline = media.Pipeline(pipeline)
		if hints != "" && hints != "null" {
			if err := json.Unmarshal([]byte(hints), &v.PlayableHints); err != nil {
				return nil, fmt.Errorf("failed to decode playable hints for %s: %w", v.Key, err)
			}
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullYear(y *int) sql.NullInt64 {
	if y == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*y), Valid: true}
}
