package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"clone-llm/internal/domain"
)

// BeatRepository persists generated beats and supports similarity recall
// over their raw text, the optional embedding-backed memory hook spec §9
// calls out, used by the enricher's rewrite prompt (the same role the
// teacher's narrative-memory search played, scaled from one clone's
// memories to one story's beats).
type BeatRepository interface {
	Create(ctx context.Context, storyID string, beat domain.StoryBeat, embedding pgvector.Vector) error
	SearchSimilar(ctx context.Context, storyID string, queryEmbedding pgvector.Vector, k int) ([]domain.StoryBeat, error)
	ListByCharacter(ctx context.Context, storyID, characterID string) ([]domain.StoryBeat, error)
}

// PgBeatRepository stores beats in Postgres with a pgvector column over
// raw_text embeddings, mirroring the teacher's PgMemoryRepository shape.
type PgBeatRepository struct {
	pool *pgxpool.Pool
}

func NewPgBeatRepository(pool *pgxpool.Pool) *PgBeatRepository {
	return &PgBeatRepository{pool: pool}
}

func (r *PgBeatRepository) Create(ctx context.Context, storyID string, beat domain.StoryBeat, embedding pgvector.Vector) error {
	const query = `
		INSERT INTO story_beats (
			id, story_id, beat_index, character_id, character_name, raw_text,
			emotional_tone, theme_resonance, quality_score, embedding, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			raw_text = EXCLUDED.raw_text,
			emotional_tone = EXCLUDED.emotional_tone,
			theme_resonance = EXCLUDED.theme_resonance,
			quality_score = EXCLUDED.quality_score,
			embedding = EXCLUDED.embedding
	`
	_, err := r.pool.Exec(ctx, query,
		beat.BeatID,
		storyID,
		beat.BeatIndex,
		beat.CharacterID,
		beat.CharacterName,
		beat.RawText,
		beat.EmotionalTone,
		beat.ThemeResonance,
		beat.QualityScore,
		embedding,
		beat.Timestamp,
	)
	return err
}

func (r *PgBeatRepository) SearchSimilar(ctx context.Context, storyID string, queryEmbedding pgvector.Vector, k int) ([]domain.StoryBeat, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT id, beat_index, character_id, character_name, raw_text, emotional_tone, theme_resonance, quality_score, created_at
		FROM story_beats
		WHERE story_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, storyID, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBeats(rows)
}

func (r *PgBeatRepository) ListByCharacter(ctx context.Context, storyID, characterID string) ([]domain.StoryBeat, error) {
	const query = `
		SELECT id, beat_index, character_id, character_name, raw_text, emotional_tone, theme_resonance, quality_score, created_at
		FROM story_beats
		WHERE story_id = $1 AND character_id = $2
		ORDER BY beat_index ASC
	`
	rows, err := r.pool.Query(ctx, query, storyID, characterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBeats(rows)
}

func scanBeats(rows pgxRows) ([]domain.StoryBeat, error) {
	var beats []domain.StoryBeat
	for rows.Next() {
		var b domain.StoryBeat
		if err := rows.Scan(
			&b.BeatID,
			&b.BeatIndex,
			&b.CharacterID,
			&b.CharacterName,
			&b.RawText,
			&b.EmotionalTone,
			&b.ThemeResonance,
			&b.QualityScore,
			&b.Timestamp,
		); err != nil {
			return nil, err
		}
		beats = append(beats, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return beats, nil
}

// pgxRows is a minimal interface over pgx's row cursor, kept narrow so
// scanning logic is easy to exercise without a live pool in tests.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
