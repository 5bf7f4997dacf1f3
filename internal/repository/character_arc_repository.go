package repository

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"clone-llm/internal/domain"
)

// CharacterArcRepository persists CharacterArcState across runs, adapted
// from the teacher's character repository: arc points, relationship map,
// and backstory fields are stored as JSON alongside the scalar fields used
// for lookup/ordering, since the arc state's shape (nested history,
// open-ended relationship map) doesn't map cleanly onto a normalized table
// the way the teacher's flat trust/intimacy/respect columns did.
type CharacterArcRepository interface {
	Upsert(ctx context.Context, storyID string, state *domain.CharacterArcState) error
	ListByStory(ctx context.Context, storyID string) ([]*domain.CharacterArcState, error)
	FindByName(ctx context.Context, storyID, name string) (*domain.CharacterArcState, error)
}

type PgCharacterArcRepository struct {
	pool *pgxpool.Pool
}

func NewPgCharacterArcRepository(pool *pgxpool.Pool) *PgCharacterArcRepository {
	return &PgCharacterArcRepository{pool: pool}
}

func (r *PgCharacterArcRepository) Upsert(ctx context.Context, storyID string, state *domain.CharacterArcState) error {
	arcPoints, err := json.Marshal(state.ArcPoints)
	if err != nil {
		return err
	}
	relationships, err := json.Marshal(state.RelationshipMap)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO character_arc_states (
			story_id, player_id, name, role, arc_position, current_emotional_state, arc_points, relationship_map
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (story_id, player_id) DO UPDATE SET
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			arc_position = EXCLUDED.arc_position,
			current_emotional_state = EXCLUDED.current_emotional_state,
			arc_points = EXCLUDED.arc_points,
			relationship_map = EXCLUDED.relationship_map
	`
	_, err = r.pool.Exec(ctx, query,
		storyID,
		state.PlayerID,
		state.Name,
		state.Role,
		state.ArcPosition,
		state.CurrentEmotionalState,
		arcPoints,
		relationships,
	)
	return err
}

func (r *PgCharacterArcRepository) ListByStory(ctx context.Context, storyID string) ([]*domain.CharacterArcState, error) {
	const query = `
		SELECT player_id, name, role, arc_position, current_emotional_state, arc_points, relationship_map
		FROM character_arc_states
		WHERE story_id = $1
		ORDER BY arc_position DESC, name ASC
	`
	rows, err := r.pool.Query(ctx, query, storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCharacterArcs(rows)
}

func (r *PgCharacterArcRepository) FindByName(ctx context.Context, storyID, name string) (*domain.CharacterArcState, error) {
	const query = `
		SELECT player_id, name, role, arc_position, current_emotional_state, arc_points, relationship_map
		FROM character_arc_states
		WHERE story_id = $1 AND LOWER(name) = LOWER($2)
	`
	rows, err := r.pool.Query(ctx, query, storyID, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states, err := scanCharacterArcs(rows)
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, nil
	}
	return states[0], nil
}

func scanCharacterArcs(rows pgxRows) ([]*domain.CharacterArcState, error) {
	var states []*domain.CharacterArcState
	for rows.Next() {
		var (
			s             domain.CharacterArcState
			arcPointsRaw  []byte
			relationsRaw  []byte
		)
		if err := rows.Scan(
			&s.PlayerID,
			&s.Name,
			&s.Role,
			&s.ArcPosition,
			&s.CurrentEmotionalState,
			&arcPointsRaw,
			&relationsRaw,
		); err != nil {
			return nil, err
		}
		if len(arcPointsRaw) > 0 {
			if err := json.Unmarshal(arcPointsRaw, &s.ArcPoints); err != nil {
				return nil, err
			}
		}
		if len(relationsRaw) > 0 {
			if err := json.Unmarshal(relationsRaw, &s.RelationshipMap); err != nil {
				return nil, err
			}
		}
		states = append(states, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return states, nil
}
