package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
	"github.com/cory-johannsen/cardclash/internal/roster"
)

// ErrCardNotFound is returned when a card lookup yields no results.
var ErrCardNotFound = roster.ErrCardNotFound

// ErrInvalidCard is returned when a card cannot be stored.
var ErrInvalidCard = errors.New("invalid card")

// ErrCardExists is returned by Create when the card ID is already stored.
var ErrCardExists = errors.New("card already exists")

// CardRepository stores collectible cards. It implements roster.Store.
type CardRepository struct {
	db *pgxpool.Pool
}

// NewCardRepository creates a CardRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCardRepository(db *pgxpool.Pool) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = `id, name, series, class, level, hp, attack, defense, speed, ability_key`

// Create inserts a card. An empty c.ID is assigned by the database.
//
// Precondition: c.Name must be non-empty; c.ID, when set, must be a UUID.
// Postcondition: Returns the stored card with ID set.
func (r *CardRepository) Create(ctx context.Context, c roster.Card) (roster.Card, error) {
	if c.Name == "" {
		return roster.Card{}, fmt.Errorf("%w: name must not be empty", ErrInvalidCard)
	}
	if c.Class == ruleset.ClassUnknown {
		return roster.Card{}, fmt.Errorf("%w: %s has no class", ErrInvalidCard, c.Name)
	}
	id := uuid.New()
	if c.ID != "" {
		parsed, err := uuid.Parse(c.ID)
		if err != nil {
			return roster.Card{}, fmt.Errorf("%w: id %q: %v", ErrInvalidCard, c.ID, err)
		}
		id = parsed
	}
	if c.Level < 1 {
		c.Level = 1
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING `+cardColumns,
		id, c.Name, c.Series, c.Class.String(), c.Level,
		c.Stats.HP, c.Stats.Attack, c.Stats.Defense, c.Stats.Speed, c.AbilityKey,
	)
	out, err := scanCard(row)
	if err != nil {
		if isDuplicateKeyError(err) {
			return roster.Card{}, fmt.Errorf("%w: %w: id %s", ErrInvalidCard, ErrCardExists, id)
		}
		return roster.Card{}, fmt.Errorf("inserting card: %w", err)
	}
	return out, nil
}

// Get retrieves a card by ID.
//
// Postcondition: Returns the card or ErrCardNotFound.
func (r *CardRepository) Get(ctx context.Context, id string) (roster.Card, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return roster.Card{}, fmt.Errorf("card %q: %w", id, ErrCardNotFound)
	}
	c, err := scanCard(r.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, parsed))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return roster.Card{}, fmt.Errorf("card %s: %w", id, ErrCardNotFound)
		}
		return roster.Card{}, fmt.Errorf("loading card %s: %w", id, err)
	}
	return c, nil
}

// GetCards returns the cards whose IDs are in ids. IDs that are not UUIDs or
// not stored are omitted.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CardRepository) GetCards(ctx context.Context, ids []string) ([]roster.Card, error) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if parsed, err := uuid.Parse(id); err == nil {
			keys = append(keys, parsed.String())
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ANY($1::uuid[])`, keys)
	if err != nil {
		return nil, fmt.Errorf("loading cards: %w", err)
	}
	defer rows.Close()
	return collectCards(rows)
}

// SearchByName returns up to limit cards whose name contains term,
// case-insensitively, ordered by name.
//
// Precondition: limit must be > 0.
func (r *CardRepository) SearchByName(ctx context.Context, term string, limit int) ([]roster.Card, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+cardColumns+` FROM cards
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name ASC, id ASC
		LIMIT $2`,
		term, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching cards: %w", err)
	}
	defer rows.Close()
	return collectCards(rows)
}

func collectCards(rows pgx.Rows) ([]roster.Card, error) {
	cards := make([]roster.Card, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning card row: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func scanCard(row pgx.Row) (roster.Card, error) {
	var (
		c     roster.Card
		id    uuid.UUID
		class string
	)
	if err := row.Scan(&id, &c.Name, &c.Series, &class, &c.Level,
		&c.Stats.HP, &c.Stats.Attack, &c.Stats.Defense, &c.Stats.Speed, &c.AbilityKey); err != nil {
		return roster.Card{}, err
	}
	parsed, err := ruleset.ParseClass(class)
	if err != nil {
		return roster.Card{}, fmt.Errorf("card %s: %w", id, err)
	}
	c.ID = id.String()
	c.Class = parsed
	return c, nil
}

// Sample returns up to n random cards. It implements roster.Sampler.
//
// Precondition: n must be > 0.
func (r *CardRepository) Sample(ctx context.Context, n int) ([]roster.Card, error) {
	rows, err := r.db.Query(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY random() LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("sampling cards: %w", err)
	}
	defer rows.Close()
	return collectCards(rows)
}
