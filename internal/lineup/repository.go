package lineup

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Repository persists lineups.
type Repository interface {
	// Get returns the user's lineup or ErrNotFound.
	Get(ctx context.Context, userID string) (*Lineup, error)
	// GetMany returns the lineups of every user that has one.
	GetMany(ctx context.Context, userIDs []string) (map[string]*Lineup, error)
	// Set replaces the user's lineup.
	Set(ctx context.Context, userID string, cardIDs []string) error
	// Add appends a card to the user's lineup, creating it when absent.
	Add(ctx context.Context, userID, cardID string) (*Lineup, error)
	// Remove deletes the card at a 1-based position and returns its ID.
	Remove(ctx context.Context, userID string, position int) (string, error)
	// Clear deletes the user's lineup.
	Clear(ctx context.Context, userID string) error
}

// backend is the raw storage a Repository applies the lineup rules over.
type backend interface {
	load(ctx context.Context, userID string) (*Lineup, error)
	save(ctx context.Context, l *Lineup) error
	remove(ctx context.Context, userID string) error
}

// repo applies the lineup rules over a backend. Read-modify-write operations
// for the same user are serialized in-process.
type repo struct {
	b     backend
	locks sync.Map // userID -> *sync.Mutex
}

func (r *repo) lock(userID string) func() {
	m, _ := r.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (r *repo) Get(ctx context.Context, userID string) (*Lineup, error) {
	if userID == "" {
		return nil, errors.New("lineup: user id is required")
	}
	return r.b.load(ctx, userID)
}

func (r *repo) GetMany(ctx context.Context, userIDs []string) (map[string]*Lineup, error) {
	found := make([]*Lineup, len(userIDs))
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range userIDs {
		g.Go(func() error {
			l, err := r.Get(ctx, id)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("getting lineup for %s: %w", id, err)
			}
			found[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string]*Lineup, len(userIDs))
	for _, l := range found {
		if l != nil {
			out[l.UserID] = l
		}
	}
	return out, nil
}

func (r *repo) Set(ctx context.Context, userID string, cardIDs []string) error {
	if userID == "" {
		return errors.New("lineup: user id is required")
	}
	if err := Validate(cardIDs); err != nil {
		return fmt.Errorf("setting lineup for %s: %w", userID, err)
	}
	defer r.lock(userID)()
	return r.b.save(ctx, &Lineup{UserID: userID, Cards: append([]string(nil), cardIDs...)})
}

func (r *repo) Add(ctx context.Context, userID, cardID string) (*Lineup, error) {
	if userID == "" || cardID == "" {
		return nil, errors.New("lineup: user id and card id are required")
	}
	defer r.lock(userID)()
	l, err := r.b.load(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		l, err = &Lineup{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := l.Add(cardID); err != nil {
		return nil, err
	}
	if err := r.b.save(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *repo) Remove(ctx context.Context, userID string, position int) (string, error) {
	defer r.lock(userID)()
	l, err := r.b.load(ctx, userID)
	if err != nil {
		return "", err
	}
	id, err := l.Remove(position)
	if err != nil {
		return "", err
	}
	if err := r.b.save(ctx, l); err != nil {
		return "", err
	}
	return id, nil
}

func (r *repo) Clear(ctx context.Context, userID string) error {
	defer r.lock(userID)()
	return r.b.remove(ctx, userID)
}
