// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// KV is the durable key-value collaborator the cart persists into.
// Read returns (nil, nil) when no collection exists under the key.
type KV interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Observer is notified synchronously after each successful mutation
type Observer func(sessionID string, c Collection)

// Store owns the persisted cart collections and exposes derived aggregates.
// It is constructed once at application start and injected into consumers.
type Store struct {
	kv        KV
	keyPrefix string
	logger    *logrus.Logger

	mu        sync.Mutex
	observers map[int]Observer
	nextID    int
}

// NewStore creates a new cart store
func NewStore(kv KV, cfg *config.Config, logger *logrus.Logger) *Store {
	return &Store{
		kv:        kv,
		keyPrefix: cfg.Cart.KeyPrefix,
		logger:    logger,
		observers: make(map[int]Observer),
	}
}

// Subscribe registers a callback invoked after each successful mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// GetCollection returns the current persisted collection for the session,
// or an empty one when nothing has been stored yet.
func (s *Store) GetCollection(ctx context.Context, sessionID string) (*Collection, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for cart access")
	}

	data, err := s.kv.Read(ctx, s.key(sessionID))
	if err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to read cart collection")
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	if data == nil {
		now := time.Now().UTC()
		return &Collection{
			SessionID: sessionID,
			Lines:     []Line{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}

	var collection Collection
	if err := json.Unmarshal(data, &collection); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to decode cart collection")
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return &collection, nil
}

// Lines returns the current cart lines in insertion order
func (s *Store) Lines(ctx context.Context, sessionID string) ([]Line, error) {
	collection, err := s.GetCollection(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return collection.Lines, nil
}

// Subtotal returns the sum over lines of price * quantity
func (s *Store) Subtotal(ctx context.Context, sessionID string) (int64, error) {
	collection, err := s.GetCollection(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return collection.Subtotal(), nil
}

// ItemCount returns the sum of line quantities
func (s *Store) ItemCount(ctx context.Context, sessionID string) (int, error) {
	collection, err := s.GetCollection(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return collection.ItemCount(), nil
}

// AddLine adds a product to the cart. An existing line with the same
// (productID, size, color) merge key has its quantity incremented and keeps
// the price captured at first add; otherwise a new line is appended. The unit
// price resolves explicit override, then the size table, then the base price.
func (s *Store) AddLine(ctx context.Context, sessionID string, snap product.Snapshot, size, color string, quantity int, priceOverride *int64) (*Collection, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	// Read the latest persisted state before every mutation
	collection, err := s.GetCollection(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range collection.Lines {
		if collection.Lines[i].Matches(snap.ID, size, color) {
			collection.Lines[i].Quantity += quantity
			merged = true
			break
		}
	}

	if !merged {
		price := snap.PriceFor(size)
		if priceOverride != nil {
			price = *priceOverride
		}
		if price < 0 {
			price = 0
		}

		collection.Lines = append(collection.Lines, Line{
			ID:        uuid.New().String(),
			ProductID: snap.ID,
			Name:      snap.Name,
			ImageURL:  snap.MainImage,
			Size:      size,
			Color:     color,
			Price:     price,
			Quantity:  quantity,
			AddedAt:   time.Now().UTC(),
		})
	}

	if err := s.persist(ctx, sessionID, collection); err != nil {
		return nil, err
	}

	s.notify(sessionID, *collection)
	return collection, nil
}

// UpdateQuantity replaces a line's quantity. A quantity of zero or below
// removes the line. A missing line is a benign no-op.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*Collection, error) {
	if quantity <= 0 {
		return s.RemoveLine(ctx, sessionID, lineID)
	}

	collection, err := s.GetCollection(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range collection.Lines {
		if collection.Lines[i].ID == lineID {
			collection.Lines[i].Quantity = quantity
			found = true
			break
		}
	}

	// Tolerates double-clicks and stale UI state
	if !found {
		return collection, nil
	}

	if err := s.persist(ctx, sessionID, collection); err != nil {
		return nil, err
	}

	s.notify(sessionID, *collection)
	return collection, nil
}

// RemoveLine deletes a line by id. A missing line is a benign no-op.
func (s *Store) RemoveLine(ctx context.Context, sessionID, lineID string) (*Collection, error) {
	collection, err := s.GetCollection(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range collection.Lines {
		if collection.Lines[i].ID == lineID {
			collection.Lines = append(collection.Lines[:i], collection.Lines[i+1:]...)
			found = true
			break
		}
	}

	if !found {
		return collection, nil
	}

	if err := s.persist(ctx, sessionID, collection); err != nil {
		return nil, err
	}

	s.notify(sessionID, *collection)
	return collection, nil
}

// Clear empties the entire collection. Clearing an already empty cart succeeds.
func (s *Store) Clear(ctx context.Context, sessionID string) (*Collection, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for cart access")
	}

	if err := s.kv.Delete(ctx, s.key(sessionID)); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to clear cart collection")
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	now := time.Now().UTC()
	collection := &Collection{
		SessionID: sessionID,
		Lines:     []Line{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.notify(sessionID, *collection)
	return collection, nil
}

// persist writes the whole collection back atomically. On failure the caller
// returns the error and discards its in-memory copy, so the previously
// persisted state stays authoritative.
func (s *Store) persist(ctx context.Context, sessionID string, collection *Collection) error {
	collection.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(collection)
	if err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to encode cart collection")
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.kv.Write(ctx, s.key(sessionID), data); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to write cart collection")
		return fmt.Errorf("failed to write cart: %w", err)
	}

	return nil
}

// notify invokes subscribers synchronously after a successful mutation
func (s *Store) notify(sessionID string, collection Collection) {
	s.mu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(sessionID, collection)
	}
}

func (s *Store) key(sessionID string) string {
	return s.keyPrefix + sessionID
}
