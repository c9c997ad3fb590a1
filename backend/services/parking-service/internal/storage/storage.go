package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"parkinglot/backend/services/parking-service/internal/models"
)

const (
	lotsKey        = "parking-lots"
	usersKey       = "users"
	sessionsPrefix = "parking-sessions/"
)

// ErrInvalidKey is returned for lot ids that cannot name a document.
var ErrInvalidKey = errors.New("storage: invalid document key")

var lotIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Backend reads and writes whole documents by key.
// Read returns nil data and nil error when the document does not exist yet.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// Store persists parking documents. Every save rewrites the whole document.
type Store struct {
	backend Backend
}

// NewStore wraps backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// LoadParkingLots returns the lots document.
func (s *Store) LoadParkingLots(ctx context.Context) (*models.Collection[models.ParkingLot], error) {
	return load[models.ParkingLot](ctx, s.backend, lotsKey)
}

// SaveParkingLots rewrites the lots document.
func (s *Store) SaveParkingLots(ctx context.Context, lots *models.Collection[models.ParkingLot]) error {
	return save(ctx, s.backend, lotsKey, lots)
}

// LoadParkingSessions returns the sessions document of a lot.
func (s *Store) LoadParkingSessions(ctx context.Context, lotID string) (*models.Collection[models.ParkingSession], error) {
	key, err := sessionsKey(lotID)
	if err != nil {
		return nil, err
	}
	return load[models.ParkingSession](ctx, s.backend, key)
}

// SaveParkingSessions rewrites the sessions document of a lot.
func (s *Store) SaveParkingSessions(ctx context.Context, lotID string, sessions *models.Collection[models.ParkingSession]) error {
	key, err := sessionsKey(lotID)
	if err != nil {
		return err
	}
	return save(ctx, s.backend, key, sessions)
}

// LoadUsers returns the users document keyed by username.
func (s *Store) LoadUsers(ctx context.Context) (*models.Collection[models.User], error) {
	return load[models.User](ctx, s.backend, usersKey)
}

// SaveUsers rewrites the users document.
func (s *Store) SaveUsers(ctx context.Context, users *models.Collection[models.User]) error {
	return save(ctx, s.backend, usersKey, users)
}

func sessionsKey(lotID string) (string, error) {
	if !lotIDPattern.MatchString(lotID) {
		return "", fmt.Errorf("%w: lot id %q", ErrInvalidKey, lotID)
	}
	return sessionsPrefix + lotID, nil
}

func lotIDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, sessionsPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(key, sessionsPrefix)
	return id, lotIDPattern.MatchString(id)
}

func load[T any](ctx context.Context, backend Backend, key string) (*models.Collection[T], error) {
	data, err := backend.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", key, err)
	}
	collection := models.NewCollection[T]()
	if len(bytes.TrimSpace(data)) == 0 {
		return collection, nil
	}
	if err := json.Unmarshal(data, collection); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return collection, nil
}

func save[T any](ctx context.Context, backend Backend, key string, collection *models.Collection[T]) error {
	if collection == nil {
		collection = models.NewCollection[T]()
	}
	data, err := json.MarshalIndent(collection, "", "    ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	data = append(data, '\n')
	if err := backend.Write(ctx, key, data); err != nil {
		return fmt.Errorf("storage: save %s: %w", key, err)
	}
	return nil
}
