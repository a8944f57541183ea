// README: Vehicle service; thin validation over the store.
package vehicle

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"waypool/internal/types"
)

var (
	ErrNotFound   = errors.New("vehicle not found")
	ErrBadRequest = errors.New("bad request")
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type CreateCommand struct {
	OwnerID     types.ID
	Model       string
	PlateNumber string
	Color       string
	Capacity    int
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Vehicle, error) {
	if cmd.OwnerID == "" || cmd.Model == "" || cmd.PlateNumber == "" || cmd.Capacity < 1 {
		return nil, ErrBadRequest
	}
	v := &Vehicle{
		ID:          types.ID(uuid.NewString()),
		OwnerID:     cmd.OwnerID,
		Model:       cmd.Model,
		PlateNumber: cmd.PlateNumber,
		Color:       cmd.Color,
		Capacity:    cmd.Capacity,
	}
	if err := s.store.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID types.ID) ([]*Vehicle, error) {
	return s.store.ListByOwner(ctx, ownerID)
}
