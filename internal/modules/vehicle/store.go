// README: Vehicle store backed by PostgreSQL.
package vehicle

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"waypool/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, v *Vehicle) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO vehicles (id, owner_id, model, plate_number, color, capacity)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(v.ID), string(v.OwnerID), v.Model, v.PlateNumber, v.Color, v.Capacity,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, owner_id, model, plate_number, color, capacity
		FROM vehicles
		WHERE id = $1`, string(id),
	)
	var v Vehicle
	err := row.Scan(&v.ID, &v.OwnerID, &v.Model, &v.PlateNumber, &v.Color, &v.Capacity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID types.ID) ([]*Vehicle, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, owner_id, model, plate_number, color, capacity
		FROM vehicles
		WHERE owner_id = $1
		ORDER BY model`, string(ownerID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Model, &v.PlateNumber, &v.Color, &v.Capacity); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}
