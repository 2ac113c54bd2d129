package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stayinn/backend/internal/domain"
)

// VillaRepository covers the reads the core needs; villa CRUD is owned by the
// external catalog component.
type VillaRepository interface {
	List(ctx context.Context) ([]domain.Villa, error)
	GetByID(ctx context.Context, id int64) (*domain.Villa, error)
}

const villaColumns = `id, name, address, price_per_night_paise, created_at, updated_at`

type PGVillaRepository struct {
	db *pgxpool.Pool
}

func NewVillaRepository(db *pgxpool.Pool) VillaRepository {
	return &PGVillaRepository{db: db}
}

func (r *PGVillaRepository) List(ctx context.Context) ([]domain.Villa, error) {
	rows, err := r.db.Query(ctx, `SELECT `+villaColumns+` FROM villas ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	villas := make([]domain.Villa, 0)
	for rows.Next() {
		var v domain.Villa
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.PricePerNightPaise, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		villas = append(villas, v)
	}
	return villas, rows.Err()
}

func (r *PGVillaRepository) GetByID(ctx context.Context, id int64) (*domain.Villa, error) {
	row := r.db.QueryRow(ctx, `SELECT `+villaColumns+` FROM villas WHERE id=$1`, id)
	var v domain.Villa
	if err := row.Scan(&v.ID, &v.Name, &v.Address, &v.PricePerNightPaise, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: villa %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &v, nil
}

var _ VillaRepository = (*PGVillaRepository)(nil)
