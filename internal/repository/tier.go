package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/haven-journal/haven/internal/model"
)

var ErrTierNotFound = errors.New("subscription tier not found")

type TierRepository interface {
	ByID(id string) (*model.Tier, error)
	Tiers() ([]*model.Tier, error)
}

type tierRepository struct {
	db *sqlx.DB
}

func NewTierRepository(db *sqlx.DB) TierRepository {
	return &tierRepository{db: db}
}

func (r *tierRepository) ByID(id string) (*model.Tier, error) {
	tier := &model.Tier{}
	query := `SELECT * FROM subscription_tiers WHERE id = $1`

	err := r.db.Get(tier, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrTierNotFound
	}
	if err != nil {
		return nil, err
	}

	return tier, nil
}

// Tiers returns the plan catalog ordered by ascending monthly price.
func (r *tierRepository) Tiers() ([]*model.Tier, error) {
	var tiers []*model.Tier
	query := `SELECT * FROM subscription_tiers ORDER BY monthly_price_cents ASC`

	err := r.db.Select(&tiers, query)
	if err != nil {
		return nil, err
	}

	return tiers, nil
}
