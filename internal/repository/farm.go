package repository

import (
	"database/sql"
	"errors"

	"agroyield/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type FarmRepository interface {
	CreateFarm(farm *models.Farm) error
	GetFarmByID(id int64) (*models.Farm, error)
	ListFarmsByFarmer(farmerID int64) ([]*models.Farm, error)
	UpdateFarm(farm *models.Farm) error
	DeleteFarm(id int64) error
	CountFarmsByFarmer(farmerID int64) (int, error)
}

type farmRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewFarmRepository(db *sqlx.DB, logger *zap.Logger) FarmRepository {
	return &farmRepository{db: db, logger: logger}
}

func (r *farmRepository) CreateFarm(farm *models.Farm) error {
	query := `INSERT INTO farms (farmer_id, name, crop_type, sowing_date, area_hectares)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return r.db.QueryRowx(query,
		farm.FarmerID, farm.Name, farm.CropType, farm.SowingDate, farm.AreaHectares,
	).Scan(&farm.ID, &farm.CreatedAt)
}

func (r *farmRepository) GetFarmByID(id int64) (*models.Farm, error) {
	var farm models.Farm
	query := `SELECT id, farmer_id, name, crop_type, sowing_date, area_hectares, created_at
	          FROM farms WHERE id = $1`
	err := r.db.Get(&farm, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Farm not found
		}
		return nil, err
	}
	return &farm, nil
}

// ListFarmsByFarmer returns the farmer's farms in stable creation order.
func (r *farmRepository) ListFarmsByFarmer(farmerID int64) ([]*models.Farm, error) {
	farms := []*models.Farm{}
	query := `SELECT id, farmer_id, name, crop_type, sowing_date, area_hectares, created_at
	          FROM farms WHERE farmer_id = $1 ORDER BY created_at, id`
	if err := r.db.Select(&farms, query, farmerID); err != nil {
		return nil, err
	}
	return farms, nil
}

func (r *farmRepository) UpdateFarm(farm *models.Farm) error {
	query := `UPDATE farms
	          SET name = $1, crop_type = $2, sowing_date = $3, area_hectares = $4
	          WHERE id = $5`
	_, err := r.db.Exec(query,
		farm.Name, farm.CropType, farm.SowingDate, farm.AreaHectares, farm.ID,
	)
	return err
}

// DeleteFarm is idempotent: deleting a missing id is a no-op success.
func (r *farmRepository) DeleteFarm(id int64) error {
	_, err := r.db.Exec(`DELETE FROM farms WHERE id = $1`, id)
	return err
}

func (r *farmRepository) CountFarmsByFarmer(farmerID int64) (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM farms WHERE farmer_id = $1`, farmerID)
	if err != nil {
		return 0, err
	}
	return count, nil
}
