package repository

import (
	"database/sql"
	"errors"

	"agroyield/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const pqUniqueViolation = "23505"

type FarmerRepository interface {
	CreateFarmer(farmer *models.Farmer) error
	GetFarmerByID(id int64) (*models.Farmer, error)
	GetFarmerByPhone(phone string) (*models.Farmer, error)
	UpdateFarmer(farmer *models.Farmer) error
	DeleteFarmer(id int64) error
}

type farmerRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewFarmerRepository(db *sqlx.DB, logger *zap.Logger) FarmerRepository {
	return &farmerRepository{db: db, logger: logger}
}

func (r *farmerRepository) CreateFarmer(farmer *models.Farmer) error {
	query := `INSERT INTO farmers (name, phone, credential_hash, location_lat, location_lon, preferred_language)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err := r.db.QueryRowx(query,
		farmer.Name, farmer.Phone, farmer.CredentialHash,
		farmer.LocationLat, farmer.LocationLon, farmer.PreferredLanguage,
	).Scan(&farmer.ID, &farmer.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePhone
		}
		return err
	}
	return nil
}

func (r *farmerRepository) GetFarmerByID(id int64) (*models.Farmer, error) {
	var farmer models.Farmer
	query := `SELECT id, name, phone, credential_hash, location_lat, location_lon, preferred_language, created_at
	          FROM farmers WHERE id = $1`
	err := r.db.Get(&farmer, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Farmer not found
		}
		return nil, err
	}
	return &farmer, nil
}

func (r *farmerRepository) GetFarmerByPhone(phone string) (*models.Farmer, error) {
	var farmer models.Farmer
	query := `SELECT id, name, phone, credential_hash, location_lat, location_lon, preferred_language, created_at
	          FROM farmers WHERE phone = $1`
	err := r.db.Get(&farmer, query, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Farmer not found
		}
		return nil, err
	}
	return &farmer, nil
}

func (r *farmerRepository) UpdateFarmer(farmer *models.Farmer) error {
	query := `UPDATE farmers
	          SET name = $1, phone = $2, location_lat = $3, location_lon = $4, preferred_language = $5
	          WHERE id = $6`
	_, err := r.db.Exec(query,
		farmer.Name, farmer.Phone, farmer.LocationLat, farmer.LocationLon,
		farmer.PreferredLanguage, farmer.ID,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicatePhone
	}
	return err
}

// DeleteFarmer removes a farmer; owned farms go with it (ON DELETE CASCADE).
func (r *farmerRepository) DeleteFarmer(id int64) error {
	_, err := r.db.Exec(`DELETE FROM farmers WHERE id = $1`, id)
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
