package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"agroyield/internal/models"
	"agroyield/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrUnknownFarmer = errors.New("unknown farmer")
	ErrFarmNotFound  = errors.New("farm not found")
)

const sowingDateLayout = "2006-01-02"

type PortfolioService interface {
	AddFarm(farmerID int64, spec models.FarmSpec) (*models.Farm, error)
	ListFarms(farmerID int64) ([]*models.Farm, error)
	UpdateFarm(farmerID, farmID int64, update models.FarmUpdate) (*models.Farm, error)
	RemoveFarm(farmerID, farmID int64) error
	Reconcile(farmerID int64, desired []models.FarmSpec) ([]*models.Farm, error)
}

type portfolioService struct {
	farmers repository.FarmerRepository
	farms   repository.FarmRepository
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewPortfolioService(farmers repository.FarmerRepository, farms repository.FarmRepository, logger *zap.Logger) PortfolioService {
	return &portfolioService{
		farmers: farmers,
		farms:   farms,
		logger:  logger,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// lockFarmer serializes writes per farmer so that a concurrent Reconcile
// and AddFarm on the same farmer cannot interleave into an inconsistent
// farm set.
func (s *portfolioService) lockFarmer(farmerID int64) func() {
	s.mu.Lock()
	lock, ok := s.locks[farmerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[farmerID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *portfolioService) AddFarm(farmerID int64, spec models.FarmSpec) (*models.Farm, error) {
	unlock := s.lockFarmer(farmerID)
	defer unlock()

	if err := s.requireFarmer(farmerID); err != nil {
		return nil, err
	}
	return s.createFarm(farmerID, spec)
}

func (s *portfolioService) ListFarms(farmerID int64) ([]*models.Farm, error) {
	if err := s.requireFarmer(farmerID); err != nil {
		return nil, err
	}
	return s.farms.ListFarmsByFarmer(farmerID)
}

func (s *portfolioService) UpdateFarm(farmerID, farmID int64, update models.FarmUpdate) (*models.Farm, error) {
	unlock := s.lockFarmer(farmerID)
	defer unlock()

	return s.updateFarm(farmerID, farmID, update)
}

// RemoveFarm deletes a farm by id. Removing a missing id is a no-op
// success; a farm owned by another farmer is reported as not found.
func (s *portfolioService) RemoveFarm(farmerID, farmID int64) error {
	unlock := s.lockFarmer(farmerID)
	defer unlock()

	farm, err := s.farms.GetFarmByID(farmID)
	if err != nil {
		return err
	}
	if farm == nil {
		return nil
	}
	if farm.FarmerID != farmerID {
		return ErrFarmNotFound
	}
	return s.farms.DeleteFarm(farmID)
}

// Reconcile brings the farmer's farm set to the desired state: entries with
// ids update existing farms, entries without create new ones, and existing
// farms absent from the desired set are deleted. Ids and creation
// timestamps survive partial edits.
func (s *portfolioService) Reconcile(farmerID int64, desired []models.FarmSpec) ([]*models.Farm, error) {
	unlock := s.lockFarmer(farmerID)
	defer unlock()

	if err := s.requireFarmer(farmerID); err != nil {
		return nil, err
	}

	existing, err := s.farms.ListFarmsByFarmer(farmerID)
	if err != nil {
		return nil, err
	}
	existingByID := make(map[int64]*models.Farm, len(existing))
	for _, farm := range existing {
		existingByID[farm.ID] = farm
	}

	// Reject the whole desired set before touching anything: an invalid
	// or unknown entry must leave the portfolio exactly as it was.
	keep := make(map[int64]bool, len(desired))
	for _, spec := range desired {
		if spec.ID > 0 {
			if _, ok := existingByID[spec.ID]; !ok {
				return nil, ErrFarmNotFound
			}
			if err := validateFarmFields(spec.CropType, spec.SowingDate, spec.AreaHectares); err != nil {
				return nil, err
			}
			keep[spec.ID] = true
		} else {
			if err := validateNewFarmSpec(spec); err != nil {
				return nil, err
			}
		}
	}

	for _, farm := range existing {
		if !keep[farm.ID] {
			if err := s.farms.DeleteFarm(farm.ID); err != nil {
				return nil, err
			}
		}
	}

	for _, spec := range desired {
		if spec.ID > 0 {
			update := models.FarmUpdate{
				Name:         spec.Name,
				CropType:     spec.CropType,
				SowingDate:   spec.SowingDate,
				AreaHectares: spec.AreaHectares,
			}
			if _, err := s.updateFarm(farmerID, spec.ID, update); err != nil {
				return nil, err
			}
		} else {
			if _, err := s.createFarm(farmerID, spec); err != nil {
				return nil, err
			}
		}
	}

	return s.farms.ListFarmsByFarmer(farmerID)
}

// validateNewFarmSpec checks a spec that will create a farm: crop type,
// sowing date and area are all required.
func validateNewFarmSpec(spec models.FarmSpec) error {
	if spec.CropType == nil || strings.TrimSpace(*spec.CropType) == "" {
		return &ValidationError{Field: "cropType", Reason: "must not be blank"}
	}
	if spec.SowingDate == nil {
		return &ValidationError{Field: "sowingDate", Reason: "is required"}
	}
	if spec.AreaHectares == nil {
		return &ValidationError{Field: "areaHectares", Reason: "must be greater than zero"}
	}
	return validateFarmFields(spec.CropType, spec.SowingDate, spec.AreaHectares)
}

// validateFarmFields checks the fields a partial edit may carry. Nil
// fields pass; a create additionally requires them to be present.
func validateFarmFields(cropType, sowingDate *string, areaHectares *float64) error {
	if cropType != nil && strings.TrimSpace(*cropType) == "" {
		return &ValidationError{Field: "cropType", Reason: "must not be blank"}
	}
	if sowingDate != nil {
		if _, err := time.Parse(sowingDateLayout, *sowingDate); err != nil {
			return &ValidationError{Field: "sowingDate", Reason: "must be formatted YYYY-MM-DD"}
		}
	}
	if areaHectares != nil && *areaHectares <= 0 {
		return &ValidationError{Field: "areaHectares", Reason: "must be greater than zero"}
	}
	return nil
}

func (s *portfolioService) createFarm(farmerID int64, spec models.FarmSpec) (*models.Farm, error) {
	if err := validateNewFarmSpec(spec); err != nil {
		return nil, err
	}

	name := ""
	if spec.Name != nil {
		name = strings.TrimSpace(*spec.Name)
	}
	if name == "" {
		count, err := s.farms.CountFarmsByFarmer(farmerID)
		if err != nil {
			return nil, err
		}
		name = fmt.Sprintf("Farm %d", count+1)
	}

	farm := &models.Farm{
		FarmerID:     farmerID,
		Name:         name,
		CropType:     strings.ToLower(strings.TrimSpace(*spec.CropType)),
		SowingDate:   *spec.SowingDate,
		AreaHectares: *spec.AreaHectares,
	}
	if err := s.farms.CreateFarm(farm); err != nil {
		s.logger.Error("Failed to create farm", zap.Int64("farmerId", farmerID), zap.Error(err))
		return nil, fmt.Errorf("failed to create farm: %w", err)
	}
	return farm, nil
}

func (s *portfolioService) updateFarm(farmerID, farmID int64, update models.FarmUpdate) (*models.Farm, error) {
	farm, err := s.farms.GetFarmByID(farmID)
	if err != nil {
		return nil, err
	}
	if farm == nil || farm.FarmerID != farmerID {
		return nil, ErrFarmNotFound
	}
	if err := validateFarmFields(update.CropType, update.SowingDate, update.AreaHectares); err != nil {
		return nil, err
	}

	if update.Name != nil && strings.TrimSpace(*update.Name) != "" {
		farm.Name = strings.TrimSpace(*update.Name)
	}
	if update.CropType != nil {
		farm.CropType = strings.ToLower(strings.TrimSpace(*update.CropType))
	}
	if update.SowingDate != nil {
		farm.SowingDate = *update.SowingDate
	}
	if update.AreaHectares != nil {
		farm.AreaHectares = *update.AreaHectares
	}

	if err := s.farms.UpdateFarm(farm); err != nil {
		s.logger.Error("Failed to update farm", zap.Int64("farmId", farmID), zap.Error(err))
		return nil, fmt.Errorf("failed to update farm: %w", err)
	}
	return farm, nil
}

func (s *portfolioService) requireFarmer(farmerID int64) error {
	farmer, err := s.farmers.GetFarmerByID(farmerID)
	if err != nil {
		return err
	}
	if farmer == nil {
		return ErrUnknownFarmer
	}
	return nil
}
