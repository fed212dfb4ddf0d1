package repository

import (
	"sort"
	"sync"
	"time"

	"agroyield/internal/models"
)

// MemoryStore is an in-memory implementation of the repository interfaces.
// It backs the tests and small single-node deployments; the behavioral
// contract matches the Postgres implementation, including phone uniqueness
// and cascading farm deletion.
type MemoryStore struct {
	mu           sync.Mutex
	farmers      map[int64]*models.Farmer
	farms        map[int64]*models.Farm
	predictions  map[string]*models.PredictionRecord
	feedback     map[int64]*models.Feedback
	nextFarmerID int64
	nextFarmID   int64
	nextFbID     int64
}

var (
	_ FarmerRepository     = (*MemoryStore)(nil)
	_ FarmRepository       = (*MemoryStore)(nil)
	_ PredictionRepository = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		farmers:     make(map[int64]*models.Farmer),
		farms:       make(map[int64]*models.Farm),
		predictions: make(map[string]*models.PredictionRecord),
		feedback:    make(map[int64]*models.Feedback),
	}
}

// CreateFarmer inserts a farmer. The uniqueness check and the insert run
// under one lock, so a concurrent registration race on the same phone
// yields exactly one success.
func (s *MemoryStore) CreateFarmer(farmer *models.Farmer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.farmers {
		if existing.Phone == farmer.Phone {
			return ErrDuplicatePhone
		}
	}

	s.nextFarmerID++
	farmer.ID = s.nextFarmerID
	farmer.CreatedAt = time.Now().UTC()

	stored := *farmer
	s.farmers[farmer.ID] = &stored
	return nil
}

func (s *MemoryStore) GetFarmerByID(id int64) (*models.Farmer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	farmer, ok := s.farmers[id]
	if !ok {
		return nil, nil
	}
	cp := *farmer
	return &cp, nil
}

func (s *MemoryStore) GetFarmerByPhone(phone string) (*models.Farmer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, farmer := range s.farmers {
		if farmer.Phone == phone {
			cp := *farmer
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) UpdateFarmer(farmer *models.Farmer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.farmers[farmer.ID]
	if !ok {
		return nil
	}
	for _, other := range s.farmers {
		if other.ID != farmer.ID && other.Phone == farmer.Phone {
			return ErrDuplicatePhone
		}
	}

	stored := *farmer
	stored.CreatedAt = existing.CreatedAt
	s.farmers[farmer.ID] = &stored
	return nil
}

func (s *MemoryStore) DeleteFarmer(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.farmers, id)
	for farmID, farm := range s.farms {
		if farm.FarmerID == id {
			delete(s.farms, farmID)
		}
	}
	return nil
}

func (s *MemoryStore) CreateFarm(farm *models.Farm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextFarmID++
	farm.ID = s.nextFarmID
	farm.CreatedAt = time.Now().UTC()

	stored := *farm
	s.farms[farm.ID] = &stored
	return nil
}

func (s *MemoryStore) GetFarmByID(id int64) (*models.Farm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	farm, ok := s.farms[id]
	if !ok {
		return nil, nil
	}
	cp := *farm
	return &cp, nil
}

func (s *MemoryStore) ListFarmsByFarmer(farmerID int64) ([]*models.Farm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	farms := []*models.Farm{}
	for _, farm := range s.farms {
		if farm.FarmerID == farmerID {
			cp := *farm
			farms = append(farms, &cp)
		}
	}
	sort.Slice(farms, func(i, j int) bool {
		if farms[i].CreatedAt.Equal(farms[j].CreatedAt) {
			return farms[i].ID < farms[j].ID
		}
		return farms[i].CreatedAt.Before(farms[j].CreatedAt)
	})
	return farms, nil
}

func (s *MemoryStore) UpdateFarm(farm *models.Farm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.farms[farm.ID]
	if !ok {
		return nil
	}
	stored := *farm
	stored.FarmerID = existing.FarmerID
	stored.CreatedAt = existing.CreatedAt
	s.farms[farm.ID] = &stored
	return nil
}

func (s *MemoryStore) DeleteFarm(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.farms, id)
	return nil
}

func (s *MemoryStore) CountFarmsByFarmer(farmerID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, farm := range s.farms {
		if farm.FarmerID == farmerID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) StorePrediction(record *models.PredictionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.CreatedAt = time.Now().UTC()
	stored := *record
	s.predictions[record.ID] = &stored
	return nil
}

func (s *MemoryStore) GetPredictionByID(id string) (*models.PredictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.predictions[id]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}

func (s *MemoryStore) CreateFeedback(feedback *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextFbID++
	feedback.ID = s.nextFbID
	feedback.CreatedAt = time.Now().UTC()

	stored := *feedback
	s.feedback[feedback.ID] = &stored
	return nil
}

func (s *MemoryStore) GetPredictionStats() (*models.PredictionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.PredictionStats{}
	for _, record := range s.predictions {
		stats.TotalPredictions++
		if record.Fallback {
			stats.FallbackCount++
		}
	}

	ratingSum, rated := 0, 0
	for _, fb := range s.feedback {
		stats.FeedbackCount++
		if fb.Rating != nil {
			ratingSum += *fb.Rating
			rated++
		}
	}
	if rated > 0 {
		avg := float64(ratingSum) / float64(rated)
		stats.AverageRating = &avg
	}
	if stats.TotalPredictions > 0 {
		stats.FallbackShare = float64(stats.FallbackCount) / float64(stats.TotalPredictions)
	}
	return stats, nil
}

func (s *MemoryStore) ListFeedbackByPrediction(predictionID string) ([]*models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	feedback := []*models.Feedback{}
	for _, fb := range s.feedback {
		if fb.PredictionID == predictionID {
			cp := *fb
			feedback = append(feedback, &cp)
		}
	}
	sort.Slice(feedback, func(i, j int) bool { return feedback[i].ID < feedback[j].ID })
	return feedback, nil
}
