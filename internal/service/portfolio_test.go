package service

import (
	"fmt"
	"sync"
	"testing"

	"agroyield/internal/models"
	"agroyield/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func newPortfolioFixture(t *testing.T) (PortfolioService, int64) {
	t.Helper()
	store := repository.NewMemoryStore()

	farmer := &models.Farmer{Name: "Ravi Pradhan", Phone: "+919876500001", CredentialHash: "x"}
	require.NoError(t, store.CreateFarmer(farmer))

	return NewPortfolioService(store, store, zap.NewNop()), farmer.ID
}

func farmSpec(name, crop, sowing string, area float64) models.FarmSpec {
	spec := models.FarmSpec{
		CropType:     strPtr(crop),
		SowingDate:   strPtr(sowing),
		AreaHectares: floatPtr(area),
	}
	if name != "" {
		spec.Name = strPtr(name)
	}
	return spec
}

func TestAddFarm(t *testing.T) {
	svc, farmerID := newPortfolioFixture(t)

	farm, err := svc.AddFarm(farmerID, farmSpec("Paddy plot", "Rice", "2025-06-15", 1.5))
	require.NoError(t, err)

	assert.NotZero(t, farm.ID)
	assert.Equal(t, farmerID, farm.FarmerID)
	assert.Equal(t, "Paddy plot", farm.Name)
	assert.Equal(t, "rice", farm.CropType, "crop type is stored lowercase")
	assert.Equal(t, 1.5, farm.AreaHectares)
}

func TestAddFarmDefaultsName(t *testing.T) {
	svc, farmerID := newPortfolioFixture(t)

	first, err := svc.AddFarm(farmerID, farmSpec("", "rice", "2025-06-15", 1.5))
	require.NoError(t, err)
	assert.Equal(t, "Farm 1", first.Name)

	second, err := svc.AddFarm(farmerID, farmSpec("", "wheat", "2025-11-01", 0.8))
	require.NoError(t, err)
	assert.Equal(t, "Farm 2", second.Name)
}

func TestAddFarmValidation(t *testing.T) {
	svc, farmerID := newPortfolioFixture(t)

	cases := map[string]models.FarmSpec{
		"missing crop type": {SowingDate: strPtr("2025-06-15"), AreaHectares: floatPtr(1.5)},
		"bad sowing date":   farmSpec("", "rice", "15/06/2025", 1.5),
		"zero area":         farmSpec("", "rice", "2025-06-15", 0),
		"negative area":     farmSpec("", "rice", "2025-06-15", -2),
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.AddFarm(farmerID, spec)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestAddFarmUnknownFarmer(t *testing.T) {
	svc, _ := newPortfolioFixture(t)

	_, err := svc.AddFarm(9999, farmSpec("", "rice", "2025-06-15", 1.5))
	assert.ErrorIs(t, err, ErrUnknownFarmer)
}

func TestListFarmsOrdersByCreation(t *testing.T) {
	svc, farmerID := newPortfolioFixture(t)

	for i := 0; i < 3; i++ {
		_, err := svc.AddFarm(farmerID, farmSpec(fmt.Sprintf("Plot %d", i+1), "rice", "2025-06-15", 1.0))
		require.NoError(t, err)
	}

	farms, err := svc.ListFarms(farmerID)
	require.NoError(t, err)
	require.Len(t, farms, 3)
	assert.Equal(t, "Plot 1", farms[0].Name)
	assert.Equal(t, "Plot 2", farms[1].Name)
	assert.Equal(t, "Plot 3", farms[2].Name)
}

func TestUpdateFarmOwnership(t *testing.T) {
	store := repository.NewMemoryStore()
	owner := &models.Farmer{Name: "Ravi", Phone: "+919876500001", CredentialHash: "x"}
	other := &models.Farmer{Name: "Mina", Phone: "+919876500002", CredentialHash: "x"}
	require.NoError(t, store.CreateFarmer(owner))
	require.NoError(t, store.CreateFarmer(other))

	svc := NewPortfolioService(store, store, zap.NewNop())

	farm, err := svc.AddFarm(owner.ID, farmSpec("Paddy plot", "rice", "2025-06-15", 1.5))
	require.NoError(t, err)

	_, err = svc.UpdateFarm(other.ID, farm.ID, models.FarmUpdate{Name: strPtr("Stolen")})
	assert.ErrorIs(t, err, ErrFarmNotFound)

	updated, err := svc.UpdateFarm(owner.ID, farm.ID, models.FarmUpdate{AreaHectares: floatPtr(2.0)})
	require.NoError(t, err)
	assert.Equal(t, 2.0, updated.AreaHectares)
	assert.Equal(t, "Paddy plot", updated.Name, "unset fields stay untouched")
}

func TestRemoveFarm(t *testing.T) {
	svc, farmerID := newPortfolioFixture(t)

	farm, err := svc.AddFarm(farmerID, farmSpec("", "rice", "2025-06-15", 1.5))
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFarm(farmerID, farm.ID))

	// Removing an already-removed farm is a no-op success.
	require.NoError(t, svc.RemoveFarm(farmerID, farm.ID))

	farms, err := svc.ListFarms(farmerID)
	require.NoError(t, err)
	assert.Empty(t, farms)
}

func TestReconcile(t *testing.T) {
	svc, farmerID := newPortfolioFixture(t)

	kept, err := svc.AddFarm(farmerID, farmSpec("Keep me", "rice", "2025-06-15", 1.5))
	require.NoError(t, err)
	dropped, err := svc.AddFarm(farmerID, farmSpec("Drop me", "wheat", "2025-11-01", 0.8))
	require.NoError(t, err)

	desired := []models.FarmSpec{
		{ID: kept.ID, AreaHectares: floatPtr(2.5)},
		farmSpec("Brand new", "maize", "2025-07-01", 1.0),
	}
	farms, err := svc.Reconcile(farmerID, desired)
	require.NoError(t, err)
	require.Len(t, farms, 2)

	assert.Equal(t, kept.ID, farms[0].ID, "kept farm survives with its id")
	assert.Equal(t, 2.5, farms[0].AreaHectares)
	assert.Equal(t, "rice", farms[0].CropType, "unset fields stay untouched")
	assert.Equal(t, kept.CreatedAt.Unix(), farms[0].CreatedAt.Unix())

	assert.Equal(t, "Brand new", farms[1].Name)
	assert.NotZero(t, farms[1].ID)

	for _, farm := range farms {
		assert.NotEqual(t, dropped.ID, farm.ID, "absent farm must be deleted")
	}
}

func TestReconcileRejectsUnknownID(t *testing.T) {
	svc, farmerID := newPortfolioFixture(t)

	before, err := svc.AddFarm(farmerID, farmSpec("Existing", "rice", "2025-06-15", 1.5))
	require.NoError(t, err)

	_, err = svc.Reconcile(farmerID, []models.FarmSpec{{ID: 9999, AreaHectares: floatPtr(1.0)}})
	assert.ErrorIs(t, err, ErrFarmNotFound)

	farms, err := svc.ListFarms(farmerID)
	require.NoError(t, err)
	require.Len(t, farms, 1)
	assert.Equal(t, before.ID, farms[0].ID, "failed reconcile must not touch the portfolio")
}

func TestReconcileInvalidSpecLeavesPortfolioUntouched(t *testing.T) {
	svc, farmerID := newPortfolioFixture(t)

	first, err := svc.AddFarm(farmerID, farmSpec("First", "rice", "2025-06-15", 1.5))
	require.NoError(t, err)
	second, err := svc.AddFarm(farmerID, farmSpec("Second", "wheat", "2025-11-01", 0.8))
	require.NoError(t, err)

	cases := map[string][]models.FarmSpec{
		"negative area on update": {{ID: first.ID, AreaHectares: floatPtr(-1)}},
		"bad date on update":      {{ID: first.ID, SowingDate: strPtr("15/06/2025")}},
		"blank crop on update":    {{ID: first.ID, CropType: strPtr("  ")}},
		"incomplete create": {
			{ID: first.ID, AreaHectares: floatPtr(2.0)},
			{CropType: strPtr("maize")},
		},
	}
	for name, desired := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Reconcile(farmerID, desired)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)

			// Farms absent from the rejected set must survive too.
			farms, err := svc.ListFarms(farmerID)
			require.NoError(t, err)
			require.Len(t, farms, 2)
			assert.Equal(t, first.ID, farms[0].ID)
			assert.Equal(t, second.ID, farms[1].ID)
			assert.Equal(t, 1.5, farms[0].AreaHectares)
		})
	}
}

func TestReconcileEmptyClearsPortfolio(t *testing.T) {
	svc, farmerID := newPortfolioFixture(t)

	_, err := svc.AddFarm(farmerID, farmSpec("", "rice", "2025-06-15", 1.5))
	require.NoError(t, err)

	farms, err := svc.Reconcile(farmerID, nil)
	require.NoError(t, err)
	assert.Empty(t, farms)
}

func TestReconcileSerializedWithAddFarm(t *testing.T) {
	svc, farmerID := newPortfolioFixture(t)

	seed, err := svc.AddFarm(farmerID, farmSpec("Seed", "rice", "2025-06-15", 1.5))
	require.NoError(t, err)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			if i%2 == 0 {
				_, err := svc.Reconcile(farmerID, []models.FarmSpec{{ID: seed.ID, AreaHectares: floatPtr(2.0)}})
				assert.NoError(t, err)
			} else {
				farm, err := svc.AddFarm(farmerID, farmSpec("", "wheat", "2025-11-01", 0.8))
				assert.NoError(t, err)
				assert.NotZero(t, farm.ID)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	// The seed farm survives every interleaving; whatever farms remain
	// belong to the farmer and carry valid fields.
	farms, err := svc.ListFarms(farmerID)
	require.NoError(t, err)
	found := false
	for _, farm := range farms {
		assert.Equal(t, farmerID, farm.FarmerID)
		assert.Greater(t, farm.AreaHectares, 0.0)
		if farm.ID == seed.ID {
			found = true
		}
	}
	assert.True(t, found, "reconciled farm must survive concurrent writes")
}
