package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"agroyield/internal/models"
	"agroyield/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService() AuthService {
	return NewAuthService(repository.NewMemoryStore(), []byte("test-secret"), time.Hour, zap.NewNop())
}

func TestRegisterIssuesToken(t *testing.T) {
	svc := newAuthService()

	farmer, token, expiresAt, err := svc.Register("Ravi Pradhan", "+919876500001", "sowing123", "or", nil, nil)
	require.NoError(t, err)

	assert.NotZero(t, farmer.ID)
	assert.Equal(t, "Ravi Pradhan", farmer.Name)
	assert.Equal(t, "or", farmer.PreferredLanguage)
	assert.Empty(t, farmer.CredentialHash, "hash must never leave the service")
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)
}

func TestRegisterDefaultsLanguageToEnglish(t *testing.T) {
	svc := newAuthService()

	farmer, _, _, err := svc.Register("Ravi Pradhan", "+919876500001", "sowing123", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models.LanguageEnglish, farmer.PreferredLanguage)
}

func TestRegisterDuplicatePhone(t *testing.T) {
	svc := newAuthService()

	_, _, _, err := svc.Register("Ravi Pradhan", "+919876500001", "sowing123", "en", nil, nil)
	require.NoError(t, err)

	_, _, _, err = svc.Register("Someone Else", "+919876500001", "different", "en", nil, nil)
	assert.ErrorIs(t, err, ErrDuplicatePhone)
}

func TestRegisterConcurrentSamePhone(t *testing.T) {
	svc := newAuthService()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, _, errs[i] = svc.Register(fmt.Sprintf("Farmer %d", i), "+919876500001", "sowing123", "en", nil, nil)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrDuplicatePhone)
		}
	}
	assert.Equal(t, 1, successes, "exactly one registration must win the race")
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService()
	lat, lon := 20.27, 85.84

	cases := map[string]func() error{
		"blank name": func() error {
			_, _, _, err := svc.Register("  ", "+919876500001", "sowing123", "en", nil, nil)
			return err
		},
		"blank phone": func() error {
			_, _, _, err := svc.Register("Ravi", "", "sowing123", "en", nil, nil)
			return err
		},
		"short password": func() error {
			_, _, _, err := svc.Register("Ravi", "+919876500001", "abc", "en", nil, nil)
			return err
		},
		"unsupported language": func() error {
			_, _, _, err := svc.Register("Ravi", "+919876500001", "sowing123", "hi", nil, nil)
			return err
		},
		"latitude without longitude": func() error {
			_, _, _, err := svc.Register("Ravi", "+919876500001", "sowing123", "en", &lat, nil)
			return err
		},
		"latitude out of range": func() error {
			bad := 91.0
			_, _, _, err := svc.Register("Ravi", "+919876500001", "sowing123", "en", &bad, &lon)
			return err
		},
	}
	for name, run := range cases {
		t.Run(name, func(t *testing.T) {
			var validationErr *ValidationError
			require.ErrorAs(t, run(), &validationErr)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newAuthService()
	_, _, _, err := svc.Register("Ravi Pradhan", "+919876500001", "sowing123", "en", nil, nil)
	require.NoError(t, err)

	t.Run("correct credential", func(t *testing.T) {
		farmer, token, _, err := svc.Authenticate("+919876500001", "sowing123")
		require.NoError(t, err)
		assert.Equal(t, "Ravi Pradhan", farmer.Name)
		assert.Empty(t, farmer.CredentialHash)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong credential", func(t *testing.T) {
		_, _, _, err := svc.Authenticate("+919876500001", "wrong-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown phone", func(t *testing.T) {
		_, _, _, err := svc.Authenticate("+910000000000", "sowing123")
		assert.ErrorIs(t, err, ErrFarmerNotFound)
	})
}

func TestUpdateFarmer(t *testing.T) {
	svc := newAuthService()
	farmer, _, _, err := svc.Register("Ravi Pradhan", "+919876500001", "sowing123", "en", nil, nil)
	require.NoError(t, err)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		language := models.LanguageOdia
		updated, err := svc.Update(farmer.ID, models.FarmerUpdate{PreferredLanguage: &language})
		require.NoError(t, err)
		assert.Equal(t, "Ravi Pradhan", updated.Name)
		assert.Equal(t, models.LanguageOdia, updated.PreferredLanguage)
	})

	t.Run("phone collision", func(t *testing.T) {
		_, _, _, err := svc.Register("Mina Das", "+919876500002", "harvest456", "en", nil, nil)
		require.NoError(t, err)

		taken := "+919876500002"
		_, err = svc.Update(farmer.ID, models.FarmerUpdate{Phone: &taken})
		assert.ErrorIs(t, err, ErrDuplicatePhone)
	})

	t.Run("unknown farmer", func(t *testing.T) {
		name := "Ghost"
		_, err := svc.Update(9999, models.FarmerUpdate{Name: &name})
		assert.ErrorIs(t, err, ErrFarmerNotFound)
	})

	t.Run("credential survives profile update", func(t *testing.T) {
		_, _, _, err := svc.Authenticate("+919876500001", "sowing123")
		require.NoError(t, err)
	})
}

func TestDeleteFarmerCascades(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewAuthService(store, []byte("test-secret"), time.Hour, zap.NewNop())

	farmer, _, _, err := svc.Register("Ravi Pradhan", "+919876500001", "sowing123", "en", nil, nil)
	require.NoError(t, err)

	require.NoError(t, store.CreateFarm(&models.Farm{
		FarmerID: farmer.ID, Name: "Farm 1", CropType: "rice", SowingDate: "2025-06-15", AreaHectares: 1.5,
	}))

	require.NoError(t, svc.Delete(farmer.ID))

	gone, err := svc.GetByID(farmer.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	farms, err := store.ListFarmsByFarmer(farmer.ID)
	require.NoError(t, err)
	assert.Empty(t, farms)
}
