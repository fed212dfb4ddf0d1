package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"agroyield/internal/models"
	"agroyield/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

var ( // Define custom errors
	ErrDuplicatePhone     = repository.ErrDuplicatePhone
	ErrFarmerNotFound     = errors.New("farmer not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a rejected input field. It is surfaced to the
// caller as a 400 with enough detail to correct the input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Argon2id parameters.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

type AuthService interface {
	Register(name, phone, credential, language string, lat, lon *float64) (*models.Farmer, string, time.Time, error)
	Authenticate(phone, credential string) (*models.Farmer, string, time.Time, error)
	GetByID(id int64) (*models.Farmer, error)
	GetByPhone(phone string) (*models.Farmer, error)
	Update(id int64, update models.FarmerUpdate) (*models.Farmer, error)
	Delete(id int64) error
}

type authService struct {
	repo      repository.FarmerRepository
	logger    *zap.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(repo repository.FarmerRepository, jwtSecret []byte, tokenTTL time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		repo:      repo,
		logger:    logger,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates a farmer with a freshly hashed credential and returns it
// together with a farmer-scoped token. The phone uniqueness check is atomic
// with the insert: a concurrent registration race on the same phone produces
// exactly one success and one ErrDuplicatePhone.
func (s *authService) Register(name, phone, credential, language string, lat, lon *float64) (*models.Farmer, string, time.Time, error) {
	if err := validateRegistration(name, phone, credential, language, lat, lon); err != nil {
		return nil, "", time.Time{}, err
	}
	if language == "" {
		language = models.LanguageEnglish
	}

	credentialHash, err := s.hashCredential(credential)
	if err != nil {
		s.logger.Error("Failed to hash credential", zap.Error(err))
		return nil, "", time.Time{}, fmt.Errorf("failed to hash credential: %w", err)
	}

	farmer := &models.Farmer{
		Name:              strings.TrimSpace(name),
		Phone:             strings.TrimSpace(phone),
		CredentialHash:    credentialHash,
		LocationLat:       lat,
		LocationLon:       lon,
		PreferredLanguage: language,
	}

	if err := s.repo.CreateFarmer(farmer); err != nil {
		if errors.Is(err, ErrDuplicatePhone) {
			return nil, "", time.Time{}, ErrDuplicatePhone
		}
		s.logger.Error("Failed to create farmer", zap.Error(err))
		return nil, "", time.Time{}, fmt.Errorf("failed to create farmer: %w", err)
	}

	token, expiresAt, err := s.issueToken(farmer)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.logger.Info("Farmer registered", zap.Int64("farmerId", farmer.ID))
	farmer.CredentialHash = ""
	return farmer, token, expiresAt, nil
}

// Authenticate verifies a phone+credential pair and returns the farmer with
// a fresh token. Unknown phone and wrong credential are distinguished for
// the caller to map onto status codes.
func (s *authService) Authenticate(phone, credential string) (*models.Farmer, string, time.Time, error) {
	farmer, err := s.repo.GetFarmerByPhone(strings.TrimSpace(phone))
	if err != nil {
		s.logger.Error("Failed to get farmer by phone", zap.Error(err))
		return nil, "", time.Time{}, fmt.Errorf("failed to retrieve farmer: %w", err)
	}
	if farmer == nil {
		return nil, "", time.Time{}, ErrFarmerNotFound
	}

	if !s.verifyCredential(farmer.CredentialHash, credential) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issueToken(farmer)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.logger.Info("Farmer logged in", zap.Int64("farmerId", farmer.ID))
	farmer.CredentialHash = ""
	return farmer, token, expiresAt, nil
}

// GetByID returns the farmer or (nil, nil) when absent.
func (s *authService) GetByID(id int64) (*models.Farmer, error) {
	farmer, err := s.repo.GetFarmerByID(id)
	if err != nil {
		return nil, err
	}
	if farmer != nil {
		farmer.CredentialHash = ""
	}
	return farmer, nil
}

// GetByPhone returns the farmer or (nil, nil) when absent.
func (s *authService) GetByPhone(phone string) (*models.Farmer, error) {
	farmer, err := s.repo.GetFarmerByPhone(phone)
	if err != nil {
		return nil, err
	}
	if farmer != nil {
		farmer.CredentialHash = ""
	}
	return farmer, nil
}

// Update merges only the provided fields. A phone change re-checks
// uniqueness; location moves as a pair.
func (s *authService) Update(id int64, update models.FarmerUpdate) (*models.Farmer, error) {
	if (update.LocationLat == nil) != (update.LocationLon == nil) {
		return nil, &ValidationError{Field: "location", Reason: "latitude and longitude must be provided together"}
	}
	if update.LocationLat != nil {
		if err := validateCoordinates(*update.LocationLat, *update.LocationLon); err != nil {
			return nil, err
		}
	}
	if update.PreferredLanguage != nil && !validLanguage(*update.PreferredLanguage) {
		return nil, &ValidationError{Field: "preferredLanguage", Reason: "must be \"en\" or \"or\""}
	}

	farmer, err := s.repo.GetFarmerByID(id)
	if err != nil {
		return nil, err
	}
	if farmer == nil {
		return nil, ErrFarmerNotFound
	}

	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, &ValidationError{Field: "name", Reason: "must not be blank"}
		}
		farmer.Name = strings.TrimSpace(*update.Name)
	}
	if update.Phone != nil {
		if strings.TrimSpace(*update.Phone) == "" {
			return nil, &ValidationError{Field: "phone", Reason: "must not be blank"}
		}
		farmer.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.LocationLat != nil {
		farmer.LocationLat = update.LocationLat
		farmer.LocationLon = update.LocationLon
	}
	if update.PreferredLanguage != nil {
		farmer.PreferredLanguage = *update.PreferredLanguage
	}

	if err := s.repo.UpdateFarmer(farmer); err != nil {
		if errors.Is(err, ErrDuplicatePhone) {
			return nil, ErrDuplicatePhone
		}
		s.logger.Error("Failed to update farmer", zap.Int64("farmerId", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update farmer: %w", err)
	}

	farmer.CredentialHash = ""
	return farmer, nil
}

// Delete removes the farmer; the store cascades deletion of owned farms.
func (s *authService) Delete(id int64) error {
	return s.repo.DeleteFarmer(id)
}

func (s *authService) issueToken(farmer *models.Farmer) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.tokenTTL)
	claims := &models.Claims{
		FarmerID: farmer.ID,
		Phone:    farmer.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("Failed to generate JWT token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, expiresAt, nil
}

func validateRegistration(name, phone, credential, language string, lat, lon *float64) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be blank"}
	}
	if strings.TrimSpace(phone) == "" {
		return &ValidationError{Field: "phone", Reason: "must not be blank"}
	}
	if len(credential) < 6 {
		return &ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}
	if language != "" && !validLanguage(language) {
		return &ValidationError{Field: "preferredLanguage", Reason: "must be \"en\" or \"or\""}
	}
	if (lat == nil) != (lon == nil) {
		return &ValidationError{Field: "location", Reason: "latitude and longitude must be provided together"}
	}
	if lat != nil {
		return validateCoordinates(*lat, *lon)
	}
	return nil
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return &ValidationError{Field: "locationLat", Reason: "must be between -90 and 90"}
	}
	if lon < -180 || lon > 180 {
		return &ValidationError{Field: "locationLon", Reason: "must be between -180 and 180"}
	}
	return nil
}

func validLanguage(language string) bool {
	return language == models.LanguageEnglish || language == models.LanguageOdia
}

// hashCredential uses Argon2id with a random salt.
func (s *authService) hashCredential(credential string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(credential), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads, encodedSalt, encodedHash), nil
}

// verifyCredential compares a plaintext credential with a stored hash in
// constant time.
func (s *authService) verifyCredential(storedHash, credential string) bool {
	// Format: $argon2id$v=19$m=65536,t=1,p=4$salt$hash
	sections := strings.Split(strings.TrimPrefix(storedHash, "$"), "$")
	if len(sections) != 5 || sections[0] != "argon2id" {
		s.logger.Error("Invalid credential hash format", zap.Int("sections", len(sections)))
		return false
	}

	var version int
	if _, err := fmt.Sscanf(sections[1], "v=%d", &version); err != nil {
		return false
	}
	var m, t, p uint32
	if _, err := fmt.Sscanf(sections[2], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(sections[3])
	if err != nil {
		s.logger.Error("Failed to decode salt", zap.Error(err))
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(sections[4])
	if err != nil {
		s.logger.Error("Failed to decode hash", zap.Error(err))
		return false
	}

	computed := argon2.IDKey([]byte(credential), salt, t, m, uint8(p), uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
