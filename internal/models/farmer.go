package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Supported response languages.
const (
	LanguageEnglish = "en"
	LanguageOdia    = "or"
)

type Farmer struct {
	ID                int64     `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Phone             string    `db:"phone" json:"phone"`
	CredentialHash    string    `db:"credential_hash" json:"-"`
	LocationLat       *float64  `db:"location_lat" json:"locationLat,omitempty"`
	LocationLon       *float64  `db:"location_lon" json:"locationLon,omitempty"`
	PreferredLanguage string    `db:"preferred_language" json:"preferredLanguage"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}

// FarmerUpdate carries a partial update. Nil fields are left untouched.
// Lat/Lon move together: both set or both ignored.
type FarmerUpdate struct {
	Name              *string  `json:"name,omitempty"`
	Phone             *string  `json:"phone,omitempty"`
	LocationLat       *float64 `json:"locationLat,omitempty"`
	LocationLon       *float64 `json:"locationLon,omitempty"`
	PreferredLanguage *string  `json:"preferredLanguage,omitempty"`
}

// Claims defines the structure of the JWT claims.
type Claims struct {
	FarmerID int64  `json:"farmerId"`
	Phone    string `json:"phone"`
	jwt.RegisteredClaims
}
