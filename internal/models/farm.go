package models

import "time"

type Farm struct {
	ID           int64     `db:"id" json:"id"`
	FarmerID     int64     `db:"farmer_id" json:"farmerId"`
	Name         string    `db:"name" json:"name"`
	CropType     string    `db:"crop_type" json:"cropType"`
	SowingDate   string    `db:"sowing_date" json:"sowingDate"`
	AreaHectares float64   `db:"area_hectares" json:"areaHectares"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// FarmUpdate carries a partial update for a farm. Nil fields are left
// untouched; required fields can never be cleared through it.
type FarmUpdate struct {
	Name         *string  `json:"name,omitempty"`
	CropType     *string  `json:"cropType,omitempty"`
	SowingDate   *string  `json:"sowingDate,omitempty"`
	AreaHectares *float64 `json:"areaHectares,omitempty"`
}

// FarmSpec describes one entry of a desired farm set for reconciliation.
// Entries with ID > 0 update an existing farm, entries without create one.
type FarmSpec struct {
	ID           int64    `json:"id,omitempty"`
	Name         *string  `json:"name,omitempty"`
	CropType     *string  `json:"cropType,omitempty"`
	SowingDate   *string  `json:"sowingDate,omitempty"`
	AreaHectares *float64 `json:"areaHectares,omitempty"`
}
