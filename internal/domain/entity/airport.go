package entity

import (
	"time"

	"gorm.io/gorm"
)

// Airport is reference data for an IATA airport code
type Airport struct {
	ID        uint
	Code      string
	Name      string
	CityName  string
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
