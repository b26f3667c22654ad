package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Translation directions.
const (
	DirectionProductToDev = "pm_to_dev"
	DirectionDevToProduct = "dev_to_pm"
)

// TranslationRecord represents a saved translation in the PostgreSQL database.
type TranslationRecord struct {
	// ID is the unique identifier of the record (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// Direction is either pm_to_dev or dev_to_pm.
	Direction string `gorm:"type:text;not null;index" json:"direction"`
	// Input is the original text submitted by the user.
	Input string `gorm:"type:text;not null" json:"input"`
	// Output is the text returned by the language model.
	Output string `gorm:"type:text;not null" json:"output"`
	// Model is the language model that produced the output.
	Model string `gorm:"type:text" json:"model"`
	// CreatedAt is filled by GORM on insert.
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// BeforeCreate generates a UUID for the record if the ID is not set yet.
func (r *TranslationRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// ValidDirection reports whether d is one of the translation directions.
func ValidDirection(d string) bool {
	return d == DirectionProductToDev || d == DirectionDevToProduct
}
