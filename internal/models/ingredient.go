package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient is reference data loaded once from the CSV fixture. Two rows may
// share a name as long as the measurement unit differs, so uniqueness is on
// the (name, measurement_unit) pair.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name            string    `gorm:"size:256;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string    `gorm:"size:60;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
