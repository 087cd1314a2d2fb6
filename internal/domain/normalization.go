package domain

import (
	"time"

	"github.com/fleetops/fuelwatch/internal/normalize"
)

// NormalizationProfile is the persisted per-dictionary-type configuration for
// the normalizer. When no row exists for a type the defaults apply.
type NormalizationProfile struct {
	ID                    string         `json:"id" gorm:"primaryKey"`
	DictionaryType        DictionaryType `json:"dictionary_type" gorm:"uniqueIndex"`
	Case                  string         `json:"case" gorm:"default:preserve"` // preserve | upper | lower
	RemoveSpecialChars    bool           `json:"remove_special_chars"`
	RemoveExtraSpaces     bool           `json:"remove_extra_spaces" gorm:"default:true"`
	Trim                  bool           `json:"trim" gorm:"default:true"`
	PriorityLicensePlate  bool           `json:"priority_license_plate" gorm:"default:true"`
	PriorityGarageNumber  bool           `json:"priority_garage_number" gorm:"default:true"`
	MinGarageNumberLength int            `json:"min_garage_number_length" gorm:"default:2"`
	MaxGarageNumberLength int            `json:"max_garage_number_length" gorm:"default:10"`
	RemoveChars           string         `json:"remove_chars"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// Options converts the stored profile into normalizer options.
func (p *NormalizationProfile) Options() normalize.Options {
	return normalize.Options{
		Case:                  normalize.CaseMode(p.Case),
		RemoveSpecialChars:    p.RemoveSpecialChars,
		RemoveExtraSpaces:     p.RemoveExtraSpaces,
		Trim:                  p.Trim,
		PriorityLicensePlate:  p.PriorityLicensePlate,
		PriorityGarageNumber:  p.PriorityGarageNumber,
		MinGarageNumberLength: p.MinGarageNumberLength,
		MaxGarageNumberLength: p.MaxGarageNumberLength,
		RemoveChars:           p.RemoveChars,
	}
}
