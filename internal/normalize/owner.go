package normalize

import (
	"strings"
	"unicode"
)

type CaseMode string

const (
	CasePreserve CaseMode = "preserve"
	CaseUpper    CaseMode = "upper"
	CaseLower    CaseMode = "lower"
)

// Options control the shared normalization step and the owner-decomposition
// pipeline. One record is configured per dictionary type.
type Options struct {
	Case                  CaseMode
	RemoveSpecialChars    bool
	RemoveExtraSpaces     bool
	Trim                  bool
	PriorityLicensePlate  bool
	PriorityGarageNumber  bool
	MinGarageNumberLength int
	MaxGarageNumberLength int
	RemoveChars           string
}

// DefaultOptions mirrors the fallback used when no profile is configured.
func DefaultOptions() Options {
	return Options{
		Case:                  CasePreserve,
		RemoveExtraSpaces:     true,
		Trim:                  true,
		PriorityLicensePlate:  true,
		PriorityGarageNumber:  true,
		MinGarageNumberLength: 2,
		MaxGarageNumberLength: 10,
	}
}

// Apply runs the shared normalization step in a fixed order: explicit char
// removal, special char stripping, whitespace collapsing, trim, case folding.
func (o Options) Apply(s string) string {
	if o.RemoveChars != "" {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(o.RemoveChars, r) {
				return -1
			}
			return r
		}, s)
	}
	if o.RemoveSpecialChars {
		s = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
				return r
			}
			return -1
		}, s)
	}
	if o.RemoveExtraSpaces {
		s = strings.Join(strings.Fields(s), " ")
	}
	if o.Trim {
		s = strings.TrimSpace(s)
	}
	switch o.Case {
	case CaseUpper:
		s = strings.ToUpper(s)
	case CaseLower:
		s = strings.ToLower(s)
	}
	return s
}

// OwnerParts is the decomposition of a free-text "assigned to" field.
type OwnerParts struct {
	LicensePlate string
	GarageNumber string
	CompanyName  string
	// Normalized is the primary facet: plate if found, else garage number,
	// else company name.
	Normalized string
}

// OwnerName splits a raw owner string into up to three independent facets.
// The pipeline is strictly ordered: the plate is extracted first and removed
// from the working text, then the first purely numeric token of configured
// length becomes the garage number, and whatever remains is the company or
// person name.
func OwnerName(s string, opts Options) OwnerParts {
	var parts OwnerParts
	working := strings.Join(strings.Fields(s), " ")

	if opts.PriorityLicensePlate {
		if plate := FindLicensePlate(working); plate != "" {
			parts.LicensePlate = opts.Apply(CompactPlate(plate))
			working = strings.Replace(working, plate, " ", 1)
		}
	}

	tokens := strings.Fields(working)
	if opts.PriorityGarageNumber {
		for i, tok := range tokens {
			if isGarageNumber(tok, opts.MinGarageNumberLength, opts.MaxGarageNumberLength) {
				parts.GarageNumber = opts.Apply(tok)
				tokens = append(tokens[:i], tokens[i+1:]...)
				break
			}
		}
	}

	parts.CompanyName = opts.Apply(strings.Join(tokens, " "))

	switch {
	case parts.LicensePlate != "":
		parts.Normalized = parts.LicensePlate
	case parts.GarageNumber != "":
		parts.Normalized = parts.GarageNumber
	default:
		parts.Normalized = parts.CompanyName
	}
	return parts
}

func isGarageNumber(tok string, minLen, maxLen int) bool {
	runes := []rune(tok)
	if len(runes) < minLen || len(runes) > maxLen {
		return false
	}
	for _, r := range runes {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
