// Package normalize canonicalizes raw dictionary identifiers: card numbers,
// vehicle names, fuel labels and free-text owner strings. Everything here is
// deterministic and side-effect-free; no database access.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// Letters permitted on Russian registration plates, both the Cyrillic
// originals and their Latin lookalikes. Sources mix the two freely, so the
// patterns accept either; CompactPlate only folds case, it never
// transliterates.
const plateLetters = "АВЕКМНОРСТУХавекмнорстухABEKMHOPCTYXabekmhopctyx"

var (
	// Standard plate: letter{1,2} digit{3} letter{2,3} digit{2,3} region.
	platePattern = regexp.MustCompile(`[` + plateLetters + `]{1,2}\s*\d{3}\s*[` + plateLetters + `]{2,3}\s*\d{2,3}`)
	// Tractor/trailer plate: digit{4} letter{2} digit{2}.
	tractorPlatePattern = regexp.MustCompile(`\d{4}\s*[` + plateLetters + `]{2}\s*\d{2}`)

	digitRun = regexp.MustCompile(`\d+`)
)

// CardNumber strips whitespace, dashes and underscores. Case is preserved;
// card numbers are numeric anyway.
func CardNumber(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			return -1
		}
		return r
	}, s)
}

// CompactPlate uppercases a plate match and removes interior whitespace.
func CompactPlate(s string) string {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.ToUpper(compact)
}

// FindLicensePlate returns the first plate substring (standard form first,
// then the tractor form) or "".
func FindLicensePlate(s string) string {
	if m := platePattern.FindString(s); m != "" {
		return m
	}
	return tractorPlatePattern.FindString(s)
}

// VehicleName collapses whitespace and, when the name embeds a license
// plate, uppercases and compacts the plate in place. The rest of the string
// is left as the source wrote it.
func VehicleName(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	plate := FindLicensePlate(collapsed)
	if plate == "" {
		return collapsed
	}
	return strings.Replace(collapsed, plate, CompactPlate(plate), 1)
}

// Canonical fuel labels.
const (
	FuelAI92   = "АИ-92"
	FuelAI95   = "АИ-95"
	FuelAI98   = "АИ-98"
	FuelAI100  = "АИ-100"
	FuelDiesel = "ДТ"
	FuelGas    = "Газ"
)

var dieselTokens = []string{"дт", "диз", "солярк", "diesel", "dt"}

var gasTokens = []string{"газ", "спг", "кпг", "метан", "пропан", "gas", "lpg", "cng"}

// Fuel maps known token families to canonical labels. This is a best-effort
// classifier, not a parser: unrecognized input passes through unchanged.
func Fuel(s string) string {
	key := strings.ToLower(s)
	key = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, key)

	switch {
	case strings.Contains(key, "100"):
		return FuelAI100
	case strings.Contains(key, "92"):
		return FuelAI92
	case strings.Contains(key, "95"):
		return FuelAI95
	case strings.Contains(key, "98"):
		return FuelAI98
	}
	for _, t := range dieselTokens {
		if strings.Contains(key, t) {
			return FuelDiesel
		}
	}
	for _, t := range gasTokens {
		if strings.Contains(key, t) {
			return FuelGas
		}
	}
	return s
}

// AZSNumber extracts the first run of digits, falling back to the trimmed
// input when the string carries no digits at all.
func AZSNumber(s string) string {
	if m := digitRun.FindString(s); m != "" {
		return m
	}
	return strings.TrimSpace(s)
}

// EmbeddedNumbers returns every digit run in the string, in order. Used to
// tell apart stations like "КАЗС10" and "КАЗС07" whose extracted AZS numbers
// may coincide.
func EmbeddedNumbers(s string) []string {
	return digitRun.FindAllString(s, -1)
}

// SameEmbeddedNumbers reports whether two names carry identical digit runs.
func SameEmbeddedNumbers(a, b string) bool {
	na, nb := EmbeddedNumbers(a), EmbeddedNumbers(b)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if strings.TrimLeft(na[i], "0") != strings.TrimLeft(nb[i], "0") {
			return false
		}
	}
	return true
}
