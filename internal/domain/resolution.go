package domain

import (
	"fmt"
)

type WarningKind string

const (
	// WarningMerged: fuzzy score crossed the merge threshold; the query was
	// folded into an existing entity instead of creating a new row.
	WarningMerged WarningKind = "merged"
	// WarningPossibleDuplicate: score landed in the warn band; a human
	// should resolve the pair later.
	WarningPossibleDuplicate WarningKind = "possible_duplicate"
	// WarningCreated: no plausible candidate existed, a new row was created.
	WarningCreated WarningKind = "created"
)

// ResolutionWarning is a human-readable note about a resolver decision.
// Ambiguity is always surfaced this way, never as an error.
type ResolutionWarning struct {
	Kind       WarningKind    `json:"kind"`
	Dictionary DictionaryType `json:"dictionary"`
	Query      string         `json:"query"`
	EntityID   string         `json:"entity_id,omitempty"`
	EntityName string         `json:"entity_name,omitempty"`
	Score      int            `json:"score,omitempty"`
	Message    string         `json:"message"`
}

func newWarning(kind WarningKind, dict DictionaryType, query, entityID, entityName string, score int) ResolutionWarning {
	w := ResolutionWarning{
		Kind:       kind,
		Dictionary: dict,
		Query:      query,
		EntityID:   entityID,
		EntityName: entityName,
		Score:      score,
	}
	switch kind {
	case WarningMerged:
		w.Message = fmt.Sprintf("%s %q treated as existing %q (score %d)", dict, query, entityName, score)
	case WarningPossibleDuplicate:
		w.Message = fmt.Sprintf("%s %q possibly duplicates %q (score %d), left for review", dict, query, entityName, score)
	case WarningCreated:
		w.Message = fmt.Sprintf("%s %q had no match, new entity created", dict, query)
	}
	return w
}

// MergedWarning builds the warning emitted when a query is folded into an
// existing entity.
func MergedWarning(dict DictionaryType, query, entityID, entityName string, score int) ResolutionWarning {
	return newWarning(WarningMerged, dict, query, entityID, entityName, score)
}

// DuplicateWarning builds the warn-band warning.
func DuplicateWarning(dict DictionaryType, query, entityID, entityName string, score int) ResolutionWarning {
	return newWarning(WarningPossibleDuplicate, dict, query, entityID, entityName, score)
}

// CreatedWarning notes that resolution fell through to creation.
func CreatedWarning(dict DictionaryType, query, entityID string) ResolutionWarning {
	return newWarning(WarningCreated, dict, query, entityID, "", 0)
}
