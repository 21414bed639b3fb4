package service

import (
	"log"
	"strconv"
	"strings"
	"time"

	"leasebot/internal/model"

	"github.com/google/uuid"
)

// booleanFlags are additional fields that, once observed, stay true. There is
// no retraction path for them.
var booleanFlags = map[string]bool{
	"parking":      true,
	"pet_friendly": true,
	"furnished":    true,
}

// numericAdditional are additional fields stored as integers; non-numeric
// values are dropped rather than stored as text.
var numericAdditional = map[string]bool{
	"bedrooms":  true,
	"bathrooms": true,
}

// Merger incorporates extraction results into a RequirementRecord.
type Merger struct {
	sanitizer *Sanitizer
}

// NewMerger creates a merger sharing the pipeline's sanitizer for the
// validation applied on write.
func NewMerger(sanitizer *Sanitizer) *Merger {
	return &Merger{sanitizer: sanitizer}
}

// Merge returns a new record with the extraction folded in. The inputs are
// never mutated. Required fields follow more-specific-wins: a new value
// replaces the current one only when it is strictly longer, or for city, when
// it names a more complete place containing the current one. Re-merging the
// same or a degraded value therefore never regresses captured state.
func (m *Merger) Merge(record *model.RequirementRecord, extraction *model.ExtractionResult) *model.RequirementRecord {
	merged := record.Clone()
	if extraction == nil || extraction.Empty() {
		return merged
	}

	changed := false

	for _, field := range model.RequiredFields {
		value, ok := extraction.Required[field]
		if !ok || value == "" {
			continue
		}
		if !ValidateField(m.sanitizer, field, value) {
			continue
		}
		current := merged.RequiredValue(field)
		if current != "" && !moreSpecific(field, value, current) {
			log.Printf("Keeping existing %s=%q over less specific %q", field, current, value)
			continue
		}
		v := value
		merged.Required[field] = &v
		changed = true
	}

	for key, value := range extraction.Additional {
		stored, ok := mergeAdditionalValue(key, value, merged.Additional[key])
		if !ok {
			continue
		}
		if prev, exists := merged.Additional[key]; !exists || prev != stored {
			merged.Additional[key] = stored
			changed = true
		}
	}

	if changed {
		merged.UpdatedAt = monotonicNow(merged.UpdatedAt)
	}

	return merged
}

// mergeAdditionalValue applies the per-kind upsert policy for an additional
// field. Returns the value to store and whether to store it at all.
func mergeAdditionalValue(key string, value, existing any) (any, bool) {
	if booleanFlags[key] {
		// Sticky true: never retracted, and a "false" observation does not
		// set the flag either.
		if b, ok := value.(bool); ok && b {
			return true, true
		}
		if existing == true {
			return true, true
		}
		return nil, false
	}

	if numericAdditional[key] {
		switch v := value.(type) {
		case int:
			return v, true
		case float64:
			return int(v), true
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n, true
			}
		}
		return nil, false
	}

	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, false
		}
		return trimmed, true
	case bool, int, float64:
		return v, true
	}
	return nil, false
}

// moreSpecific reports whether the candidate should replace the current
// value. Strictly longer strings win; for city, a candidate containing the
// current value names a more complete place (e.g. "Mexico City" over
// "Mexico") and wins regardless of a length tie.
func moreSpecific(field, candidate, current string) bool {
	if len(candidate) > len(current) {
		return true
	}
	if field == model.FieldCity {
		return candidate != current && strings.Contains(candidate, current)
	}
	return false
}

// monotonicNow guarantees updated_at strictly increases even when two merges
// land within clock resolution.
func monotonicNow(last time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(last) {
		return last.Add(time.Nanosecond)
	}
	return now
}

// Reset produces a fresh record under a brand-new conversation identifier.
// This is the only state-clearing operation; the old record is abandoned,
// not mutated.
func (m *Merger) Reset() *model.RequirementRecord {
	return model.NewRequirementRecord(uuid.NewString())
}

// IsComplete reports whether every required field holds a valid value. Strict
// conjunction over the four required fields; no partial weighting.
func IsComplete(record *model.RequirementRecord) bool {
	return len(MissingFields(record)) == 0
}

// MissingFields returns the unset (or invalid) required fields in the fixed
// field order, used downstream to phrase "what's still needed" prompts.
func MissingFields(record *model.RequirementRecord) []string {
	missing := make([]string, 0, len(model.RequiredFields))
	for _, field := range model.RequiredFields {
		value := record.RequiredValue(field)
		if value == "" || !fieldRules[field].Validate(value) {
			missing = append(missing, field)
		}
	}
	return missing
}
