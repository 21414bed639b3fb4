package service

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"leasebot/internal/model"
)

// ValidationRule constrains the values a field may hold. A value failing any
// configured check is rejected outright, never truncated or partially stored.
type ValidationRule struct {
	Pattern   *regexp.Regexp
	MaxLength int
	MinValue  float64
	MaxValue  float64
	HasRange  bool
	Allowed   []string
}

// fieldRules holds the per-field validation table. Budget and size are
// numeric strings in currency units / square meters; property type and city
// are constrained free text.
var fieldRules = map[string]ValidationRule{
	model.FieldBudget: {
		Pattern:   regexp.MustCompile(`^\d+(\.\d{1,2})?$`),
		MaxLength: 10,
		MinValue:  10000,
		MaxValue:  1000000000,
		HasRange:  true,
	},
	model.FieldTotalSize: {
		Pattern:   regexp.MustCompile(`^\d+(\.\d{1,2})?$`),
		MaxLength: 10,
		MinValue:  10,
		MaxValue:  10000,
		HasRange:  true,
	},
	model.FieldPropertyType: {
		Pattern:   regexp.MustCompile(`^[a-z\s-]+$`),
		MaxLength: 20,
	},
	model.FieldCity: {
		Pattern:   regexp.MustCompile(`^[a-zA-Z\s\-']+$`),
		MaxLength: 50,
	},
}

// Validate checks a candidate value against the rule. Returns false when the
// value must be discarded for this turn.
func (r ValidationRule) Validate(value string) bool {
	if value == "" {
		return false
	}
	if r.MaxLength > 0 && len(value) > r.MaxLength {
		return false
	}
	if r.Pattern != nil && !r.Pattern.MatchString(value) {
		return false
	}
	if r.HasRange {
		num, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		if num < r.MinValue || num > r.MaxValue {
			return false
		}
	}
	if len(r.Allowed) > 0 {
		found := false
		lower := strings.ToLower(value)
		for _, allowed := range r.Allowed {
			if lower == allowed {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ValidateField applies the configured rule for a required field, plus the
// dangerous-content check that applies to every stored value.
func ValidateField(s *Sanitizer, field, value string) bool {
	rule, ok := fieldRules[field]
	if !ok {
		return value != "" && len(value) <= MaxFieldLength
	}
	if !rule.Validate(value) {
		log.Printf("Invalid value for field %s: %q", field, value)
		return false
	}
	if s.IsDangerous(value) {
		log.Printf("Field %s value contains dangerous content, discarding", field)
		return false
	}
	return true
}
