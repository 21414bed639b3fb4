package service

import (
	"reflect"
	"testing"

	"leasebot/internal/model"
)

func TestExtractor_RequiredFields(t *testing.T) {
	e := NewExtractor(NewSanitizer())

	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{
			name:     "Budget with currency symbol and thousands separator",
			input:    "My budget is $15,000 per month",
			expected: map[string]string{model.FieldBudget: "15000"},
		},
		{
			name:     "Budget via spend verb",
			input:    "We can spend up to 25000 on rent",
			expected: map[string]string{model.FieldBudget: "25000"},
		},
		{
			name:     "Size with qualifier",
			input:    "I need a space of at least 60 square meters",
			expected: map[string]string{model.FieldTotalSize: "60"},
		},
		{
			name:     "Size with trailing unit",
			input:    "somewhere around 350 sqm would work",
			expected: map[string]string{model.FieldTotalSize: "350"},
		},
		{
			name:     "Property type canonicalized from keyword",
			input:    "I'm looking for a warehouse to rent",
			expected: map[string]string{model.FieldPropertyType: "warehouse"},
		},
		{
			name:     "Property type keyword in Portuguese",
			input:    "preciso de um galpão",
			expected: map[string]string{model.FieldPropertyType: "warehouse"},
		},
		{
			name:     "Unrecognized property type kept raw",
			input:    "I want an apt",
			expected: map[string]string{model.FieldPropertyType: "apt"},
		},
		{
			name:     "City with preposition",
			input:    "somewhere in Dallas, close to downtown",
			expected: map[string]string{model.FieldCity: "Dallas"},
		},
		{
			name:     "Multi-word city with qualifier suffix",
			input:    "I'm looking in Mexico City, preferably in the city center zone",
			expected: map[string]string{model.FieldCity: "Mexico City"},
		},
		{
			name:  "Type and city in one message",
			input: "looking for office in Dallas",
			expected: map[string]string{
				model.FieldPropertyType: "office",
				model.FieldCity:         "Dallas",
			},
		},
		{
			name:     "Budget below valid range rejected",
			input:    "My budget is $5,000",
			expected: map[string]string{},
		},
		{
			name:     "Size above valid range rejected",
			input:    "I need a space of 50000 square meters",
			expected: map[string]string{},
		},
		{
			name:     "City stop words rejected",
			input:    "help me find something near the river",
			expected: map[string]string{},
		},
		{
			name:     "Empty input",
			input:    "",
			expected: map[string]string{},
		},
		{
			name:     "No extractable fields",
			input:    "hello, how are you today",
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := e.Extract(tt.input)
			if !reflect.DeepEqual(result.Required, tt.expected) {
				t.Errorf("Extract(%q).Required = %v, want %v", tt.input, result.Required, tt.expected)
			}
		})
	}
}

func TestExtractor_SanitizedScriptInput(t *testing.T) {
	s := NewSanitizer()
	e := NewExtractor(s)

	clean := s.Sanitize("<script>alert(1)</script> looking for office in Dallas")
	result := e.Extract(clean)

	if got := result.Required[model.FieldPropertyType]; got != model.PropertyOffice {
		t.Errorf("property_type = %q, want %q", got, model.PropertyOffice)
	}
	if got := result.Required[model.FieldCity]; got != "Dallas" {
		t.Errorf("city = %q, want %q", got, "Dallas")
	}
}

func TestExtractor_AdditionalFields(t *testing.T) {
	e := NewExtractor(NewSanitizer())

	t.Run("Amenity flags from prose", func(t *testing.T) {
		result := e.Extract("it must have a parking lot and be pet-friendly")
		if result.Additional["parking"] != true {
			t.Errorf("parking = %v, want true", result.Additional["parking"])
		}
		if result.Additional["pet_friendly"] != true {
			t.Errorf("pet_friendly = %v, want true", result.Additional["pet_friendly"])
		}
	})

	t.Run("Room counts", func(t *testing.T) {
		result := e.Extract("ideally 3 bedrooms and 2 bathrooms")
		if result.Additional["bedrooms"] != 3 {
			t.Errorf("bedrooms = %v, want 3", result.Additional["bedrooms"])
		}
		if result.Additional["bathrooms"] != 2 {
			t.Errorf("bathrooms = %v, want 2", result.Additional["bathrooms"])
		}
	})

	t.Run("Generic key value pair", func(t *testing.T) {
		result := e.Extract("floor: ground level")
		if result.Additional["floor"] != "ground level" {
			t.Errorf("floor = %v, want %q", result.Additional["floor"], "ground level")
		}
	})

	t.Run("Boolean value typed", func(t *testing.T) {
		result := e.Extract("elevator: yes")
		if result.Additional["elevator"] != true {
			t.Errorf("elevator = %v, want true", result.Additional["elevator"])
		}
	})

	t.Run("Required field names never leak into additional", func(t *testing.T) {
		result := e.Extract("budget is flexible and the type is modern")
		for _, field := range model.RequiredFields {
			if _, ok := result.Additional[field]; ok {
				t.Errorf("required field %q leaked into additional fields", field)
			}
		}
		if _, ok := result.Additional["type"]; ok {
			t.Errorf("reserved key %q leaked into additional fields", "type")
		}
	})
}

func TestNormalizeNumeric(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"15,000", "15000"},
		{"15.000.50", "1500050"},
		{"1200.50", "1200.50"},
		{"60", "60"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeNumeric(tt.input); got != tt.expected {
			t.Errorf("normalizeNumeric(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNormalizePropertyType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Warehouse", model.PropertyWarehouse},
		{"small storage unit", model.PropertyWarehouse},
		{"oficina", model.PropertyOffice},
		{"retail space", model.PropertyStore},
		{"factory floor", model.PropertyIndustrial},
		{"apt", "apt"},
		{"loft", "loft"},
	}

	for _, tt := range tests {
		if got := normalizePropertyType(tt.input); got != tt.expected {
			t.Errorf("normalizePropertyType(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNormalizeCity(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"dallas", "Dallas"},
		{"mexico city", "Mexico City"},
		{"São Paulo", "São Paulo"},
		{"the river", ""},
		{"one two three four", ""},
		{"Monterrey zone norte", "Monterrey"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeCity(tt.input); got != tt.expected {
			t.Errorf("normalizeCity(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
