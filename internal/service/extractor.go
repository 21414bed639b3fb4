package service

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"leasebot/internal/model"
)

// fieldRule pairs a required field with its ordered candidate patterns and a
// normalizer. Patterns are tried in order; the first match wins for the
// field. Each pattern captures exactly one group: the raw candidate value.
type fieldRule struct {
	field      string
	patterns   []*regexp.Regexp
	normalizer func(string) string
}

// extractionRules is evaluated in required-field priority order, before any
// additional-field extraction, so overlapping spans resolve in favor of the
// earlier field.
var extractionRules = []fieldRule{
	{
		field: model.FieldBudget,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:budget|price|cost|\$|USD|EUR|€|£|R\$)\s*(?:is|:)?\s*(\d+(?:[.,]\d+)*)\s*(?:per month|monthly|/month|al mes|por mes)?`),
			regexp.MustCompile(`(?i)(?:spend|pay|afford)\s+(?:up to|around|about)?\s*\$?\s*(\d+(?:[.,]\d+)*)`),
		},
		normalizer: normalizeNumeric,
	},
	{
		field: model.FieldTotalSize,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:size|area|space|square meters|square feet|sq ?ft|m²|metros?)\s*(?:of|is|:)?\s*(?:at least|minimum|approximately|about|al menos|m[íi]nimo|aproximadamente)?\s*(\d+(?:[.,]\d+)*)`),
			regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)*)\s*(?:square meters|square feet|sqm|sq ?ft|m²|m2|metros)`),
		},
		normalizer: normalizeNumeric,
	},
	{
		field: model.FieldPropertyType,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:looking for|need|want|searching for|busco|necesito|quiero)\s+(?:an|a|el|la|una|un)?\s*([a-zA-ZÀ-ú][a-zA-ZÀ-ú\s-]*?)(?:\s+(?:to|with|that|for|para|con|que|in|near|around)\b|[.,;!?]|$)`),
			regexp.MustCompile(`(?i)\b(warehouse|galp[ãa]o|galpao|almac[ée]n|storage|office|escrit[óo]rio|oficina|store|loja|tienda|retail|industrial|factory|manufacturing)\b`),
		},
		normalizer: normalizePropertyType,
	},
	{
		field: model.FieldCity,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:\bin|\bat|\bnear|\ben|cerca de|pr[óo]ximo a)\s+([A-Za-zÀ-ú][A-Za-zÀ-ú\s-]*?)(?:\s*,|[.;!?]|\s+(?:preferably|specifically|zone|area|regi[óo]n|zona|área)|$)`),
			regexp.MustCompile(`(?i)city of\s+([A-Za-zÀ-ú][A-Za-zÀ-ú\s-]*?)(?:\s*,|[.;!?]|$)`),
		},
		normalizer: normalizeCity,
	},
}

// Generic "key: value" / "key is value" pattern for open-ended additional
// fields. Keys are sanitized to [a-z_]+ afterwards.
var additionalPattern = regexp.MustCompile(`(?i)\b([a-zA-Z][a-zA-Z -]{1,29}?)\s*(?::\s*|\s+is\s+)([^,.;:\n]{1,100})`)

// Boolean amenity flags recognized from prose mentions rather than key/value
// syntax. Once set they are never retracted by a later merge.
var flagPatterns = map[string]*regexp.Regexp{
	"parking":      regexp.MustCompile(`(?i)\b(?:parking(?:\s+lot)?|car\s?park)\b`),
	"pet_friendly": regexp.MustCompile(`(?i)\b(?:pet[\s-]?friendly|pets?\s+allowed)\b`),
	"furnished":    regexp.MustCompile(`(?i)\bfurnished\b`),
}

// Numeric room counts mentioned in prose.
var countPatterns = map[string]*regexp.Regexp{
	"bedrooms":  regexp.MustCompile(`(?i)(\d+)[\s-]*bed(?:room)?s?\b`),
	"bathrooms": regexp.MustCompile(`(?i)(\d+)[\s-]*bath(?:room)?s?\b`),
}

var (
	nonNumericPattern    = regexp.MustCompile(`[^\d.]`)
	cityQualifierPattern = regexp.MustCompile(`(?i)\s+(?:zone|area|regi[óo]n|zona|área)\b.*$`)
	keySanitizePattern   = regexp.MustCompile(`[^a-z_]`)
)

// cityStopWords rejects prose fragments that the city pattern can capture by
// accident (e.g. verbs from the surrounding sentence).
var cityStopWords = []string{
	"the", "and", "or", "but", "with", "for", "that", "this", "these",
	"those", "meet", "need", "want", "look", "search", "find",
}

// Extractor turns free text into an ExtractionResult by applying the
// per-field rule table and the generic additional-field pass.
type Extractor struct {
	sanitizer *Sanitizer
}

// NewExtractor creates an extractor. The sanitizer is used for the
// dangerous-content check applied to every candidate value.
func NewExtractor(sanitizer *Sanitizer) *Extractor {
	return &Extractor{sanitizer: sanitizer}
}

// Extract applies the field rule table to the text and returns only values
// that pass validation. Required fields are evaluated in fixed priority
// order, then additional fields over the remaining (unclaimed) spans.
func (e *Extractor) Extract(text string) *model.ExtractionResult {
	result := model.NewExtractionResult()
	text = strings.TrimSpace(text)
	if text == "" {
		return result
	}

	// Spans claimed by required-field matches, used to give required
	// extraction precedence over the generic pattern.
	var claimed [][2]int

	for _, rule := range extractionRules {
		for _, pattern := range rule.patterns {
			loc := pattern.FindStringSubmatchIndex(text)
			if loc == nil {
				continue
			}
			raw := strings.TrimSpace(text[loc[2]:loc[3]])
			value := rule.normalizer(raw)
			if value == "" {
				continue
			}
			if !ValidateField(e.sanitizer, rule.field, value) {
				continue
			}
			result.Required[rule.field] = value
			claimed = append(claimed, [2]int{loc[0], loc[1]})
			log.Printf("Field extracted: %s = %s", rule.field, value)
			break
		}
	}

	e.extractAdditional(text, claimed, result)

	return result
}

// extractAdditional runs the generic key/value pass plus the amenity-flag and
// room-count patterns. Keys colliding with required fields and spans already
// claimed by required-field matches are skipped.
func (e *Extractor) extractAdditional(text string, claimed [][2]int, result *model.ExtractionResult) {
	for _, loc := range additionalPattern.FindAllStringSubmatchIndex(text, -1) {
		if overlapsAny(loc[0], loc[1], claimed) {
			continue
		}
		key := sanitizeKey(text[loc[2]:loc[3]])
		if key == "" || isRequiredFieldKey(key) {
			continue
		}
		value := parseAdditionalValue(strings.TrimSpace(text[loc[4]:loc[5]]))
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && (len(s) > MaxFieldLength || e.sanitizer.IsDangerous(s)) {
			continue
		}
		if _, exists := result.Additional[key]; !exists {
			result.Additional[key] = value
			log.Printf("Additional field extracted: %s = %v", key, value)
		}
	}

	for key, pattern := range flagPatterns {
		if pattern.MatchString(text) {
			result.Additional[key] = true
			log.Printf("Additional field extracted: %s = true", key)
		}
	}

	for key, pattern := range countPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if n, err := strconv.Atoi(match[1]); err == nil {
			result.Additional[key] = n
			log.Printf("Additional field extracted: %s = %d", key, n)
		}
	}
}

func overlapsAny(start, end int, spans [][2]int) bool {
	for _, span := range spans {
		if start < span[1] && end > span[0] {
			return true
		}
	}
	return false
}

func isRequiredFieldKey(key string) bool {
	for _, field := range model.RequiredFields {
		if key == field {
			return true
		}
	}
	// "size" alone collides with total_size in practice.
	return key == "size" || key == "type"
}

// sanitizeKey lowercases a captured key and reduces it to [a-z_]+.
func sanitizeKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	key = keySanitizePattern.ReplaceAllString(key, "")
	key = strings.Trim(key, "_")
	return key
}

// parseAdditionalValue types a captured value: booleans for yes/no answers,
// integers where the whole value is numeric, trimmed strings otherwise.
func parseAdditionalValue(raw string) any {
	if raw == "" {
		return nil
	}
	switch strings.ToLower(raw) {
	case "yes", "true":
		return true
	case "no", "false":
		return false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

// normalizeNumeric strips everything but digits and the decimal point, so
// "15,000" and "$15.000" both reduce to a plain number string.
func normalizeNumeric(raw string) string {
	value := nonNumericPattern.ReplaceAllString(raw, "")
	// Thousands separators leave artifacts like "15.000" from "15,000" only
	// when the source used dots; collapse multiple dots to none.
	if strings.Count(value, ".") > 1 {
		value = strings.ReplaceAll(value, ".", "")
	}
	return strings.Trim(value, ".")
}

// normalizePropertyType lowercases the candidate and maps it onto the closed
// canonical set by keyword containment. Unrecognized free text is kept raw.
func normalizePropertyType(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	keywordSets := []struct {
		canonical string
		keywords  []string
	}{
		{model.PropertyWarehouse, []string{"warehouse", "galpão", "galpao", "almacén", "almacen", "storage"}},
		{model.PropertyOffice, []string{"office", "escritório", "escritorio", "oficina"}},
		{model.PropertyStore, []string{"store", "loja", "tienda", "retail"}},
		{model.PropertyIndustrial, []string{"industrial", "factory", "manufacturing"}},
	}
	for _, set := range keywordSets {
		for _, keyword := range set.keywords {
			if strings.Contains(value, keyword) {
				return set.canonical
			}
		}
	}
	return value
}

// normalizeCity title-cases the candidate, strips trailing zone/area
// qualifiers, and rejects prose fragments (too many words or stop-words).
func normalizeCity(raw string) string {
	value := cityQualifierPattern.ReplaceAllString(strings.TrimSpace(raw), "")
	value = titleCase(value)
	words := strings.Fields(value)
	if len(words) == 0 || len(words) > 3 {
		return ""
	}
	for _, word := range words {
		lower := strings.ToLower(word)
		for _, stop := range cityStopWords {
			if lower == stop {
				return ""
			}
		}
	}
	return strings.Join(words, " ")
}

// titleCase uppercases the first rune of each word. strings.Title is
// deprecated and Unicode-aware casing is not needed for city names here.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
