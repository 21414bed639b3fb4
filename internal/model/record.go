package model

import "time"

// Required field keys, in fixed priority order. Extraction, merging and
// missing-field reporting all walk this slice so the order is stable.
const (
	FieldBudget       = "budget"
	FieldTotalSize    = "total_size"
	FieldPropertyType = "property_type"
	FieldCity         = "city"
)

// RequiredFields is the ordered key set every RequirementRecord carries.
var RequiredFields = []string{FieldBudget, FieldTotalSize, FieldPropertyType, FieldCity}

// Canonical property types the extractor maps free text onto.
const (
	PropertyWarehouse  = "warehouse"
	PropertyOffice     = "office"
	PropertyStore      = "store"
	PropertyIndustrial = "industrial"
)

// RequirementRecord is the running requirements state for one conversation.
// Required keys are always present in the map; a nil-equivalent empty string
// is never stored, absence is modeled by the key holding no entry value.
type RequirementRecord struct {
	ConversationID string             `json:"conversation_id" db:"conversation_id" bson:"conversation_id"`
	Required       map[string]*string `json:"required_fields" bson:"required_fields"`
	Additional     map[string]any     `json:"additional_fields" bson:"additional_fields"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// NewRequirementRecord creates an empty record for the given conversation.
// All required keys exist and are unset; additional fields start empty.
func NewRequirementRecord(conversationID string) *RequirementRecord {
	required := make(map[string]*string, len(RequiredFields))
	for _, field := range RequiredFields {
		required[field] = nil
	}
	now := time.Now().UTC()
	return &RequirementRecord{
		ConversationID: conversationID,
		Required:       required,
		Additional:     make(map[string]any),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Clone returns a deep copy so merges can stay pure over their inputs.
func (r *RequirementRecord) Clone() *RequirementRecord {
	required := make(map[string]*string, len(r.Required))
	for field, value := range r.Required {
		if value == nil {
			required[field] = nil
			continue
		}
		v := *value
		required[field] = &v
	}
	additional := make(map[string]any, len(r.Additional))
	for key, value := range r.Additional {
		additional[key] = value
	}
	return &RequirementRecord{
		ConversationID: r.ConversationID,
		Required:       required,
		Additional:     additional,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// RequiredValue returns the stored value for a required field, or "" when the
// field has not been collected yet.
func (r *RequirementRecord) RequiredValue(field string) string {
	if v, ok := r.Required[field]; ok && v != nil {
		return *v
	}
	return ""
}

// Fields flattens required and additional fields into a single map in the
// shape the chat API and the prompt builder expect.
func (r *RequirementRecord) Fields() map[string]any {
	out := make(map[string]any, len(r.Required)+len(r.Additional))
	for _, field := range RequiredFields {
		if v := r.Required[field]; v != nil {
			out[field] = *v
		} else {
			out[field] = nil
		}
	}
	for key, value := range r.Additional {
		out[key] = value
	}
	return out
}

// ExtractionResult is the transient per-message output of the extractor.
// It never becomes durable state without passing through the merger.
type ExtractionResult struct {
	Required   map[string]string
	Additional map[string]any
}

// NewExtractionResult returns an empty result with both maps allocated.
func NewExtractionResult() *ExtractionResult {
	return &ExtractionResult{
		Required:   make(map[string]string),
		Additional: make(map[string]any),
	}
}

// Empty reports whether the extraction produced no fields at all.
func (e *ExtractionResult) Empty() bool {
	return len(e.Required) == 0 && len(e.Additional) == 0
}
