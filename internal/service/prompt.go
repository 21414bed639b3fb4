package service

import (
	"fmt"
	"strings"

	"leasebot/internal/model"
)

const basePrompt = `You are a helpful real estate assistant. Your task is to collect information about the user's real estate requirements. You need to collect the following required fields:
- Budget
- Total Size Requirement
- Real Estate Type
- City

You can also collect additional relevant information. Be conversational and friendly while ensuring all required information is collected.

IMPORTANT: Focus on helping users with their real estate needs. If asked about topics outside of real estate, politely redirect the conversation back to real estate matters.`

// BuildSystemPrompt describes the collected and missing fields to the
// response generator so it asks only for what is still needed.
func BuildSystemPrompt(record *model.RequirementRecord) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	collected := 0
	var fields strings.Builder
	for _, field := range model.RequiredFields {
		if value := record.RequiredValue(field); value != "" {
			fmt.Fprintf(&fields, "- %s: %s\n", field, value)
			collected++
		}
	}
	for key, value := range record.Additional {
		fmt.Fprintf(&fields, "- %s: %v\n", key, value)
	}

	if fields.Len() > 0 {
		b.WriteString("\n\nIMPORTANT - COLLECTED INFORMATION:\n")
		b.WriteString("The following information has already been collected from the user:\n")
		b.WriteString(fields.String())
	}

	b.WriteString("\nINSTRUCTIONS:\n")
	if missing := MissingFields(record); len(missing) == 0 {
		b.WriteString("ALL required fields have been collected. Focus on gathering any additional requirements or preferences the user might have.\n")
	} else {
		fmt.Fprintf(&b, "STILL NEED TO COLLECT: %s. Focus on asking for these missing fields.\n", strings.Join(missing, ", "))
	}
	b.WriteString("DO NOT ask for information that has already been provided. If the user provides new information, acknowledge it and update your understanding.\n")

	return b.String()
}
