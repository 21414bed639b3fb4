package service

import (
	"strings"
	"testing"

	"leasebot/internal/model"
)

func TestBuildSystemPrompt(t *testing.T) {
	t.Run("Empty record lists every field as missing", func(t *testing.T) {
		prompt := BuildSystemPrompt(model.NewRequirementRecord("c1"))

		if !strings.Contains(prompt, "STILL NEED TO COLLECT") {
			t.Errorf("prompt does not list missing fields")
		}
		for _, field := range model.RequiredFields {
			if !strings.Contains(prompt, field) {
				t.Errorf("prompt missing field %q", field)
			}
		}
		if strings.Contains(prompt, "COLLECTED INFORMATION") {
			t.Errorf("empty record should not claim collected information")
		}
	})

	t.Run("Collected values appear and are not re-requested", func(t *testing.T) {
		record := model.NewRequirementRecord("c2")
		budget := "15000"
		record.Required[model.FieldBudget] = &budget
		record.Additional["parking"] = true

		prompt := BuildSystemPrompt(record)

		if !strings.Contains(prompt, "budget: 15000") {
			t.Errorf("collected budget not described:\n%s", prompt)
		}
		if !strings.Contains(prompt, "parking: true") {
			t.Errorf("additional field not described:\n%s", prompt)
		}
		missingSection := prompt[strings.Index(prompt, "STILL NEED TO COLLECT"):]
		if strings.Contains(strings.SplitN(missingSection, "\n", 2)[0], model.FieldBudget) {
			t.Errorf("collected budget still listed as missing:\n%s", missingSection)
		}
	})

	t.Run("Complete record switches to additional-preferences mode", func(t *testing.T) {
		record := model.NewRequirementRecord("c3")
		for field, value := range map[string]string{
			model.FieldBudget:       "15000",
			model.FieldTotalSize:    "60",
			model.FieldPropertyType: "warehouse",
			model.FieldCity:         "Dallas",
		} {
			v := value
			record.Required[field] = &v
		}

		prompt := BuildSystemPrompt(record)

		if strings.Contains(prompt, "STILL NEED TO COLLECT") {
			t.Errorf("complete record still asks for fields:\n%s", prompt)
		}
		if !strings.Contains(prompt, "ALL required fields have been collected") {
			t.Errorf("complete record not acknowledged:\n%s", prompt)
		}
	})
}
