package repository

import (
	"context"
	"testing"

	"leasebot/internal/model"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Load of absent conversation returns nil, nil", func(t *testing.T) {
		repo := NewMemoryRepository()
		record, err := repo.Load(ctx, "nope")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if record != nil {
			t.Errorf("expected nil record, got %+v", record)
		}
	})

	t.Run("Save then Load round trip", func(t *testing.T) {
		repo := NewMemoryRepository()
		record := model.NewRequirementRecord("conv-mem-1")
		budget := "15000"
		record.Required[model.FieldBudget] = &budget
		record.Additional["parking"] = true

		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("Save: %v", err)
		}
		loaded, err := repo.Load(ctx, "conv-mem-1")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if loaded.RequiredValue(model.FieldBudget) != "15000" {
			t.Errorf("budget = %q, want %q", loaded.RequiredValue(model.FieldBudget), "15000")
		}
		if loaded.Additional["parking"] != true {
			t.Errorf("parking = %v, want true", loaded.Additional["parking"])
		}
	})

	t.Run("Stored state is isolated from caller mutation", func(t *testing.T) {
		repo := NewMemoryRepository()
		record := model.NewRequirementRecord("conv-mem-2")
		city := "Dallas"
		record.Required[model.FieldCity] = &city

		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("Save: %v", err)
		}

		// Mutate the original and a loaded copy; neither may leak back.
		*record.Required[model.FieldCity] = "Austin"
		loaded, _ := repo.Load(ctx, "conv-mem-2")
		loaded.Additional["intruder"] = true

		again, _ := repo.Load(ctx, "conv-mem-2")
		if again.RequiredValue(model.FieldCity) != "Dallas" {
			t.Errorf("caller mutation leaked into store: city = %q", again.RequiredValue(model.FieldCity))
		}
		if _, ok := again.Additional["intruder"]; ok {
			t.Errorf("loaded-copy mutation leaked into store")
		}
	})

	t.Run("Save overwrites previous state", func(t *testing.T) {
		repo := NewMemoryRepository()
		record := model.NewRequirementRecord("conv-mem-3")
		size := "60"
		record.Required[model.FieldTotalSize] = &size
		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("Save: %v", err)
		}

		bigger := "120"
		record.Required[model.FieldTotalSize] = &bigger
		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("second Save: %v", err)
		}

		loaded, _ := repo.Load(ctx, "conv-mem-3")
		if loaded.RequiredValue(model.FieldTotalSize) != "120" {
			t.Errorf("total_size = %q, want %q", loaded.RequiredValue(model.FieldTotalSize), "120")
		}
	})
}
