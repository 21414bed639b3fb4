package repository

import (
	"context"
	"path/filepath"
	"testing"

	"leasebot/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "leasebot.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Load of absent conversation returns nil, nil", func(t *testing.T) {
		repo := newTestSQLite(t)
		record, err := repo.Load(ctx, "nope")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if record != nil {
			t.Errorf("expected nil record, got %+v", record)
		}
	})

	t.Run("Save then Load round trip", func(t *testing.T) {
		repo := newTestSQLite(t)

		record := model.NewRequirementRecord("conv-sql-1")
		budget, city := "15000", "Dallas"
		record.Required[model.FieldBudget] = &budget
		record.Required[model.FieldCity] = &city
		record.Additional["parking"] = true
		record.Additional["bedrooms"] = 3
		record.Additional["floor"] = "ground level"

		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("Save: %v", err)
		}

		loaded, err := repo.Load(ctx, "conv-sql-1")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if loaded == nil {
			t.Fatal("expected a record")
		}
		if loaded.RequiredValue(model.FieldBudget) != "15000" {
			t.Errorf("budget = %q, want %q", loaded.RequiredValue(model.FieldBudget), "15000")
		}
		if loaded.RequiredValue(model.FieldCity) != "Dallas" {
			t.Errorf("city = %q, want %q", loaded.RequiredValue(model.FieldCity), "Dallas")
		}
		if loaded.RequiredValue(model.FieldTotalSize) != "" {
			t.Errorf("unset total_size came back as %q", loaded.RequiredValue(model.FieldTotalSize))
		}
		if loaded.Additional["parking"] != true {
			t.Errorf("parking = %v, want true", loaded.Additional["parking"])
		}
		if loaded.Additional["bedrooms"] != 3 {
			t.Errorf("bedrooms = %v (%T), want int 3", loaded.Additional["bedrooms"], loaded.Additional["bedrooms"])
		}
		if loaded.Additional["floor"] != "ground level" {
			t.Errorf("floor = %v, want %q", loaded.Additional["floor"], "ground level")
		}
	})

	t.Run("Save upserts on conflict", func(t *testing.T) {
		repo := newTestSQLite(t)

		record := model.NewRequirementRecord("conv-sql-2")
		size := "60"
		record.Required[model.FieldTotalSize] = &size
		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("Save: %v", err)
		}

		bigger := "120"
		record.Required[model.FieldTotalSize] = &bigger
		record.Additional["furnished"] = true
		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("second Save: %v", err)
		}

		loaded, err := repo.Load(ctx, "conv-sql-2")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if loaded.RequiredValue(model.FieldTotalSize) != "120" {
			t.Errorf("total_size = %q, want %q", loaded.RequiredValue(model.FieldTotalSize), "120")
		}
		if loaded.Additional["furnished"] != true {
			t.Errorf("furnished = %v, want true", loaded.Additional["furnished"])
		}
	})

	t.Run("Empty additional map round trips", func(t *testing.T) {
		repo := newTestSQLite(t)

		record := model.NewRequirementRecord("conv-sql-3")
		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("Save: %v", err)
		}
		loaded, err := repo.Load(ctx, "conv-sql-3")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if loaded.Additional == nil || len(loaded.Additional) != 0 {
			t.Errorf("Additional = %v, want empty map", loaded.Additional)
		}
	})
}
