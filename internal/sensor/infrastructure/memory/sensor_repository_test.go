package memory

import (
	"context"
	"errors"
	"testing"

	"climagraph/internal/mapping"
	sensor "climagraph/internal/sensor/domain"
)

func TestSaveGetRoundTrip(t *testing.T) {
	repo := NewSensorRepository()
	ctx := context.Background()

	var m mapping.ColumnMapping
	m.Set(mapping.FieldDate, "Date Time")
	m.Set(mapping.FieldTemperature, "Temp")

	sn := &sensor.Sensor{ID: "s1", Name: "C3", FilePath: "/data/c3.csv", Mapping: &m}
	if err := repo.Save(ctx, sn); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "C3" || got.Mapping == nil || got.Mapping.Date != "Date Time" {
		t.Fatalf("got %+v", got)
	}
}

func TestGetReturnsCopies(t *testing.T) {
	repo := NewSensorRepository()
	ctx := context.Background()

	var m mapping.ColumnMapping
	m.Set(mapping.FieldDate, "d")
	m.Set(mapping.FieldTemperature, "t")
	if err := repo.Save(ctx, &sensor.Sensor{ID: "s1", Name: "C3", Mapping: &m}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	first, _ := repo.Get(ctx, "s1")
	first.Name = "mutated"
	first.Mapping.Date = "mutated"

	second, _ := repo.Get(ctx, "s1")
	if second.Name != "C3" || second.Mapping.Date != "d" {
		t.Fatal("stored sensor aliased by a reader")
	}
}

func TestGetByName(t *testing.T) {
	repo := NewSensorRepository()
	ctx := context.Background()

	_ = repo.Save(ctx, &sensor.Sensor{ID: "s1", Name: "C3"})
	_ = repo.Save(ctx, &sensor.Sensor{ID: "s2", Name: "C4"})

	got, err := repo.GetByName(ctx, "C4")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got.ID != "s2" {
		t.Fatalf("id = %q", got.ID)
	}
	if _, err := repo.GetByName(ctx, "C5"); !errors.Is(err, sensor.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrderedByName(t *testing.T) {
	repo := NewSensorRepository()
	ctx := context.Background()

	_ = repo.Save(ctx, &sensor.Sensor{ID: "s2", Name: "C4"})
	_ = repo.Save(ctx, &sensor.Sensor{ID: "s1", Name: "C3"})
	_ = repo.Save(ctx, &sensor.Sensor{ID: "s3", Name: "Annex ext"})

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].Name != "Annex ext" || list[1].Name != "C3" || list[2].Name != "C4" {
		t.Fatalf("order = %q %q %q", list[0].Name, list[1].Name, list[2].Name)
	}
}

func TestDelete(t *testing.T) {
	repo := NewSensorRepository()
	ctx := context.Background()

	_ = repo.Save(ctx, &sensor.Sensor{ID: "s1", Name: "C3"})
	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "s1"); !errors.Is(err, sensor.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Get(ctx, "s1"); !errors.Is(err, sensor.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
