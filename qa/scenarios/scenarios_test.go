package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"maintenance-scheduler/core/model"
)

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files found")
	}
	for _, f := range files {
		f := f
		t.Run(filepath.Base(f), func(t *testing.T) {
			t.Parallel()
			sc, err := Load(f)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			RunScenario(t, sc)
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected read error")
	}
}

func TestCrewDefDays(t *testing.T) {
	def := CrewDef{Trade: "Elec", ShiftHours: 8, Technicians: 2, Days: []string{"mon", "sat"}}
	crew, err := def.ToModel()
	if err != nil {
		t.Fatalf("ToModel: %v", err)
	}
	if !crew.Monday || !crew.Saturday || crew.Tuesday {
		t.Fatalf("unexpected active days: %+v", crew)
	}

	def.Days = []string{"monday"}
	if _, err := def.ToModel(); err == nil {
		t.Fatal("expected error for unknown day name")
	}
}

func TestWorkOrderDefPin(t *testing.T) {
	day := 2
	def := WorkOrderDef{ID: "WO-1", Trade: "Elec", Type: "preventive", Hours: 4, Priority: 3, PinDay: &day}
	wo := def.ToModel()
	if !wo.Fixed {
		t.Fatalf("pin not applied: %+v", wo)
	}
	if want := start.AddDays(2); !wo.ScheduleDate.Equal(want) {
		t.Fatalf("pinned date = %s, want %s", wo.ScheduleDate, want)
	}
	if wo.Type != model.TypePreventive {
		t.Fatalf("type = %q, want %q", wo.Type, model.TypePreventive)
	}
	if wo.NumPeople != 1 {
		t.Fatalf("people defaulted to %d, want 1", wo.NumPeople)
	}
}
