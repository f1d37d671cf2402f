package appointments

import "testing"

func TestHoursFor(t *testing.T) {
	tests := []struct {
		day   string
		hours string
		ok    bool
	}{
		{"Lunes", "9:00 AM - 6:00 PM", true},
		{"Miércoles", "9:00 AM - 6:00 PM", true},
		{"Viernes", "9:00 AM - 6:00 PM", true},
		{"Sábado", "9:00 AM - 1:00 PM", true},
		{"Domingo", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			hours, ok := HoursFor(tt.day)
			if hours != tt.hours || ok != tt.ok {
				t.Errorf("HoursFor(%q) = %q, %v; want %q, %v", tt.day, hours, ok, tt.hours, tt.ok)
			}
		})
	}
}

func TestScheduleOrder(t *testing.T) {
	schedule := Schedule()
	if len(schedule) != 6 {
		t.Fatalf("Schedule() has %d days, want 6", len(schedule))
	}
	if schedule[0].Day != "Lunes" || schedule[5].Day != "Sábado" {
		t.Errorf("unexpected order: %+v", schedule)
	}
	for _, d := range schedule {
		if d.Hours == "" {
			t.Errorf("missing hours for %s", d.Day)
		}
	}
}

func TestSummarize(t *testing.T) {
	s, ok := Summarize("Villa Carlos Paz", "Sábado")
	if !ok {
		t.Fatal("Summarize() = false for valid office and day")
	}
	if s.Hours != "9:00 AM - 1:00 PM" || s.Note != ContactNote {
		t.Errorf("Summarize() = %+v", s)
	}

	if _, ok := Summarize("", "Lunes"); ok {
		t.Error("summary requires an office")
	}
	if _, ok := Summarize("Colonia Tirolesa", "Domingo"); ok {
		t.Error("summary requires a working day")
	}
}
