package models

import (
	"encoding/json"
	"testing"
)

func TestAppointmentIDUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    AppointmentID
		wantErr bool
	}{
		{name: "number", input: `1760900000000`, want: 1760900000000},
		{name: "string", input: `"1760900000000"`, want: 1760900000000},
		{name: "padded string", input: `" 42 "`, want: 42},
		{name: "letters", input: `"abc"`, wantErr: true},
		{name: "fraction", input: `1.5`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id AppointmentID
			err := json.Unmarshal([]byte(tt.input), &id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && id != tt.want {
				t.Errorf("Unmarshal(%s) = %d, want %d", tt.input, id, tt.want)
			}
		})
	}
}

func TestAppointmentOptionalFieldsOmitted(t *testing.T) {
	a := Appointment{ID: 1, Name: "Juan Perez", Day: "Lunes"}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := raw["treatment"]; ok {
		t.Error("empty treatment should be omitted")
	}
	if _, ok := raw["notes"]; ok {
		t.Error("empty notes should be omitted")
	}
	if raw["id"] != float64(1) {
		t.Errorf("id should be encoded as a number, got %v", raw["id"])
	}
}

func TestTreatmentUnmarshalAcceptsLegacyKeys(t *testing.T) {
	input := `[{"name":"Limpieza facial","cssClass":"facial"},{"nombre":"Peeling","clase":"peeling"}]`

	var got []Treatment
	if err := json.Unmarshal([]byte(input), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []Treatment{
		{Name: "Limpieza facial", CSSClass: "facial"},
		{Name: "Peeling", CSSClass: "peeling"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d treatments, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("treatment[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAppointmentProfile(t *testing.T) {
	a := Appointment{Name: "Ana Gomez", NationalID: "1234567", Phone: "3511234567", Email: "a@b.com", Office: "Villa Carlos Paz"}
	p := a.Profile()
	if p.Name != a.Name || p.NationalID != a.NationalID || p.Phone != a.Phone || p.Email != a.Email {
		t.Errorf("Profile() = %+v", p)
	}
	if p.IsEmpty() {
		t.Error("profile should not be empty")
	}
	if !(PersonalProfile{}).IsEmpty() {
		t.Error("zero profile should be empty")
	}
}
