package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/vitalis/turnos/pkg/errors"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCatalog_Load(t *testing.T) {
	srv := serve(t, http.StatusOK, `[
		{"name": "Limpieza facial", "cssClass": "tratamiento-facial"},
		{"nombre": "Peeling", "clase": "tratamiento-peeling"}
	]`)

	c := New(NewLoader(srv.URL+"/json/tratamientos.json", srv.Client(), nil))
	if c.Loaded() {
		t.Fatal("catalog should not be loaded before Load()")
	}

	c.Load(context.Background())

	if !c.Loaded() {
		t.Fatal("Loaded() = false after successful load")
	}
	treatments := c.Treatments()
	if len(treatments) != 2 {
		t.Fatalf("got %d treatments, want 2", len(treatments))
	}
	if treatments[1].Name != "Peeling" || treatments[1].CSSClass != "tratamiento-peeling" {
		t.Errorf("legacy keys not decoded: %+v", treatments[1])
	}

	names := c.Names()
	if len(names) != 2 || names[0] != "Limpieza facial" {
		t.Errorf("Names() = %v", names)
	}

	// Изменение копии не влияет на каталог
	treatments[0].Name = "changed"
	if c.Treatments()[0].Name != "Limpieza facial" {
		t.Error("Treatments() must return a copy")
	}
}

func TestCatalog_FailuresLeaveCatalogEmpty(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "not found", status: http.StatusNotFound, body: `not found`},
		{name: "server error", status: http.StatusInternalServerError, body: `[]`},
		{name: "invalid json", status: http.StatusOK, body: `{"name": "not an array"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			loader := NewLoader(srv.URL, srv.Client(), nil)

			_, err := loader.Fetch(context.Background())
			if !errors.Is(err, apperrors.ErrCatalogFetch) {
				t.Errorf("Fetch() error = %v, want CATALOG_FETCH", err)
			}

			c := New(loader)
			c.Load(context.Background())
			if c.Loaded() || len(c.Treatments()) != 0 {
				t.Errorf("catalog should stay empty, got %v", c.Treatments())
			}
		})
	}
}

func TestCatalog_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(NewLoader(url, nil, nil))
	c.Load(context.Background())

	if c.Loaded() {
		t.Error("Loaded() = true after network error")
	}
	if got := c.Treatments(); got == nil || len(got) != 0 {
		t.Errorf("Treatments() = %v, want empty non-nil slice", got)
	}
}

func TestFetch_EmptyArray(t *testing.T) {
	srv := serve(t, http.StatusOK, `[]`)

	treatments, err := NewLoader(srv.URL, srv.Client(), nil).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if treatments == nil || len(treatments) != 0 {
		t.Errorf("Fetch() = %v, want empty slice", treatments)
	}
}
