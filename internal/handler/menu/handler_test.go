package menu

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	menumodel "github.com/lejockey/concierge/backend/internal/model/menu"
)

func setupRouter() *chi.Mux {
	r := chi.NewRouter()
	New(menumodel.NewMemoryStore(menumodel.Seed())).RegisterRoutes(r)
	return r
}

func TestCatalog(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/menu", nil)
	resp := httptest.NewRecorder()
	setupRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var catalog menumodel.Catalog
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(catalog.Menu) == 0 || len(catalog.Events) == 0 {
		t.Fatalf("expected menu and events, got %+v", catalog)
	}
}

func TestEvents(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	resp := httptest.NewRecorder()
	setupRouter().ServeHTTP(resp, req)

	var events []menumodel.Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
}
