package in

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	pushin "invsync/internal/modules/push/port/in"
	"invsync/internal/modules/zone/domain"
	zonedto "invsync/internal/modules/zone/dto"
	"invsync/internal/modules/zone/service"
	"invsync/internal/modules/zone/usecase"
	"invsync/internal/platform/httpserver"
)

type staticSource []domain.Zone

func (s staticSource) ZonesByUser(context.Context, int64) ([]domain.Zone, error) {
	return s, nil
}

type noPush struct {
	pushin.Usecase
}

func TestZonesEndpointFilters(t *testing.T) {
	t.Parallel()

	svc := service.NewReconciler(staticSource{
		{ID: 1, Name: "Bodega", State: domain.StateAvailable, IsAvailable: true},
		{ID: 2, Name: "Bodega 2", State: domain.StateInInventory},
		{ID: 3, Name: "Caja", State: domain.StateInInventory},
	}, noPush{}, zerolog.Nop())
	uc := usecase.NewInteractor(svc)
	if _, err := uc.Load(context.Background(), 1); err != nil {
		t.Fatalf("load: %v", err)
	}
	router := httpserver.NewRouter(zerolog.Nop(), NewHTTPHandler(uc))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/zones?q=bodega&state=ininventory", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var zones []zonedto.ZoneOutput
	if err := json.NewDecoder(rec.Body).Decode(&zones); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(zones) != 1 || zones[0].ID != 2 || zones[0].State != "InInventory" {
		t.Fatalf("unexpected zones: %+v", zones)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/zones?state=closed", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown state, got %d", rec.Code)
	}
}

func TestCLIHandlerAppliesFilterSelection(t *testing.T) {
	t.Parallel()

	svc := service.NewReconciler(staticSource{
		{ID: 1, Name: "Bodega", State: domain.StateAvailable, IsAvailable: true},
		{ID: 2, Name: "Caja", State: domain.StateInVerification},
	}, noPush{}, zerolog.Nop())
	handler := NewCLIHandler(usecase.NewInteractor(svc))

	zones, notice, err := handler.List(context.Background(), 1, "", 4)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if notice != "" || len(zones) != 1 || zones[0].ID != 2 {
		t.Fatalf("unexpected result: %+v %q", zones, notice)
	}
}
