package out

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invsync/internal/modules/zone/domain"
	apperrors "invsync/internal/platform/errors"
	"invsync/internal/platform/httpapi"
)

func TestHTTPSourceDecodesZones(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/Zone/GetByUser/3":
			_, _ = w.Write([]byte(`[
				{"id":1,"name":"Bodega","branchId":5,"stateZone":0,"stateLabel":"Disponible","iconName":"lock-open-outline","isAvailable":true},
				{"zoneId":2,"name":"Caja","branchId":5,"stateZone":"InInventory","stateLabel":"En Inventario","iconName":"lock-close-outline","isAvailable":false}
			]`))
		default:
			http.Error(w, `{"message":"sin zonas"}`, http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := httpapi.New(server.URL, time.Second, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	source := NewHTTPSource(client)

	zones, err := source.ZonesByUser(context.Background(), 3)
	if err != nil {
		t.Fatalf("zones: %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}
	if zones[0].State != domain.StateAvailable || !zones[0].IsAvailable {
		t.Fatalf("unexpected first zone: %+v", zones[0])
	}
	if zones[1].ID != 2 || zones[1].State != domain.StateInInventory {
		t.Fatalf("unexpected second zone: %+v", zones[1])
	}

	if _, err := source.ZonesByUser(context.Background(), 4); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
