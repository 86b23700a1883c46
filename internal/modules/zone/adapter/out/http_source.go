package out

import (
	"context"
	"fmt"

	"invsync/internal/modules/zone/domain"
	zoneout "invsync/internal/modules/zone/port/out"
	"invsync/internal/platform/httpapi"
)

type HTTPSource struct {
	client *httpapi.Client
}

func NewHTTPSource(client *httpapi.Client) zoneout.Source {
	return &HTTPSource{client: client}
}

type zoneRecord struct {
	ID          int64            `json:"id"`
	ZoneID      int64            `json:"zoneId"`
	Name        string           `json:"name"`
	BranchID    int64            `json:"branchId"`
	StateZone   domain.StateZone `json:"stateZone"`
	StateLabel  string           `json:"stateLabel"`
	IconName    string           `json:"iconName"`
	IsAvailable bool             `json:"isAvailable"`
}

func (s *HTTPSource) ZonesByUser(ctx context.Context, userID int64) ([]domain.Zone, error) {
	var records []zoneRecord
	if err := s.client.Get(ctx, fmt.Sprintf("api/Zone/GetByUser/%d", userID), &records); err != nil {
		return nil, err
	}
	zones := make([]domain.Zone, 0, len(records))
	for _, rec := range records {
		id := rec.ID
		if id == 0 {
			id = rec.ZoneID
		}
		zones = append(zones, domain.Zone{
			ID:          id,
			Name:        rec.Name,
			BranchID:    rec.BranchID,
			State:       rec.StateZone,
			StateLabel:  rec.StateLabel,
			IconName:    rec.IconName,
			IsAvailable: rec.IsAvailable,
		})
	}
	return zones, nil
}
