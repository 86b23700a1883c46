package out

import (
	"context"
	"fmt"

	"invsync/internal/modules/verification/domain"
	verificationout "invsync/internal/modules/verification/port/out"
	"invsync/internal/platform/httpapi"
)

type HTTPSource struct {
	client *httpapi.Client
}

func NewHTTPSource(client *httpapi.Client) verificationout.Source {
	return &HTTPSource{client: client}
}

type operatingRecord struct {
	OperatingGroupID *int64 `json:"operatingGroupId"`
	BranchID         *int64 `json:"branchId"`
}

type entryRecord struct {
	InventaryID int64  `json:"inventaryId"`
	Date        string `json:"date"`
	ZoneID      int64  `json:"zoneId"`
	ZoneName    string `json:"zoneName"`
	BranchID    int64  `json:"branchId"`
}

func (s *HTTPSource) BranchForUser(ctx context.Context, userID int64) (int64, bool, error) {
	var rec operatingRecord
	if err := s.client.Get(ctx, fmt.Sprintf("api/Operating/GetOperatingId/%d", userID), &rec); err != nil {
		return 0, false, err
	}
	if rec.BranchID == nil || *rec.BranchID == 0 {
		return 0, false, nil
	}
	return *rec.BranchID, true, nil
}

func (s *HTTPSource) PendingByBranch(ctx context.Context, branchID int64) ([]domain.Entry, error) {
	var records []entryRecord
	if err := s.client.Get(ctx, fmt.Sprintf("api/Inventary/VerificationBranch/%d", branchID), &records); err != nil {
		return nil, err
	}
	entries := make([]domain.Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, domain.Entry{
			InventaryID: rec.InventaryID,
			Date:        rec.Date,
			ZoneID:      rec.ZoneID,
			ZoneName:    rec.ZoneName,
			BranchID:    rec.BranchID,
		})
	}
	return entries, nil
}
