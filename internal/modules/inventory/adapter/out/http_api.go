package out

import (
	"context"
	"fmt"

	"invsync/internal/modules/inventory/domain"
	inventoryout "invsync/internal/modules/inventory/port/out"
	"invsync/internal/platform/httpapi"
)

type HTTPAPI struct {
	client *httpapi.Client
}

func NewHTTPAPI(client *httpapi.Client) inventoryout.API {
	return &HTTPAPI{client: client}
}

type startRequest struct {
	ZoneID           int64 `json:"zoneId"`
	OperatingGroupID int64 `json:"operatingGroupId"`
}

type startResponse struct {
	InventaryID    int64  `json:"inventaryId"`
	InvitationCode string `json:"invitationCode"`
}

type finishRequest struct {
	InventaryID  int64  `json:"inventaryId"`
	Observations string `json:"observations"`
}

type manualScanRequest struct {
	InventaryID int64              `json:"inventaryId"`
	Entries     []manualScanRecord `json:"entries"`
}

type manualScanRecord struct {
	ItemID      int64 `json:"itemId"`
	StateItemID int64 `json:"stateItemId"`
}

type missingItemRecord struct {
	ItemID       int64  `json:"itemId"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CurrentState string `json:"currentState"`
}

type operatingRecord struct {
	OperatingGroupID int64 `json:"operatingGroupId"`
	BranchID         int64 `json:"branchId"`
}

func (a *HTTPAPI) Start(ctx context.Context, zoneID, operatingGroupID int64) (domain.StartResult, error) {
	var resp startResponse
	if err := a.client.Post(ctx, "api/Inventary/Start", startRequest{ZoneID: zoneID, OperatingGroupID: operatingGroupID}, &resp); err != nil {
		return domain.StartResult{}, err
	}
	return domain.StartResult{SessionID: resp.InventaryID, InvitationCode: resp.InvitationCode}, nil
}

func (a *HTTPAPI) Finish(ctx context.Context, sessionID int64, observations string) error {
	return a.client.Post(ctx, "api/Inventary/Finish", finishRequest{InventaryID: sessionID, Observations: observations}, nil)
}

func (a *HTTPAPI) Cancel(ctx context.Context, sessionID int64) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := a.client.Delete(ctx, fmt.Sprintf("api/Inventary/Cancel/%d", sessionID), &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (a *HTTPAPI) MissingItems(ctx context.Context, sessionID int64) ([]domain.MissingItem, error) {
	var records []missingItemRecord
	if err := a.client.Get(ctx, fmt.Sprintf("api/Inventary/MissingItems/%d", sessionID), &records); err != nil {
		return nil, err
	}
	items := make([]domain.MissingItem, 0, len(records))
	for _, rec := range records {
		items = append(items, domain.MissingItem{
			ItemID:       rec.ItemID,
			Code:         rec.Code,
			Name:         rec.Name,
			Description:  rec.Description,
			CurrentState: rec.CurrentState,
		})
	}
	return items, nil
}

func (a *HTTPAPI) SubmitManualScans(ctx context.Context, sessionID int64, entries []domain.ManualScanEntry) error {
	req := manualScanRequest{InventaryID: sessionID, Entries: make([]manualScanRecord, 0, len(entries))}
	for _, e := range entries {
		req.Entries = append(req.Entries, manualScanRecord{ItemID: e.ItemID, StateItemID: e.StateItemID})
	}
	return a.client.Post(ctx, fmt.Sprintf("api/Inventary/ManualScans/%d", sessionID), req, nil)
}

func (a *HTTPAPI) Operating(ctx context.Context, userID int64) (domain.Operating, error) {
	var rec operatingRecord
	if err := a.client.Get(ctx, fmt.Sprintf("api/Operating/GetOperatingId/%d", userID), &rec); err != nil {
		return domain.Operating{}, err
	}
	return domain.Operating{OperatingGroupID: rec.OperatingGroupID, BranchID: rec.BranchID}, nil
}
