package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Hub method names, shared with the server.
const (
	TargetItemUpdate             = "ReceiveItemUpdate"
	TargetZoneStateUpdate        = "ReceiveZoneStateUpdate"
	TargetVerificationListUpdate = "ReceiveVerificationListUpdate"
	MethodJoinInventoryGroup     = "JoinInventoryGroup"
)

// Targets lists every hub event the channel subscribes to.
var Targets = []string{TargetItemUpdate, TargetZoneStateUpdate, TargetVerificationListUpdate}

var ErrMalformedFrame = errors.New("malformed push frame")

type Kind string

const (
	KindItemScanned             Kind = "item_scanned"
	KindZoneStateChanged        Kind = "zone_state_changed"
	KindVerificationListChanged Kind = "verification_list_changed"
)

// Event is the tagged union of decoded push frames.
type Event interface {
	Kind() Kind
}

type ItemScanned struct {
	ItemID      int64
	StateItemID int64
	SessionID   int64
}

func (ItemScanned) Kind() Kind { return KindItemScanned }

type ZoneStateChanged struct {
	ZoneID        int64
	NewState      string
	NewStateLabel string
	NewIconName   string
	IsAvailable   bool
}

func (ZoneStateChanged) Kind() Kind { return KindZoneStateChanged }

type UpdateType string

const (
	UpdateAdded   UpdateType = "Added"
	UpdateRemoved UpdateType = "Removed"
)

type VerificationListChanged struct {
	InventaryID int64
	Date        string
	ZoneID      int64
	ZoneName    string
	BranchID    int64
	Type        UpdateType
}

func (VerificationListChanged) Kind() Kind { return KindVerificationListChanged }

type itemPayload struct {
	ItemID      *int64 `json:"itemId"`
	StateItemID int64  `json:"stateItemId"`
	InventaryID int64  `json:"inventaryId"`
}

type zonePayload struct {
	ZoneID        *int64 `json:"zoneId"`
	NewState      string `json:"newState"`
	NewStateLabel string `json:"newStateLabel"`
	NewIconName   string `json:"newIconName"`
	IsAvailable   bool   `json:"isAvailable"`
}

type verificationPayload struct {
	InventaryID *int64 `json:"inventaryId"`
	Date        string `json:"date"`
	ZoneID      int64  `json:"zoneId"`
	ZoneName    string `json:"zoneName"`
	BranchID    int64  `json:"branchId"`
	UpdateType  string `json:"updateType"`
}

// Decode turns the first argument of a hub invocation into an Event.
func Decode(target string, raw json.RawMessage) (Event, error) {
	switch target {
	case TargetItemUpdate:
		return DecodeItemScanned(raw)
	case TargetZoneStateUpdate:
		return DecodeZoneStateChanged(raw)
	case TargetVerificationListUpdate:
		return DecodeVerificationListChanged(raw)
	default:
		return nil, fmt.Errorf("%w: unknown target %q", ErrMalformedFrame, target)
	}
}

func DecodeItemScanned(raw json.RawMessage) (ItemScanned, error) {
	payload := itemPayload{}
	if err := strictUnmarshal(raw, &payload); err != nil {
		return ItemScanned{}, err
	}
	if payload.ItemID == nil {
		return ItemScanned{}, fmt.Errorf("%w: itemId is missing", ErrMalformedFrame)
	}
	return ItemScanned{ItemID: *payload.ItemID, StateItemID: payload.StateItemID, SessionID: payload.InventaryID}, nil
}

func DecodeZoneStateChanged(raw json.RawMessage) (ZoneStateChanged, error) {
	payload := zonePayload{}
	if err := strictUnmarshal(raw, &payload); err != nil {
		return ZoneStateChanged{}, err
	}
	if payload.ZoneID == nil {
		return ZoneStateChanged{}, fmt.Errorf("%w: zoneId is missing", ErrMalformedFrame)
	}
	return ZoneStateChanged{
		ZoneID:        *payload.ZoneID,
		NewState:      payload.NewState,
		NewStateLabel: payload.NewStateLabel,
		NewIconName:   payload.NewIconName,
		IsAvailable:   payload.IsAvailable,
	}, nil
}

func DecodeVerificationListChanged(raw json.RawMessage) (VerificationListChanged, error) {
	payload := verificationPayload{}
	if err := strictUnmarshal(raw, &payload); err != nil {
		return VerificationListChanged{}, err
	}
	if payload.InventaryID == nil {
		return VerificationListChanged{}, fmt.Errorf("%w: inventaryId is missing", ErrMalformedFrame)
	}
	var kind UpdateType
	switch {
	case strings.EqualFold(payload.UpdateType, string(UpdateAdded)):
		kind = UpdateAdded
	case strings.EqualFold(payload.UpdateType, string(UpdateRemoved)):
		kind = UpdateRemoved
	default:
		return VerificationListChanged{}, fmt.Errorf("%w: updateType %q", ErrMalformedFrame, payload.UpdateType)
	}
	return VerificationListChanged{
		InventaryID: *payload.InventaryID,
		Date:        payload.Date,
		ZoneID:      payload.ZoneID,
		ZoneName:    payload.ZoneName,
		BranchID:    payload.BranchID,
		Type:        kind,
	}, nil
}

func strictUnmarshal(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: payload is not an object", ErrMalformedFrame)
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return nil
}
