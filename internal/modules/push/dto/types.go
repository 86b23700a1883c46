package dto

import "time"

type ItemScanned struct {
	ItemID      int64
	StateItemID int64
	SessionID   int64
}

type ZoneStateChanged struct {
	ZoneID        int64
	NewState      string
	NewStateLabel string
	NewIconName   string
	IsAvailable   bool
}

const (
	UpdateAdded   = "Added"
	UpdateRemoved = "Removed"
)

type VerificationListChanged struct {
	InventaryID int64
	Date        string
	ZoneID      int64
	ZoneName    string
	BranchID    int64
	UpdateType  string
}

type CountersOutput struct {
	DecodeErrors       int64 `json:"decodeErrors"`
	ReconnectAttempts  int64 `json:"reconnectAttempts"`
	ReconnectSuccesses int64 `json:"reconnectSuccesses"`
	EventsDelivered    int64 `json:"eventsDelivered"`
}

type StatusOutput struct {
	State       string         `json:"state"`
	Connected   bool           `json:"connected"`
	Groups      []int64        `json:"groups"`
	ConnectedAt time.Time      `json:"connectedAt"`
	LastEventAt time.Time      `json:"lastEventAt"`
	LastError   string         `json:"lastError,omitempty"`
	Counters    CountersOutput `json:"counters"`
}
