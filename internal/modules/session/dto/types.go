package dto

import "time"

type SessionOutput struct {
	SessionID      int64
	Active         bool
	ScannedItemIDs []int64
	Observation    string
	UpdatedAt      time.Time
}

type ScanInput struct {
	ItemID      int64
	StateItemID int64
	SessionID   int64
}
