package dto

// Result is the outcome of a lifecycle transition. Error is user facing.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type StartInput struct {
	ZoneID           int64
	OperatingGroupID int64
}

// FinishInput carries the closing observations. A nil Observations sends
// the text recorded on the session; a set one is sent as given, empty
// included.
type FinishInput struct {
	Observations *string
}

type StartOutput struct {
	Result
	SessionID      int64  `json:"sessionId,omitempty"`
	InvitationCode string `json:"invitationCode,omitempty"`
	JoinError      string `json:"joinError,omitempty"`
}

type MissingItem struct {
	ItemID       int64  `json:"itemId"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CurrentState string `json:"currentState"`
}

type Disposition struct {
	ItemID int64  `json:"itemId"`
	Status string `json:"status"`
}

type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"contador"`
}

type CompletionOutput struct {
	IsComplete bool `json:"isComplete"`
	Expected   int  `json:"totalEsperado"`
	Scanned    int  `json:"totalEscaneado"`
	Missing    int  `json:"itemsFaltantes"`
}

type StatusOutput struct {
	State          string  `json:"state"`
	SessionID      int64   `json:"sessionId,omitempty"`
	Active         bool    `json:"active"`
	ScannedCount   int     `json:"scannedCount"`
	ScannedItemIDs []int64 `json:"scannedItemIds"`
	Observation    string  `json:"observation,omitempty"`
}

type OperatingOutput struct {
	OperatingGroupID int64 `json:"operatingGroupId"`
	BranchID         int64 `json:"branchId"`
}
