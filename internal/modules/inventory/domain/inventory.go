package domain

import (
	"errors"
	"strings"
)

type State string

const (
	StateIdle      State = "idle"
	StateActive    State = "active"
	StateFinishing State = "finishing"
)

var (
	ErrStart                = errors.New("start inventory failed")
	ErrFinish               = errors.New("finish inventory failed")
	ErrCancel               = errors.New("cancel inventory failed")
	ErrFinishAborted        = errors.New("finish aborted with pending items")
	ErrTransitionInProgress = errors.New("another inventory transition is in progress")
)

// User facing messages.
const (
	MsgStartFailed       = "No se pudo iniciar el inventario."
	MsgStartIncomplete   = "El backend no devolvió ID o Código de Invitación."
	MsgAlreadyActive     = "Ya hay un inventario activo."
	MsgInvalidStart      = "Zona y grupo operativo son obligatorios."
	MsgNoActive          = "No hay un inventario activo."
	MsgFinishAborted     = "Finalización cancelada: Ítems pendientes."
	MsgUnknownError      = "Error desconocido."
	MsgCancelFailed      = "No se pudo cancelar el inventario. Intenta nuevamente."
	MsgTransitionOngoing = "Hay otra operación de inventario en curso."
)

// LifecycleError is a rejected transition. Message is shown to the user
// as is; Kind is one of the Err* sentinels.
type LifecycleError struct {
	Op      string
	Message string
	Kind    error
	Cause   error
}

func (e *LifecycleError) Error() string {
	if e.Cause != nil {
		return e.Op + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Op + ": " + e.Message
}

func (e *LifecycleError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// UserMessage extracts the message meant for the user from err.
func UserMessage(err error) string {
	var lifecycleErr *LifecycleError
	if errors.As(err, &lifecycleErr) {
		return lifecycleErr.Message
	}
	if errors.Is(err, ErrTransitionInProgress) {
		return MsgTransitionOngoing
	}
	return MsgUnknownError
}

type MissingItem struct {
	ItemID       int64
	Code         string
	Name         string
	Description  string
	CurrentState string
}

// Disposition is the user's final status for one missing item.
type Disposition struct {
	ItemID int64
	Status string
}

type ManualScanEntry struct {
	ItemID      int64
	StateItemID int64
}

// Disposition statuses and their item state codes.
const (
	StatusInOrder = "en orden"
	StatusRepair  = "reparación"
	StatusDamaged = "dañado"
	StatusLost    = "perdido"
	DefaultStatus = StatusLost
	StateCodeLost = 4
)

var dispositionCodes = map[string]int64{
	StatusInOrder: 1,
	StatusRepair:  2,
	StatusDamaged: 3,
	StatusLost:    StateCodeLost,
}

// Statuses lists the disposition statuses in code order.
func Statuses() []string {
	return []string{StatusInOrder, StatusRepair, StatusDamaged, StatusLost}
}

// DispositionCode maps a status to its state code. Anything unrecognized
// is treated as lost.
func DispositionCode(status string) int64 {
	if code, ok := dispositionCodes[strings.ToLower(strings.TrimSpace(status))]; ok {
		return code
	}
	return StateCodeLost
}

// Corrections builds one manual scan entry per missing item, in the order
// the server listed them. Items without a disposition default to lost.
func Corrections(missing []MissingItem, dispositions []Disposition) []ManualScanEntry {
	chosen := make(map[int64]string, len(dispositions))
	for _, d := range dispositions {
		chosen[d.ItemID] = d.Status
	}
	out := make([]ManualScanEntry, 0, len(missing))
	for _, item := range missing {
		status, ok := chosen[item.ItemID]
		if !ok {
			status = DefaultStatus
		}
		out = append(out, ManualScanEntry{ItemID: item.ItemID, StateItemID: DispositionCode(status)})
	}
	return out
}

type Category struct {
	ID    int64
	Name  string
	Count int
}

type Completion struct {
	IsComplete bool
	Expected   int
	Scanned    int
	Missing    int
}

// CheckCompletion compares scanned against the expected category counts.
// It is advisory only.
func CheckCompletion(categories []Category, scanned int) Completion {
	expected := 0
	for _, c := range categories {
		if c.Count > 0 {
			expected += c.Count
		}
	}
	return Completion{
		IsComplete: scanned >= expected,
		Expected:   expected,
		Scanned:    scanned,
		Missing:    expected - scanned,
	}
}

type StartResult struct {
	SessionID      int64
	InvitationCode string
}

type Operating struct {
	OperatingGroupID int64
	BranchID         int64
}
