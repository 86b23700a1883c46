package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"invsync/internal/modules/inventory/domain"
	inventoryout "invsync/internal/modules/inventory/port/out"
	sessionin "invsync/internal/modules/session/port/in"
	apperrors "invsync/internal/platform/errors"
)

const (
	opStart  = "start"
	opFinish = "finish"
	opCancel = "cancel"
)

// Started is a successful start. JoinErr is set when the session began but
// its push group could not be joined; scans then arrive only after the
// channel reconnects and re-joins.
type Started struct {
	Session domain.StartResult
	JoinErr error
}

// Facade runs the inventory lifecycle against the backend and keeps the
// session store in step with it. Only one transition runs at a time.
type Facade struct {
	sessions sessionin.Usecase
	api      inventoryout.API
	prompt   inventoryout.DispositionPrompt
	groups   inventoryout.GroupMembership
	logger   zerolog.Logger

	mu       sync.Mutex
	inFlight string
}

func NewFacade(sessions sessionin.Usecase, api inventoryout.API, prompt inventoryout.DispositionPrompt, groups inventoryout.GroupMembership, logger zerolog.Logger) *Facade {
	return &Facade{sessions: sessions, api: api, prompt: prompt, groups: groups, logger: logger}
}

func (f *Facade) Start(ctx context.Context, zoneID, operatingGroupID int64) (Started, error) {
	if zoneID <= 0 || operatingGroupID <= 0 {
		return Started{}, &domain.LifecycleError{Op: opStart, Message: domain.MsgInvalidStart, Kind: domain.ErrStart, Cause: apperrors.ErrInvalidInput}
	}
	if err := f.begin(opStart); err != nil {
		return Started{}, err
	}
	defer f.end()

	active, err := f.sessions.HasActive(ctx)
	if err != nil {
		return Started{}, startError(domain.MsgStartFailed, err)
	}
	if active {
		return Started{}, startError(domain.MsgAlreadyActive, apperrors.ErrActiveSessionExists)
	}

	result, err := f.api.Start(ctx, zoneID, operatingGroupID)
	if err != nil {
		return Started{}, startError(apperrors.MessageOr(err, domain.MsgStartFailed), err)
	}
	if result.SessionID <= 0 || strings.TrimSpace(result.InvitationCode) == "" {
		return Started{}, startError(domain.MsgStartIncomplete, nil)
	}
	if err := f.sessions.Activate(ctx, result.SessionID); err != nil {
		return Started{}, startError(domain.MsgStartFailed, err)
	}
	f.logger.Info().Int64("session_id", result.SessionID).Int64("zone_id", zoneID).Msg("inventory started")

	started := Started{Session: result}
	if f.groups != nil {
		if err := f.groups.JoinSessionGroup(ctx, result.SessionID); err != nil {
			f.logger.Warn().Err(err).Int64("session_id", result.SessionID).Msg("join session group failed")
			started.JoinErr = err
		}
	}
	return started, nil
}

// Finish resolves missing items with the user, submits their corrections
// and closes the session. The session stays active on any failure and
// when the user declines. A nil observations sends the text recorded on
// the session.
func (f *Facade) Finish(ctx context.Context, observations *string) error {
	if err := f.begin(opFinish); err != nil {
		return err
	}
	defer f.end()

	current, err := f.sessions.Current(ctx)
	if err != nil {
		return finishError(err)
	}
	if !current.Active {
		return &domain.LifecycleError{Op: opFinish, Message: domain.MsgNoActive, Kind: domain.ErrFinish, Cause: apperrors.ErrNoActiveSession}
	}
	sessionID := current.SessionID

	missing, err := f.api.MissingItems(ctx, sessionID)
	if err != nil {
		return finishError(err)
	}
	if len(missing) > 0 {
		dispositions, ok := f.resolve(ctx, missing)
		if !ok {
			f.logger.Info().Int64("session_id", sessionID).Int("missing", len(missing)).Msg("finish aborted")
			return &domain.LifecycleError{Op: opFinish, Message: domain.MsgFinishAborted, Kind: domain.ErrFinishAborted}
		}
		if err := f.api.SubmitManualScans(ctx, sessionID, domain.Corrections(missing, dispositions)); err != nil {
			return finishError(err)
		}
	}

	text := current.Observation
	if observations != nil {
		text = strings.TrimSpace(*observations)
	}
	if err := f.api.Finish(ctx, sessionID, text); err != nil {
		return finishError(err)
	}
	if err := f.sessions.Clear(ctx); err != nil {
		return finishError(fmt.Errorf("clear finished session: %w", err))
	}
	f.leaveGroup(sessionID)
	f.logger.Info().Int64("session_id", sessionID).Int("corrections", len(missing)).Msg("inventory finished")
	return nil
}

// Cancel asks the backend to drop the session. The local session is
// cleared only once the backend agreed.
func (f *Facade) Cancel(ctx context.Context) (string, error) {
	if err := f.begin(opCancel); err != nil {
		return "", err
	}
	defer f.end()

	current, err := f.sessions.Current(ctx)
	if err != nil {
		return "", &domain.LifecycleError{Op: opCancel, Message: domain.MsgCancelFailed, Kind: domain.ErrCancel, Cause: err}
	}
	if !current.Active {
		return "", &domain.LifecycleError{Op: opCancel, Message: domain.MsgNoActive, Kind: domain.ErrCancel, Cause: apperrors.ErrNoActiveSession}
	}
	message, err := f.api.Cancel(ctx, current.SessionID)
	if err != nil {
		return "", &domain.LifecycleError{Op: opCancel, Message: apperrors.MessageOr(err, domain.MsgCancelFailed), Kind: domain.ErrCancel, Cause: err}
	}
	if err := f.sessions.Clear(ctx); err != nil {
		return "", &domain.LifecycleError{Op: opCancel, Message: domain.MsgUnknownError, Kind: domain.ErrCancel, Cause: err}
	}
	f.leaveGroup(current.SessionID)
	f.logger.Info().Int64("session_id", current.SessionID).Str("message", message).Msg("inventory cancelled")
	return message, nil
}

func (f *Facade) leaveGroup(sessionID int64) {
	if f.groups != nil {
		f.groups.LeaveSessionGroup(sessionID)
	}
}

func (f *Facade) HasActive(ctx context.Context) (bool, error) {
	return f.sessions.HasActive(ctx)
}

func (f *Facade) ScannedCount(ctx context.Context) (int, error) {
	return f.sessions.ScannedCount(ctx)
}

func (f *Facade) Completion(ctx context.Context, categories []domain.Category) (domain.Completion, error) {
	scanned, err := f.sessions.ScannedCount(ctx)
	if err != nil {
		return domain.Completion{}, err
	}
	return domain.CheckCompletion(categories, scanned), nil
}

func (f *Facade) State(ctx context.Context) (domain.State, error) {
	f.mu.Lock()
	finishing := f.inFlight == opFinish
	f.mu.Unlock()
	if finishing {
		return domain.StateFinishing, nil
	}
	active, err := f.sessions.HasActive(ctx)
	if err != nil {
		return "", err
	}
	if active {
		return domain.StateActive, nil
	}
	return domain.StateIdle, nil
}

func (f *Facade) OperatingGroup(ctx context.Context, userID int64) (domain.Operating, error) {
	if userID <= 0 {
		return domain.Operating{}, fmt.Errorf("%w: user id must be positive", apperrors.ErrInvalidInput)
	}
	return f.api.Operating(ctx, userID)
}

func (f *Facade) resolve(ctx context.Context, missing []domain.MissingItem) ([]domain.Disposition, bool) {
	if f.prompt == nil {
		return nil, false
	}
	dispositions, ok, err := f.prompt.Resolve(ctx, missing)
	if err != nil {
		f.logger.Warn().Err(err).Msg("disposition prompt failed")
		return nil, false
	}
	return dispositions, ok
}

func (f *Facade) begin(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight != "" {
		return fmt.Errorf("%w: %s while %s runs", domain.ErrTransitionInProgress, op, f.inFlight)
	}
	f.inFlight = op
	return nil
}

func (f *Facade) end() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = ""
}

func startError(message string, cause error) error {
	return &domain.LifecycleError{Op: opStart, Message: message, Kind: domain.ErrStart, Cause: cause}
}

func finishError(cause error) error {
	return &domain.LifecycleError{Op: opFinish, Message: apperrors.MessageOr(cause, domain.MsgUnknownError), Kind: domain.ErrFinish, Cause: cause}
}
