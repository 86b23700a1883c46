package service

import (
	"context"

	"github.com/rs/zerolog"

	exitout "invsync/internal/modules/exit/port/out"
	inventoryin "invsync/internal/modules/inventory/port/in"
)

const msgSessionCheckFailed = "No se pudo verificar el inventario en curso."

// Policy guards leaving while an inventory is open: the session is either
// cancelled on the server first or the exit is refused.
type Policy struct {
	inventory inventoryin.Usecase
	confirmer exitout.Confirmer
	logger    zerolog.Logger
}

func NewPolicy(inventory inventoryin.Usecase, confirmer exitout.Confirmer, logger zerolog.Logger) *Policy {
	return &Policy{inventory: inventory, confirmer: confirmer, logger: logger}
}

func (p *Policy) HandleExitAttempt(ctx context.Context) bool {
	active, err := p.inventory.HasActive(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("read session before exit")
		p.confirmer.ShowError(ctx, msgSessionCheckFailed)
		return false
	}
	if !active {
		ok, err := p.confirmer.ConfirmExit(ctx)
		if err != nil {
			p.logger.Debug().Err(err).Msg("exit confirmation dismissed")
			return false
		}
		return ok
	}

	ok, err := p.confirmer.ConfirmCancelActive(ctx)
	if err != nil || !ok {
		if err != nil {
			p.logger.Debug().Err(err).Msg("cancel confirmation dismissed")
		}
		return false
	}
	result := p.inventory.Cancel(ctx)
	if !result.Success {
		p.logger.Warn().Str("error", result.Error).Msg("exit blocked, cancel failed")
		p.confirmer.ShowError(ctx, result.Error)
		return false
	}
	return true
}
