package out

import (
	"context"

	exitout "invsync/internal/modules/exit/port/out"
	"invsync/internal/platform/console"
)

var (
	plainExit = console.Confirmation{
		Header:  "Salir",
		Message: "¿Deseas salir?",
		Accept:  "Salir",
		Decline: "Cancelar",
	}
	activeExit = console.Confirmation{
		Header:      "⚠️ Inventario en curso",
		Message:     "Si sales ahora, se cancelará el inventario iniciado y se perderán todos los escaneos realizados. ¿Deseas continuar?",
		Accept:      "Salir y Cancelar",
		Decline:     "Permanecer",
		Destructive: true,
	}
)

type ConsoleConfirmer struct {
	prompter *console.Prompter
}

func NewConsoleConfirmer(prompter *console.Prompter) exitout.Confirmer {
	return &ConsoleConfirmer{prompter: prompter}
}

func (c *ConsoleConfirmer) ConfirmExit(ctx context.Context) (bool, error) {
	return c.prompter.Confirm(ctx, plainExit)
}

func (c *ConsoleConfirmer) ConfirmCancelActive(ctx context.Context) (bool, error) {
	return c.prompter.Confirm(ctx, activeExit)
}

func (c *ConsoleConfirmer) ShowError(_ context.Context, message string) {
	c.prompter.Error(message)
}
