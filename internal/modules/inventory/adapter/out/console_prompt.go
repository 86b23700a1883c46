package out

import (
	"context"
	"fmt"
	"slices"

	"invsync/internal/modules/inventory/domain"
	inventoryout "invsync/internal/modules/inventory/port/out"
	"invsync/internal/platform/console"
)

// ConsolePrompt shows the missing items as an inline form with one status
// selector per item, each starting at the default status.
type ConsolePrompt struct {
	prompter *console.Prompter
}

func NewConsolePrompt(prompter *console.Prompter) inventoryout.DispositionPrompt {
	return &ConsolePrompt{prompter: prompter}
}

func (p *ConsolePrompt) Resolve(ctx context.Context, items []domain.MissingItem) ([]domain.Disposition, bool, error) {
	statuses := domain.Statuses()
	def := slices.Index(statuses, domain.DefaultStatus)
	rows := make([]console.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, console.Row{Label: itemLabel(item), Options: statuses, Selected: def})
	}

	picked, ok, err := p.prompter.Choose(ctx, console.Form{
		Title:   "Ítems pendientes",
		Message: fmt.Sprintf("%d ítems sin escanear. Elige su estado final antes de finalizar.", len(items)),
		Rows:    rows,
		Apply:   "Aplicar",
		Back:    "Volver",
	})
	if err != nil || !ok {
		return nil, false, err
	}
	out := make([]domain.Disposition, 0, len(items))
	for i, item := range items {
		out = append(out, domain.Disposition{ItemID: item.ItemID, Status: statuses[picked[i]]})
	}
	return out, true, nil
}

func itemLabel(item domain.MissingItem) string {
	label := fmt.Sprintf("[%s] %s", item.Code, item.Name)
	if item.CurrentState != "" {
		label += " (" + item.CurrentState + ")"
	}
	return label
}
