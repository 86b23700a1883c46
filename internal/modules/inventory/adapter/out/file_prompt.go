package out

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"invsync/internal/modules/inventory/domain"
	inventoryout "invsync/internal/modules/inventory/port/out"
)

// FilePrompt answers the disposition prompt from a YAML map of item id to
// status, for unattended finishes. A missing file declines.
type FilePrompt struct {
	path string
}

func NewFilePrompt(path string) inventoryout.DispositionPrompt {
	return &FilePrompt{path: path}
}

func (p *FilePrompt) Resolve(_ context.Context, items []domain.MissingItem) ([]domain.Disposition, bool, error) {
	raw, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read dispositions: %w", err)
	}
	chosen := map[int64]string{}
	if err := yaml.Unmarshal(raw, &chosen); err != nil {
		return nil, false, fmt.Errorf("parse dispositions %s: %w", p.path, err)
	}
	out := make([]domain.Disposition, 0, len(items))
	for _, item := range items {
		if status, ok := chosen[item.ItemID]; ok {
			out = append(out, domain.Disposition{ItemID: item.ItemID, Status: status})
		}
	}
	return out, true, nil
}
