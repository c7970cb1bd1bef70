package usecase

import (
	"context"
	"encoding/json"

	"github.com/DRSN-tech/storefront/pkg/e"
)

// loadJSON читает значение по ключу и декодирует его в dst.
// Возвращает false, если ключа нет.
func loadJSON(ctx context.Context, store KeyValueStore, key string, dst any) (bool, error) {
	const op = "usecase.loadJSON"

	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return false, e.Wrap(op, err)
	}
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, e.Wrap(op, err)
	}

	return true, nil
}

// saveJSON кодирует значение и записывает его по ключу.
func saveJSON(ctx context.Context, store KeyValueStore, key string, v any) error {
	const op = "usecase.saveJSON"

	data, err := json.Marshal(v)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := store.Set(ctx, key, string(data)); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
