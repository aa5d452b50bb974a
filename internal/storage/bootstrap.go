package storage

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
)

// LoadInitial opens a short-lived connection, makes sure the schema exists and
// returns the persisted count (zero when nothing has been written yet).
func LoadInitial(ctx context.Context, path string) (*big.Int, error) {
	store, err := Open(ctx, path)
	if err != nil {
		return nil, errors.Wrap(err, "bootstrap connect")
	}
	defer func() { _ = store.Close() }()

	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	value, _, err := store.ReadCounter(ctx)
	if err != nil {
		return nil, err
	}
	return value, nil
}
