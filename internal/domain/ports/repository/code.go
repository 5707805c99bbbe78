package repository

import (
	"context"

	"realscan/internal/domain/model"
)

// CodeStore is the port for the persisted code collection. The collection
// moves as a whole document: Load returns the full current state and Save
// overwrites it. Callers own load-mutate-save sequencing; the store itself
// takes no locks and keeps no versions.
//
// Load is fail-soft for backends where the document can be absent or corrupt:
// such backends return an empty collection (and log a warning) instead of an
// error. Save failures always surface.
type CodeStore interface {
	Load(ctx context.Context) (model.CodeCollection, error)
	Save(ctx context.Context, col model.CodeCollection) error
}
