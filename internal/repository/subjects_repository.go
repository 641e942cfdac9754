package repository

import (
	"context"

	"github.com/stemsi/class-subjects/internal/model"
)

// SubjectsRepository is an append-only, ordered store of subjects records.
// Records are never updated or removed, and a class may appear many times.
type SubjectsRepository interface {
	Append(ctx context.Context, rec model.SubjectsRecord) error
	List(ctx context.Context) ([]model.SubjectsRecord, error)
}
