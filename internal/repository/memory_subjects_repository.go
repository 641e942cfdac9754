package repository

import (
	"context"
	"sync"

	"github.com/stemsi/class-subjects/internal/model"
)

// MemorySubjectsRepository keeps records in process memory. Contents are lost
// on restart.
type MemorySubjectsRepository struct {
	mu      sync.RWMutex
	records []model.SubjectsRecord
}

func NewMemorySubjectsRepository() *MemorySubjectsRepository {
	return &MemorySubjectsRepository{}
}

func (r *MemorySubjectsRepository) Append(ctx context.Context, rec model.SubjectsRecord) error {
	rec.Subjects = cloneSubjects(rec.Subjects)

	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
	return nil
}

// List returns a copy; callers may not mutate stored records.
func (r *MemorySubjectsRepository) List(ctx context.Context) ([]model.SubjectsRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.SubjectsRecord, len(r.records))
	for i, rec := range r.records {
		out[i] = model.SubjectsRecord{
			ClassName: rec.ClassName,
			Subjects:  cloneSubjects(rec.Subjects),
		}
	}
	return out, nil
}

// cloneSubjects copies s, keeping an empty list distinct from nil so it
// encodes as [] rather than null.
func cloneSubjects(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
