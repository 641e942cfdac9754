package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/class-subjects/internal/model"
)

// PostgresSubjectsRepository stores records in the class_subjects table.
// Ordering follows the serial id, i.e. insertion order.
type PostgresSubjectsRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSubjectsRepository(pool *pgxpool.Pool) *PostgresSubjectsRepository {
	return &PostgresSubjectsRepository{pool: pool}
}

func (r *PostgresSubjectsRepository) Append(ctx context.Context, rec model.SubjectsRecord) error {
	subjects := rec.Subjects
	if subjects == nil {
		subjects = []string{}
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO class_subjects (class_name, subjects) VALUES ($1, $2)`,
		rec.ClassName, subjects)
	return err
}

func (r *PostgresSubjectsRepository) List(ctx context.Context) ([]model.SubjectsRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT class_name, subjects FROM class_subjects ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.SubjectsRecord
	for rows.Next() {
		var rec model.SubjectsRecord
		if err := rows.Scan(&rec.ClassName, &rec.Subjects); err != nil {
			return nil, err
		}
		if rec.Subjects == nil {
			rec.Subjects = []string{}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
