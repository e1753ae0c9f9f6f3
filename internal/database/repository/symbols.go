package repository

import (
	"context"
	"database/sql"
)

// SymbolRepo handles the instrument catalog backing the add picker.
type SymbolRepo struct {
	db *sql.DB
}

func NewSymbolRepo(db *sql.DB) *SymbolRepo { return &SymbolRepo{db: db} }

func (r *SymbolRepo) Upsert(ctx context.Context, s Symbol) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO symbols(symbol, name)
	VALUES (?, ?)
	ON CONFLICT(symbol) DO UPDATE SET name=excluded.name;
	`, s.Symbol, s.Name)
	return err
}

func (r *SymbolRepo) List(ctx context.Context) ([]Symbol, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT symbol, name FROM symbols ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Symbol
	for rows.Next() {
		var s Symbol
		if err := rows.Scan(&s.Symbol, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
