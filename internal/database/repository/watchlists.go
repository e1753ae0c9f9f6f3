package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// WatchlistRepo handles watchlists and their entries.
type WatchlistRepo struct {
	db *sql.DB
}

func NewWatchlistRepo(db *sql.DB) *WatchlistRepo { return &WatchlistRepo{db: db} }

func (r *WatchlistRepo) Upsert(ctx context.Context, w Watchlist) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO watchlists(id, name, position)
	VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 position=excluded.position,
	 updated_at=CURRENT_TIMESTAMP;
	`, w.ID, w.Name, w.Position)
	return err
}

func (r *WatchlistRepo) List(ctx context.Context) ([]Watchlist, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, position, created_at, updated_at FROM watchlists ORDER BY position, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Watchlist
	for rows.Next() {
		var w Watchlist
		if err := rows.Scan(&w.ID, &w.Name, &w.Position, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *WatchlistRepo) Get(ctx context.Context, id string) (*Watchlist, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, position, created_at, updated_at FROM watchlists WHERE id = ?`, id)
	var w Watchlist
	if err := row.Scan(&w.ID, &w.Name, &w.Position, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *WatchlistRepo) Entries(ctx context.Context, watchlistID string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT token, watchlist_id, symbol, name, position, created_at, updated_at
	FROM watchlist_entries WHERE watchlist_id = ? ORDER BY position, token`, watchlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertEntry appends an entry at the end of the watchlist. Re-inserting an
// existing token refreshes symbol and name but keeps its position.
func (r *WatchlistRepo) InsertEntry(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO watchlist_entries(token, watchlist_id, symbol, name, position)
	VALUES (?, ?, ?, ?, COALESCE((SELECT MAX(position)+1 FROM watchlist_entries WHERE watchlist_id = ?), 0))
	ON CONFLICT(token) DO UPDATE SET
	 symbol=excluded.symbol,
	 name=excluded.name,
	 updated_at=CURRENT_TIMESTAMP;
	`, e.Token, e.WatchlistID, e.Symbol, e.Name, e.WatchlistID)
	return err
}

// Rearrange rewrites entry positions to match tokens, which must cover
// exactly the entries of the watchlist.
func (r *WatchlistRepo) Rearrange(ctx context.Context, watchlistID string, tokens []string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var total int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM watchlist_entries WHERE watchlist_id = ?`, watchlistID).Scan(&total); err != nil {
			return err
		}
		if total != len(tokens) {
			return fmt.Errorf("rearrange %s: got %d tokens for %d entries", watchlistID, len(tokens), total)
		}
		for i, token := range tokens {
			res, err := tx.ExecContext(ctx, `
	UPDATE watchlist_entries SET position = ?, updated_at=CURRENT_TIMESTAMP
	WHERE token = ? AND watchlist_id = ?`, i, token, watchlistID)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("rearrange %s: unknown token %s", watchlistID, token)
			}
		}
		return nil
	})
}

// RemoveEntries deletes tokens from the watchlist and compacts the
// positions of the remainder.
func (r *WatchlistRepo) RemoveEntries(ctx context.Context, watchlistID string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tokens)), ",")
		args := make([]interface{}, 0, len(tokens)+1)
		args = append(args, watchlistID)
		for _, t := range tokens {
			args = append(args, t)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM watchlist_entries WHERE watchlist_id = ? AND token IN (%s)`, placeholders), args...); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `SELECT token FROM watchlist_entries WHERE watchlist_id = ? ORDER BY position, token`, watchlistID)
		if err != nil {
			return err
		}
		var remaining []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				rows.Close()
				return err
			}
			remaining = append(remaining, t)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		for i, token := range remaining {
			if _, err := tx.ExecContext(ctx, `UPDATE watchlist_entries SET position = ? WHERE token = ?`, i, token); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *WatchlistRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(sc scanner) (Entry, error) {
	var e Entry
	err := sc.Scan(&e.Token, &e.WatchlistID, &e.Symbol, &e.Name, &e.Position, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
