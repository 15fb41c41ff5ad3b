package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"GBMForecast/internal/model"
)

// SQLiteRecorder persists fetched price history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite price cache opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_history (
			source      TEXT    NOT NULL,
			symbol      TEXT    NOT NULL,
			start_date  TEXT    NOT NULL,
			end_date    TEXT    NOT NULL,
			points      INTEGER NOT NULL,
			dated       INTEGER NOT NULL,
			chunk       BLOB    NOT NULL,
			fetched_at  INTEGER NOT NULL,
			PRIMARY KEY (source, symbol, start_date, end_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_symbol ON price_history(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func dateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// RecordPrices stores series, replacing any earlier copy under the same key.
func (r *SQLiteRecorder) RecordPrices(source string, start, end time.Time, series *model.PriceSeries) error {
	if series.Len() == 0 {
		return errors.New("refusing to cache an empty series")
	}
	dated := len(series.Dates) == len(series.Closes)
	ts := make([]int64, series.Len())
	for i := range ts {
		if dated {
			ts[i] = series.Dates[i].UnixMilli()
		} else {
			ts[i] = int64(i)
		}
	}
	blob, err := encodeChunk(ts, series.Closes)
	if err != nil {
		return fmt.Errorf("encode %s: %w", series.Symbol, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT OR REPLACE INTO price_history
		(source, symbol, start_date, end_date, points, dated, chunk, fetched_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		source, series.Symbol, dateKey(start), dateKey(end),
		series.Len(), dated, blob, time.Now().Unix(),
	)
	return err
}

// LoadPrices returns ErrNotFound when the key has never been recorded.
func (r *SQLiteRecorder) LoadPrices(source, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	var (
		points int
		dated  bool
		blob   []byte
	)
	err := r.db.QueryRow(`SELECT points, dated, chunk FROM price_history
		WHERE source = ? AND symbol = ? AND start_date = ? AND end_date = ?`,
		source, symbol, dateKey(start), dateKey(end),
	).Scan(&points, &dated, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}

	ts, vs, err := decodeChunk(blob)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", symbol, err)
	}
	if len(vs) != points {
		return nil, fmt.Errorf("decode %s: expected %d points, got %d", symbol, points, len(vs))
	}

	series := &model.PriceSeries{Symbol: symbol, Closes: vs}
	if dated {
		series.Dates = make([]time.Time, len(ts))
		for i, t := range ts {
			series.Dates[i] = time.UnixMilli(t).UTC()
		}
	}
	return series, nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite price cache")
	return r.db.Close()
}
