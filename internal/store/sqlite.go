package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/nichescope/internal/cache"
	"github.com/ppiankov/nichescope/internal/model"
)

// Store persists discovered leads and the competitor intel collected for them.
// It is the upstream source of observations; it never stores predictions.
type Store struct {
	db        *sqlx.DB
	log       zerolog.Logger
	leadCache *cache.MemoryCache[model.Lead]
	now       func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	address       TEXT,
	phone         TEXT,
	rating        REAL,
	source_query  TEXT NOT NULL,
	place_id      TEXT UNIQUE,
	discovered_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_source_query ON leads (source_query);

CREATE TABLE IF NOT EXISTS competitor_intel (
	id                     TEXT PRIMARY KEY,
	lead_id                TEXT NOT NULL REFERENCES leads (id),
	competitor_name        TEXT NOT NULL DEFAULT '',
	market_sentiment       REAL,
	estimated_traffic_tier TEXT,
	ads_platform           TEXT,
	collected_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_competitor_intel_lead ON competitor_intel (lead_id);
`

// Open opens (and migrates) the SQLite database at path
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{
		db:  db,
		log: log.With().Str("component", "store").Logger(),
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// EnableLeadCache memoises lead metadata lookups. Observations are never cached.
func (s *Store) EnableLeadCache(ttl, cleanupInterval time.Duration) {
	s.leadCache = cache.NewMemoryCache[model.Lead](ttl, cleanupInterval)
}

type leadRow struct {
	ID           string          `db:"id"`
	Name         string          `db:"name"`
	Address      sql.NullString  `db:"address"`
	Phone        sql.NullString  `db:"phone"`
	Rating       sql.NullFloat64 `db:"rating"`
	SourceQuery  string          `db:"source_query"`
	PlaceID      sql.NullString  `db:"place_id"`
	DiscoveredAt string          `db:"discovered_at"`
}

func (r leadRow) toModel() model.Lead {
	lead := model.Lead{
		ID:          r.ID,
		Name:        r.Name,
		SourceQuery: r.SourceQuery,
	}
	if r.Address.Valid {
		lead.Address = &r.Address.String
	}
	if r.Phone.Valid {
		lead.Phone = &r.Phone.String
	}
	if r.Rating.Valid {
		lead.Rating = &r.Rating.Float64
	}
	if r.PlaceID.Valid {
		lead.PlaceID = &r.PlaceID.String
	}
	if t, err := time.Parse(timeLayout, r.DiscoveredAt); err == nil {
		lead.DiscoveredAt = t
	}
	return lead
}

// timeLayout is fixed-width so text columns sort chronologically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const leadColumns = `id, name, address, phone, rating, source_query, place_id, discovered_at`

// Lead returns the lead with the given id; found is false when it does not exist
func (s *Store) Lead(ctx context.Context, id string) (lead model.Lead, found bool, err error) {
	key := cache.Key("lead", id)
	if s.leadCache != nil {
		if cached, ok := s.leadCache.Get(key); ok {
			return cached, true, nil
		}
	}

	var row leadRow
	err = s.db.GetContext(ctx, &row, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Lead{}, false, nil
	}
	if err != nil {
		return model.Lead{}, false, fmt.Errorf("get lead: %w", err)
	}

	lead = row.toModel()
	if s.leadCache != nil {
		s.leadCache.Set(key, lead, 0)
	}
	return lead, true, nil
}

// LeadsByQuery returns every lead discovered by the given search query
func (s *Store) LeadsByQuery(ctx context.Context, query string) ([]model.Lead, error) {
	var rows []leadRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+leadColumns+` FROM leads WHERE source_query = ? ORDER BY discovered_at, rowid`, query)
	if err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}

	leads := make([]model.Lead, 0, len(rows))
	for _, r := range rows {
		leads = append(leads, r.toModel())
	}
	return leads, nil
}

type intelRow struct {
	Sentiment   sql.NullFloat64 `db:"market_sentiment"`
	TrafficTier sql.NullString  `db:"estimated_traffic_tier"`
	AdsPlatform sql.NullString  `db:"ads_platform"`
}

// ObservationsForLeads returns the competitor observations for the given leads
// in collection order, so frequency tie-breaks see a stable input order.
func (s *Store) ObservationsForLeads(ctx context.Context, leadIDs []string) ([]model.Observation, error) {
	if len(leadIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT market_sentiment, estimated_traffic_tier, ads_platform
		FROM competitor_intel WHERE lead_id IN (?) ORDER BY collected_at, rowid`, leadIDs)
	if err != nil {
		return nil, fmt.Errorf("build observation query: %w", err)
	}

	var rows []intelRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select observations: %w", err)
	}

	observations := make([]model.Observation, 0, len(rows))
	for _, r := range rows {
		var o model.Observation
		if r.Sentiment.Valid {
			v := r.Sentiment.Float64
			o.Sentiment = &v
		}
		if r.TrafficTier.Valid {
			o.TrafficTier = model.TrafficTier(r.TrafficTier.String)
		}
		if r.AdsPlatform.Valid {
			o.AdsPlatform = r.AdsPlatform.String
		}
		observations = append(observations, o)
	}
	return observations, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
