package store

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ppiankov/nichescope/internal/model"
)

const (
	maxTextLen  = 255
	unnamedLead = "Unnamed"
)

// SaveDiscoveryBatch persists leads found by a radar search.
// Leads are deduplicated by place id; hits without one get a key derived from
// name and address. Returns the number of leads actually inserted.
func (s *Store) SaveDiscoveryBatch(ctx context.Context, businesses []model.Business, sourceQuery string) (int, error) {
	if len(businesses) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err := s.insertLeads(ctx, tx, businesses, sourceQuery)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Int("inserted", inserted).
		Int("total", len(businesses)).
		Str("query", sourceQuery).
		Msg("discovery batch saved")
	return inserted, nil
}

func (s *Store) insertLeads(ctx context.Context, tx *sqlx.Tx, businesses []model.Business, sourceQuery string) (int, error) {
	discoveredAt := s.now().Format(timeLayout)
	inserted := 0

	for _, b := range businesses {
		row := leadRow{
			ID:           uuid.NewString(),
			Name:         truncate(leadName(b.Name), maxTextLen),
			Address:      nullString(b.Address),
			Phone:        nullString(b.Phone),
			Rating:       nullFloat(ParseRating(b.Rating)),
			SourceQuery:  truncate(sourceQuery, maxTextLen),
			PlaceID:      nullString(PlaceKey(b)),
			DiscoveredAt: discoveredAt,
		}

		res, err := tx.NamedExecContext(ctx, `INSERT INTO leads (`+leadColumns+`)
			VALUES (:id, :name, :address, :phone, :rating, :source_query, :place_id, :discovered_at)
			ON CONFLICT (place_id) DO NOTHING`, row)
		if err != nil {
			return 0, fmt.Errorf("insert lead %q: %w", row.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, nil
}

// SaveIntel records one competitor observation for a lead
func (s *Store) SaveIntel(ctx context.Context, leadID string, intel model.IntelInput) (string, error) {
	if err := intel.Observation.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO competitor_intel
		(id, lead_id, competitor_name, market_sentiment, estimated_traffic_tier, ads_platform, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		leadID,
		intel.CompetitorName,
		nullFloat(intel.Sentiment),
		nullString(string(intel.TrafficTier)),
		nullString(intel.AdsPlatform),
		s.now().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert intel for lead %s: %w", leadID, err)
	}
	return id, nil
}

// LeadIDByPlaceKey returns the id of the lead stored under a place key
func (s *Store) LeadIDByPlaceKey(ctx context.Context, placeKey string) (string, bool, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM leads WHERE place_id = ?`, placeKey); err != nil {
		return "", false, fmt.Errorf("lookup place %q: %w", placeKey, err)
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[0], true, nil
}

// ImportSummary reports what an import changed
type ImportSummary struct {
	LeadsInserted int
	LeadsSkipped  int
	IntelInserted int
	IntelSkipped  int // Intel of businesses that were already stored
}

// Import saves an import file's businesses as leads and attaches their intel.
// Intel is only attached to leads created by this import, so re-importing a
// file does not duplicate observations.
func (s *Store) Import(ctx context.Context, file model.ImportFile) (ImportSummary, error) {
	if err := model.Validator().Struct(file); err != nil {
		return ImportSummary{}, fmt.Errorf("invalid import file: %w", err)
	}
	for i, b := range file.Businesses {
		for j, in := range b.Intel {
			if err := in.Observation.Validate(); err != nil {
				return ImportSummary{}, fmt.Errorf("business %d intel %d: %w", i, j, err)
			}
		}
	}

	known := make(map[string]bool)
	for _, b := range file.Businesses {
		key := PlaceKey(b)
		if key == "" || known[key] {
			continue
		}
		_, found, err := s.LeadIDByPlaceKey(ctx, key)
		if err != nil {
			return ImportSummary{}, err
		}
		if found {
			known[key] = true
		}
	}

	inserted, err := s.SaveDiscoveryBatch(ctx, file.Businesses, file.SourceQuery)
	if err != nil {
		return ImportSummary{}, err
	}

	summary := ImportSummary{
		LeadsInserted: inserted,
		LeadsSkipped:  len(file.Businesses) - inserted,
	}

	for _, b := range file.Businesses {
		if len(b.Intel) == 0 {
			continue
		}
		key := PlaceKey(b)
		if key == "" {
			s.log.Warn().Str("business", b.Name).Msg("intel skipped: business has no name or place id")
			continue
		}
		if known[key] {
			summary.IntelSkipped += len(b.Intel)
			continue
		}
		leadID, found, err := s.LeadIDByPlaceKey(ctx, key)
		if err != nil {
			return summary, err
		}
		if !found {
			continue
		}
		for _, in := range b.Intel {
			if _, err := s.SaveIntel(ctx, leadID, in); err != nil {
				return summary, err
			}
			summary.IntelInserted++
		}
	}

	if summary.IntelSkipped > 0 {
		s.log.Info().Int("intel", summary.IntelSkipped).Msg("intel of already stored businesses skipped")
	}
	return summary, nil
}

// PlaceKey returns the deduplication key for a business, or "" when none can be derived
func PlaceKey(b model.Business) string {
	if b.PlaceID != "" {
		return b.PlaceID
	}
	name := strings.ToLower(strings.TrimSpace(b.Name))
	if name == "" {
		return ""
	}
	addr := strings.ToLower(strings.TrimSpace(b.Address))
	return "derived:" + name + "|" + addr
}

// ParseRating converts a provider rating into a number; unparsable values become nil
func ParseRating(v any) *float64 {
	var f float64
	switch r := v.(type) {
	case nil:
		return nil
	case float64:
		f = r
	case float32:
		f = float64(r)
	case int:
		f = float64(r)
	case int64:
		f = float64(r)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		parsed, err := strconv.ParseFloat(fmt.Sprint(r), 64)
		if err != nil {
			return nil
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func leadName(name string) string {
	if name == "" {
		return unnamedLead
	}
	return name
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
