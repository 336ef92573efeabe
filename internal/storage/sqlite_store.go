package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/denisok6893-rgb/casa-match/internal/domain"
)

// Store is the SQLite-backed persistence for listings, prospects and the
// append-only search history.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) EnsureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  agent_id TEXT NOT NULL,
  name TEXT NOT NULL,
  status TEXT NOT NULL,
  price REAL NOT NULL,
  neighborhood TEXT NOT NULL,
  city TEXT NOT NULL DEFAULT '',
  rooms_total INTEGER NOT NULL DEFAULT 0,
  rooms_ground_floor INTEGER NOT NULL DEFAULT 0,
  bathrooms_total INTEGER NOT NULL DEFAULT 0,
  bathrooms_ground_floor INTEGER NOT NULL DEFAULT 0,
  garden TEXT NOT NULL DEFAULT 'none',
  amenities_json TEXT NOT NULL DEFAULT '[]',
  image_urls_json TEXT NOT NULL DEFAULT '[]',
  notes TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL,
  deleted_at TIMESTAMP
);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_agent ON listings(agent_id);`,
		`CREATE TABLE IF NOT EXISTS prospects (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  agent_id TEXT NOT NULL,
  name TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_prospects_agent ON prospects(agent_id);`,
		`CREATE TABLE IF NOT EXISTS search_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  agent_id TEXT NOT NULL,
  prospect_id INTEGER REFERENCES prospects(id),
  query_text TEXT NOT NULL,
  criteria_json TEXT NOT NULL,
  result_count INTEGER NOT NULL,
  top_score REAL NOT NULL,
  created_at TIMESTAMP NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_history_prospect ON search_history(prospect_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ---- listings ----

const listingColumns = `id, agent_id, name, status, price, neighborhood, city,
rooms_total, rooms_ground_floor, bathrooms_total, bathrooms_ground_floor,
garden, amenities_json, image_urls_json, notes, created_at`

func (s *Store) CountListings(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings WHERE deleted_at IS NULL`).Scan(&n)
	return n, err
}

// UpsertListings inserts a seed dataset without duplicating by id.
func (s *Store) UpsertListings(ctx context.Context, items []domain.Listing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO listings (`+listingColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range items {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = time.Now().UTC()
		}
		if l.Garden == "" {
			l.Garden = domain.GardenNone
		}
		am, _ := json.Marshal(l.Amenities)
		img, _ := json.Marshal(l.ImageURLs)
		if _, err := stmt.ExecContext(ctx,
			l.ID, l.AgentID, l.Name, string(l.Status), l.Price, l.Neighborhood, l.City,
			l.RoomsTotal, l.RoomsGroundFloor, l.BathroomsTotal, l.BathroomsGroundFloor,
			string(l.Garden), string(am), string(img), l.Notes, l.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) CreateListing(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	if l.Garden == "" {
		l.Garden = domain.GardenNone
	}
	am, _ := json.Marshal(l.Amenities)
	img, _ := json.Marshal(l.ImageURLs)

	_, err := s.db.ExecContext(ctx, `
INSERT INTO listings (`+listingColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		l.ID, l.AgentID, l.Name, string(l.Status), l.Price, l.Neighborhood, l.City,
		l.RoomsTotal, l.RoomsGroundFloor, l.BathroomsTotal, l.BathroomsGroundFloor,
		string(l.Garden), string(am), string(img), l.Notes, l.CreatedAt,
	)
	return l, err
}

func (s *Store) GetListing(ctx context.Context, id string) (domain.Listing, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+listingColumns+` FROM listings WHERE id = ? AND deleted_at IS NULL
`, id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return domain.Listing{}, false, nil
	}
	if err != nil {
		return domain.Listing{}, false, err
	}
	return l, true, nil
}

func (s *Store) UpdateListing(ctx context.Context, l domain.Listing) error {
	am, _ := json.Marshal(l.Amenities)
	img, _ := json.Marshal(l.ImageURLs)

	res, err := s.db.ExecContext(ctx, `
UPDATE listings SET
  name = ?, status = ?, price = ?, neighborhood = ?, city = ?,
  rooms_total = ?, rooms_ground_floor = ?, bathrooms_total = ?, bathrooms_ground_floor = ?,
  garden = ?, amenities_json = ?, image_urls_json = ?, notes = ?
WHERE id = ? AND deleted_at IS NULL
`,
		l.Name, string(l.Status), l.Price, l.Neighborhood, l.City,
		l.RoomsTotal, l.RoomsGroundFloor, l.BathroomsTotal, l.BathroomsGroundFloor,
		string(l.Garden), string(am), string(img), l.Notes,
		l.ID,
	)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDeleteListing marks the row deleted; it stays out of every query
// from then on but is never physically removed.
func (s *Store) SoftDeleteListing(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE listings SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL
`, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (s *Store) ListListings(ctx context.Context, agentID string, limit, offset int) ([]domain.Listing, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM listings WHERE agent_id = ? AND deleted_at IS NULL
`, agentID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT `+listingColumns+` FROM listings
WHERE agent_id = ? AND deleted_at IS NULL
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`, agentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

// ListAvailable returns the full matching candidate set: every
// non-deleted listing with status "available", across all agents.
func (s *Store) ListAvailable(ctx context.Context) ([]domain.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+listingColumns+` FROM listings
WHERE status = ? AND deleted_at IS NULL
ORDER BY created_at ASC, id ASC
`, string(domain.StatusAvailable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(r rowScanner) (domain.Listing, error) {
	var l domain.Listing
	var status, garden, amJSON, imgJSON string
	err := r.Scan(
		&l.ID, &l.AgentID, &l.Name, &status, &l.Price, &l.Neighborhood, &l.City,
		&l.RoomsTotal, &l.RoomsGroundFloor, &l.BathroomsTotal, &l.BathroomsGroundFloor,
		&garden, &amJSON, &imgJSON, &l.Notes, &l.CreatedAt,
	)
	if err != nil {
		return domain.Listing{}, err
	}
	l.Status = domain.ListingStatus(status)
	l.Garden = domain.GardenSize(garden)
	_ = json.Unmarshal([]byte(amJSON), &l.Amenities)
	_ = json.Unmarshal([]byte(imgJSON), &l.ImageURLs)
	return l, nil
}

// ---- prospects ----

func (s *Store) CreateProspect(ctx context.Context, p domain.Prospect) (domain.Prospect, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO prospects (agent_id, name, phone, email, status, notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, p.AgentID, p.Name, p.Phone, p.Email, string(p.Status), p.Notes, p.CreatedAt)
	if err != nil {
		return domain.Prospect{}, err
	}
	p.ID, err = res.LastInsertId()
	return p, err
}

func (s *Store) GetProspect(ctx context.Context, id int64) (domain.Prospect, bool, error) {
	var p domain.Prospect
	var status string
	err := s.db.QueryRowContext(ctx, `
SELECT id, agent_id, name, phone, email, status, notes, created_at
FROM prospects WHERE id = ?
`, id).Scan(&p.ID, &p.AgentID, &p.Name, &p.Phone, &p.Email, &status, &p.Notes, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Prospect{}, false, nil
	}
	if err != nil {
		return domain.Prospect{}, false, err
	}
	p.Status = domain.ProspectStatus(status)
	return p, true, nil
}

func (s *Store) UpdateProspect(ctx context.Context, p domain.Prospect) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE prospects SET name = ?, phone = ?, email = ?, status = ?, notes = ? WHERE id = ?
`, p.Name, p.Phone, p.Email, string(p.Status), p.Notes, p.ID)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteProspect(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prospects WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (s *Store) ListProspects(ctx context.Context, agentID string, limit, offset int) ([]domain.Prospect, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM prospects WHERE agent_id = ?
`, agentID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, agent_id, name, phone, email, status, notes, created_at
FROM prospects WHERE agent_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`, agentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Prospect
	for rows.Next() {
		var p domain.Prospect
		var status string
		if err := rows.Scan(&p.ID, &p.AgentID, &p.Name, &p.Phone, &p.Email, &status, &p.Notes, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		p.Status = domain.ProspectStatus(status)
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// ---- search history ----

// AppendSearch writes one immutable history record and returns its id.
func (s *Store) AppendSearch(ctx context.Context, rec domain.SearchRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	criteriaJSON, err := json.Marshal(rec.Criteria)
	if err != nil {
		return 0, fmt.Errorf("marshal criteria: %w", err)
	}

	var prospectID any
	if rec.ProspectID != nil {
		prospectID = *rec.ProspectID
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO search_history (agent_id, prospect_id, query_text, criteria_json, result_count, top_score, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, rec.AgentID, prospectID, rec.QueryText, string(criteriaJSON), rec.ResultCount, rec.TopScore, rec.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ActiveProspectsWithLatestSearch returns the agent's active prospects
// that have at least one recorded search, each paired with its most
// recent search. Ties on created_at resolve to the highest id.
func (s *Store) ActiveProspectsWithLatestSearch(ctx context.Context, agentID string) ([]domain.ProspectSearch, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.id, p.agent_id, p.name, p.phone, p.email, p.status, p.notes, p.created_at,
       h.query_text, h.criteria_json, h.created_at
FROM prospects p
JOIN search_history h ON h.id = (
  SELECT h2.id FROM search_history h2
  WHERE h2.prospect_id = p.id
  ORDER BY h2.created_at DESC, h2.id DESC
  LIMIT 1
)
WHERE p.agent_id = ? AND p.status = ?
ORDER BY p.id ASC
`, agentID, string(domain.ProspectActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProspectSearch
	for rows.Next() {
		var ps domain.ProspectSearch
		var status, criteriaJSON string
		if err := rows.Scan(
			&ps.Prospect.ID, &ps.Prospect.AgentID, &ps.Prospect.Name, &ps.Prospect.Phone,
			&ps.Prospect.Email, &status, &ps.Prospect.Notes, &ps.Prospect.CreatedAt,
			&ps.QueryText, &criteriaJSON, &ps.CreatedAt,
		); err != nil {
			return nil, err
		}
		ps.Prospect.Status = domain.ProspectStatus(status)
		if err := json.Unmarshal([]byte(criteriaJSON), &ps.Criteria); err != nil {
			return nil, fmt.Errorf("unmarshal criteria for prospect %d: %w", ps.Prospect.ID, err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}
