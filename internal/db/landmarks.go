package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("db: record not found")

// LandmarkSet is one stored pick: the two AC-PC line endpoints in storage
// order (unclassified) plus the midline reference point, all RAS mm.
type LandmarkSet struct {
	SetID       string  `json:"set_id"`
	Label       string  `json:"label,omitempty"`
	LineA       r3.Vec  `json:"line_a"`
	LineB       r3.Vec  `json:"line_b"`
	Midline     r3.Vec  `json:"midline"`
	CreatedAtNs int64   `json:"created_at_ns"`
}

// SaveLandmarkSet inserts a landmark set, generating a UUID when SetID is
// empty.
func (db *DB) SaveLandmarkSet(set *LandmarkSet) error {
	if set.SetID == "" {
		set.SetID = uuid.New().String()
	}
	if set.CreatedAtNs == 0 {
		set.CreatedAtNs = time.Now().UnixNano()
	}

	query := `
		INSERT INTO landmark_sets (
			set_id, label,
			line_a_x, line_a_y, line_a_z,
			line_b_x, line_b_y, line_b_z,
			midline_x, midline_y, midline_z,
			created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		set.SetID,
		nullString(set.Label),
		set.LineA.X, set.LineA.Y, set.LineA.Z,
		set.LineB.X, set.LineB.Y, set.LineB.Z,
		set.Midline.X, set.Midline.Y, set.Midline.Z,
		set.CreatedAtNs,
	)
	if err != nil {
		return fmt.Errorf("insert landmark set: %w", err)
	}
	return nil
}

// GetLandmarkSet fetches one landmark set by id.
func (db *DB) GetLandmarkSet(setID string) (*LandmarkSet, error) {
	query := `
		SELECT set_id, label,
		       line_a_x, line_a_y, line_a_z,
		       line_b_x, line_b_y, line_b_z,
		       midline_x, midline_y, midline_z,
		       created_at_ns
		FROM landmark_sets
		WHERE set_id = ?
	`

	var set LandmarkSet
	var label sql.NullString
	err := db.QueryRow(query, setID).Scan(
		&set.SetID, &label,
		&set.LineA.X, &set.LineA.Y, &set.LineA.Z,
		&set.LineB.X, &set.LineB.Y, &set.LineB.Z,
		&set.Midline.X, &set.Midline.Y, &set.Midline.Z,
		&set.CreatedAtNs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: landmark set %q", ErrNotFound, setID)
	}
	if err != nil {
		return nil, fmt.Errorf("get landmark set: %w", err)
	}
	set.Label = stringOrEmpty(label)
	return &set, nil
}

// ListLandmarkSets returns all landmark sets, newest first.
func (db *DB) ListLandmarkSets() ([]LandmarkSet, error) {
	query := `
		SELECT set_id, label,
		       line_a_x, line_a_y, line_a_z,
		       line_b_x, line_b_y, line_b_z,
		       midline_x, midline_y, midline_z,
		       created_at_ns
		FROM landmark_sets
		ORDER BY created_at_ns DESC
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list landmark sets: %w", err)
	}
	defer rows.Close()

	sets := make([]LandmarkSet, 0)
	for rows.Next() {
		var set LandmarkSet
		var label sql.NullString
		if err := rows.Scan(
			&set.SetID, &label,
			&set.LineA.X, &set.LineA.Y, &set.LineA.Z,
			&set.LineB.X, &set.LineB.Y, &set.LineB.Z,
			&set.Midline.X, &set.Midline.Y, &set.Midline.Z,
			&set.CreatedAtNs,
		); err != nil {
			return nil, fmt.Errorf("scan landmark set: %w", err)
		}
		set.Label = stringOrEmpty(label)
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

// DeleteLandmarkSet removes a landmark set and, via the FK cascade, its
// computed transforms.
func (db *DB) DeleteLandmarkSet(setID string) error {
	result, err := db.Exec(`DELETE FROM landmark_sets WHERE set_id = ?`, setID)
	if err != nil {
		return fmt.Errorf("delete landmark set: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete landmark set: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: landmark set %q", ErrNotFound, setID)
	}
	return nil
}
