package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/neuronav-data/stereotax/internal/acpc"
)

// TransformRecord is one computed AC-PC transform tied to the landmark
// set it was derived from.
type TransformRecord struct {
	TransformID  string              `json:"transform_id"`
	SetID        string              `json:"set_id"`
	CenterMode   acpc.CenterMode     `json:"center_mode"`
	Transform    acpc.RigidTransform `json:"matrix"`
	Det          float64             `json:"det"`
	ComputedAtNs int64               `json:"computed_at_ns"`
}

// SaveTransform persists a computed transform for a landmark set and
// returns the new record id. Implements scene.TransformStore.
func (db *DB) SaveTransform(setID string, center acpc.CenterMode, T acpc.RigidTransform) (string, error) {
	record := TransformRecord{
		TransformID:  uuid.New().String(),
		SetID:        setID,
		CenterMode:   center,
		Transform:    T,
		Det:          T.Det(),
		ComputedAtNs: time.Now().UnixNano(),
	}

	matrixJSON, err := json.Marshal(record.Transform)
	if err != nil {
		return "", fmt.Errorf("encode matrix: %w", err)
	}

	query := `
		INSERT INTO acpc_transforms (
			transform_id, set_id, center_mode, matrix_json, det, computed_at_ns
		) VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = db.Exec(query,
		record.TransformID,
		record.SetID,
		string(record.CenterMode),
		string(matrixJSON),
		record.Det,
		record.ComputedAtNs,
	)
	if err != nil {
		return "", fmt.Errorf("insert transform: %w", err)
	}
	return record.TransformID, nil
}

// GetTransform fetches one transform record by id.
func (db *DB) GetTransform(transformID string) (*TransformRecord, error) {
	query := `
		SELECT transform_id, set_id, center_mode, matrix_json, det, computed_at_ns
		FROM acpc_transforms
		WHERE transform_id = ?
	`
	return db.scanTransform(db.QueryRow(query, transformID), transformID)
}

// LatestTransformForSet returns the most recently computed transform for
// a landmark set.
func (db *DB) LatestTransformForSet(setID string) (*TransformRecord, error) {
	query := `
		SELECT transform_id, set_id, center_mode, matrix_json, det, computed_at_ns
		FROM acpc_transforms
		WHERE set_id = ?
		ORDER BY computed_at_ns DESC
		LIMIT 1
	`
	return db.scanTransform(db.QueryRow(query, setID), setID)
}

// ListTransforms returns all transforms for a landmark set, newest first.
func (db *DB) ListTransforms(setID string) ([]TransformRecord, error) {
	query := `
		SELECT transform_id, set_id, center_mode, matrix_json, det, computed_at_ns
		FROM acpc_transforms
		WHERE set_id = ?
		ORDER BY computed_at_ns DESC
	`

	rows, err := db.Query(query, setID)
	if err != nil {
		return nil, fmt.Errorf("list transforms: %w", err)
	}
	defer rows.Close()

	records := make([]TransformRecord, 0)
	for rows.Next() {
		var record TransformRecord
		var centerMode, matrixJSON string
		if err := rows.Scan(
			&record.TransformID, &record.SetID, &centerMode,
			&matrixJSON, &record.Det, &record.ComputedAtNs,
		); err != nil {
			return nil, fmt.Errorf("scan transform: %w", err)
		}
		record.CenterMode = acpc.CenterMode(centerMode)
		if err := json.Unmarshal([]byte(matrixJSON), &record.Transform); err != nil {
			return nil, fmt.Errorf("decode matrix for %s: %w", record.TransformID, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (db *DB) scanTransform(row *sql.Row, id string) (*TransformRecord, error) {
	var record TransformRecord
	var centerMode, matrixJSON string
	err := row.Scan(
		&record.TransformID, &record.SetID, &centerMode,
		&matrixJSON, &record.Det, &record.ComputedAtNs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transform for %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get transform: %w", err)
	}
	record.CenterMode = acpc.CenterMode(centerMode)
	if err := json.Unmarshal([]byte(matrixJSON), &record.Transform); err != nil {
		return nil, fmt.Errorf("decode matrix for %s: %w", record.TransformID, err)
	}
	return &record, nil
}
