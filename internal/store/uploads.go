package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Upload is one persisted inventory file.
type Upload struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Payload    []byte    `json:"-"`
}

// SaveUpload inserts an uploaded file. The id is assigned by the caller.
func (s *Store) SaveUpload(id, filename string, payload []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO uploads (id, filename, size, uploaded_at, payload) VALUES (?, ?, ?, ?, ?)`,
		id, filename, int64(len(payload)), time.Now().UTC(), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save upload %s: %w", id, err)
	}
	return nil
}

// GetUpload returns one upload with its payload, or (nil, nil) when the id
// is unknown.
func (s *Store) GetUpload(id string) (*Upload, error) {
	var u Upload
	err := s.db.QueryRow(
		`SELECT id, filename, size, uploaded_at, payload FROM uploads WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Filename, &u.Size, &u.UploadedAt, &u.Payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load upload %s: %w", id, err)
	}
	return &u, nil
}

// ListUploads returns upload metadata, newest first, payloads excluded.
func (s *Store) ListUploads() ([]Upload, error) {
	rows, err := s.db.Query(
		`SELECT id, filename, size, uploaded_at FROM uploads ORDER BY uploaded_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var uploads []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.ID, &u.Filename, &u.Size, &u.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload row: %w", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// DeleteUpload removes one upload. Deleting an unknown id is not an error.
func (s *Store) DeleteUpload(id string) error {
	if _, err := s.db.Exec(`DELETE FROM uploads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete upload %s: %w", id, err)
	}
	return nil
}
