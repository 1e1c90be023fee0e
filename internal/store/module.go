package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Module is a controller module that announced itself through Register.
type Module struct {
	ID           string            `json:"module_id"`
	Type         string            `json:"module_type"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Peer         string            `json:"peer"`
	RegisteredAt time.Time         `json:"registered_at"`
}

// UpsertModule inserts a module or replaces the registration of an existing id.
func (db *DB) UpsertModule(m *Module) error {
	meta, err := json.Marshal(m.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if m.RegisteredAt.IsZero() {
		m.RegisteredAt = time.Now()
	}
	now := time.Now().UnixMilli()
	_, err = db.Exec(`
		INSERT INTO modules (module_id, module_type, metadata, peer, registered_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(module_id) DO UPDATE SET
			module_type = excluded.module_type,
			metadata = excluded.metadata,
			peer = excluded.peer,
			registered_at = excluded.registered_at,
			updated_at = excluded.updated_at`,
		m.ID, m.Type, string(meta), m.Peer, m.RegisteredAt.UnixMilli(), now)
	return err
}

// DeleteModule removes a module and reports whether it existed.
func (db *DB) DeleteModule(id string) (bool, error) {
	res, err := db.Exec(`DELETE FROM modules WHERE module_id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetModule returns a module by id, or nil if it is not registered.
func (db *DB) GetModule(id string) (*Module, error) {
	row := db.QueryRow(`
		SELECT module_id, module_type, metadata, peer, registered_at
		FROM modules WHERE module_id = ?`, id)
	m, err := scanModule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// ListModules returns all registered modules, oldest registration first.
func (db *DB) ListModules() ([]Module, error) {
	rows, err := db.Query(`
		SELECT module_id, module_type, metadata, peer, registered_at
		FROM modules
		ORDER BY registered_at, module_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var mods []Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		mods = append(mods, *m)
	}
	return mods, rows.Err()
}

// ModuleCount returns the number of registered modules.
func (db *DB) ModuleCount() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM modules`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanModule(s scanner) (*Module, error) {
	var (
		m            Module
		meta         string
		registeredAt int64
	)
	if err := s.Scan(&m.ID, &m.Type, &meta, &m.Peer, &registeredAt); err != nil {
		return nil, err
	}
	if meta != "" && meta != "null" {
		if err := json.Unmarshal([]byte(meta), &m.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", m.ID, err)
		}
	}
	m.RegisteredAt = time.UnixMilli(registeredAt)
	return &m, nil
}
