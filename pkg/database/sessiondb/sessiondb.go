// Roastline
// Copyright (c) 2026 The Roastline Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Roastline.
//
// Roastline is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Roastline is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Roastline.  If not, see <http://www.gnu.org/licenses/>.

// Package sessiondb persists the roast session collection as a single
// JSON document.
package sessiondb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roastline/roastline/pkg/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ValidationError reports a sessions document that does not match the
// expected schema. The file on disk is left untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid sessions document: " + e.Reason
}

// document is the only accepted on-disk shape. A bare session array is
// rejected so that a truncated or foreign file cannot silently pass as an
// empty collection.
type document struct {
	Sessions []session.RoastSession `json:"sessions"`
}

// SessionDB stores the whole session collection in one JSON file. Saves
// replace the collection wholesale; concurrent writers are last-write-wins.
type SessionDB struct {
	fs   afero.Fs
	path string
}

// NewSessionDB creates a store writing to path on the given filesystem.
func NewSessionDB(fs afero.Fs, path string) *SessionDB {
	return &SessionDB{fs: fs, path: path}
}

// Load reads and validates the session collection. A missing file is an
// empty collection. Cancellation aborts before any decode work.
func (db *SessionDB) Load(ctx context.Context) ([]session.RoastSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	data, err := afero.ReadFile(db.fs, db.path)
	if os.IsNotExist(err) {
		return []session.RoastSession{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions file: %w", err)
	}

	sessions, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// Save atomically replaces the stored collection: the document is written
// to a temp file next to the target and renamed over it.
func (db *SessionDB) Save(ctx context.Context, sessions []session.RoastSession) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}

	if sessions == nil {
		sessions = []session.RoastSession{}
	}
	data, err := json.MarshalIndent(document{Sessions: sessions}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}

	dir := filepath.Dir(db.path)
	if err := db.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create sessions dir: %w", err)
	}

	tmp := db.path + ".tmp"
	if err := afero.WriteFile(db.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sessions file: %w", err)
	}
	if err := db.fs.Rename(tmp, db.path); err != nil {
		if removeErr := db.fs.Remove(tmp); removeErr != nil {
			log.Warn().Err(removeErr).Str("path", tmp).Msg("failed to remove temp sessions file")
		}
		return fmt.Errorf("failed to replace sessions file: %w", err)
	}
	return nil
}

// Decode parses a sessions document, enforcing the wrapped-object schema.
func Decode(data []byte) ([]session.RoastSession, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, &ValidationError{Reason: "empty document"}
	}
	if trimmed[0] != '{' {
		return nil, &ValidationError{Reason: "document is not a sessions object"}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if dec.More() {
		return nil, &ValidationError{Reason: "trailing data after sessions object"}
	}
	if doc.Sessions == nil {
		return nil, &ValidationError{Reason: "missing sessions array"}
	}
	return doc.Sessions, nil
}
