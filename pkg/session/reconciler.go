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

package session

import (
	"context"
	"errors"
	"math"

	"github.com/roastline/roastline/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

// DeletionGuardSeconds protects finished roasts from accidental removal.
// Sessions at or above this total time cannot be deleted.
const DeletionGuardSeconds = 300

// ErrSessionNotFound is returned when an update names an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Store is the persistence boundary for the session collection. It reads
// and writes the whole collection in one operation.
type Store interface {
	Load(ctx context.Context) ([]RoastSession, error)
	Save(ctx context.Context, sessions []RoastSession) error
}

// MetadataPatch carries the editable metadata of a session. Nil fields are
// left untouched by an edit.
type MetadataPatch struct {
	BeanName      *string  `json:"beanName,omitempty"`
	BeanWeight    *float64 `json:"beanWeight,omitempty"`
	RoastedWeight *float64 `json:"roastedWeight,omitempty"`
	TastingNote   *string  `json:"tastingNote,omitempty"`
}

// Reconciler owns the in-memory session collection and keeps a selection
// pointing at a live session. Every mutation recomputes the selection and
// writes the collection through the store; when the write fails the
// in-memory state keeps the mutation and the error is returned to the
// caller, so memory and disk can diverge until the next successful save.
type Reconciler struct {
	store      Store
	sessions   []RoastSession
	selectedID string
	mu         syncutil.RWMutex
}

// NewReconciler creates an empty reconciler over the given store.
func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Load replaces the in-memory collection with the stored one.
func (r *Reconciler) Load(ctx context.Context) error {
	sessions, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = sessions
	r.reselectLocked()
	return nil
}

// Sessions returns a copy of the collection in insertion order.
func (r *Reconciler) Sessions() []RoastSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoastSession, len(r.sessions))
	copy(out, r.sessions)
	return out
}

// Selected returns the id of the currently selected session, or an empty
// string when the collection is empty.
func (r *Reconciler) Selected() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selectedID
}

// Select points the selection at the given session if it exists. Unknown
// ids fall back to the recomputed default.
func (r *Reconciler) Select(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selectedID = id
	r.reselectLocked()
}

// Append adds a freshly recorded session to the collection and persists it.
func (r *Reconciler) Append(ctx context.Context, s RoastSession) error {
	r.mu.Lock()
	r.sessions = append(r.sessions, s)
	r.reselectLocked()
	snapshot := r.snapshotLocked()
	r.mu.Unlock()
	return r.persist(ctx, snapshot)
}

// Replace swaps the whole collection and persists it.
func (r *Reconciler) Replace(ctx context.Context, sessions []RoastSession) error {
	r.mu.Lock()
	r.sessions = make([]RoastSession, len(sessions))
	copy(r.sessions, sessions)
	r.reselectLocked()
	snapshot := r.snapshotLocked()
	r.mu.Unlock()
	return r.persist(ctx, snapshot)
}

// Update merges a metadata patch into the named session. Numeric fields
// are only applied when finite and non-negative; out-of-range values leave
// the field unset rather than failing the whole edit. Samples and total
// time are never touched.
func (r *Reconciler) Update(ctx context.Context, id string, patch MetadataPatch) error {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return ErrSessionNotFound
	}

	s := &r.sessions[idx]
	if patch.BeanName != nil {
		s.BeanName = patch.BeanName
	}
	if patch.TastingNote != nil {
		s.TastingNote = patch.TastingNote
	}
	if w := validWeight(patch.BeanWeight); w != nil {
		s.BeanWeight = w
	}
	if w := validWeight(patch.RoastedWeight); w != nil {
		s.RoastedWeight = w
	}

	snapshot := r.snapshotLocked()
	r.mu.Unlock()
	return r.persist(ctx, snapshot)
}

// Delete removes the named sessions, skipping any whose total time is at
// or above the deletion guard. Returns the ids actually removed.
func (r *Reconciler) Delete(ctx context.Context, ids []string) ([]string, error) {
	requested := make(map[string]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}

	r.mu.Lock()
	var deleted []string
	kept := r.sessions[:0]
	for _, s := range r.sessions {
		if requested[s.ID] && s.TotalTime < DeletionGuardSeconds {
			deleted = append(deleted, s.ID)
			continue
		}
		if requested[s.ID] {
			log.Debug().Str("session_id", s.ID).
				Float64("total_time", s.TotalTime).
				Msg("deletion skipped, roast is past the guard")
		}
		kept = append(kept, s)
	}
	r.sessions = kept
	r.reselectLocked()
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	if len(deleted) == 0 {
		return nil, nil
	}
	return deleted, r.persist(ctx, snapshot)
}

func (r *Reconciler) persist(ctx context.Context, sessions []RoastSession) error {
	if err := r.store.Save(ctx, sessions); err != nil {
		log.Error().Err(err).Msg("failed to save sessions")
		return err
	}
	return nil
}

func (r *Reconciler) indexLocked(id string) int {
	for i := range r.sessions {
		if r.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Reconciler) snapshotLocked() []RoastSession {
	out := make([]RoastSession, len(r.sessions))
	copy(out, r.sessions)
	return out
}

// reselectLocked keeps the selection valid: the current id if it still
// exists, otherwise the first session, otherwise empty.
func (r *Reconciler) reselectLocked() {
	if r.selectedID != "" && r.indexLocked(r.selectedID) >= 0 {
		return
	}
	if len(r.sessions) > 0 {
		r.selectedID = r.sessions[0].ID
		return
	}
	r.selectedID = ""
}

func validWeight(w *float64) *float64 {
	if w == nil {
		return nil
	}
	if *w < 0 || math.IsNaN(*w) || math.IsInf(*w, 0) {
		return nil
	}
	return w
}
