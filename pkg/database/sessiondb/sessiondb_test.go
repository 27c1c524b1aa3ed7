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

package sessiondb

import (
	"context"
	"testing"
	"time"

	"github.com/roastline/roastline/pkg/session"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessions() []session.RoastSession {
	bean := "Colombia Huila"
	green := 250.0
	return []session.RoastSession{
		{
			ID:        "s1",
			Name:      "first crack practice",
			BeanName:  &bean,
			CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			TotalTime: 612,
			Samples: []session.RoastSample{
				{Elapsed: 1, Temp: 180.5, RoR: 0},
				{Elapsed: 2, Temp: 181.0, RoR: 0},
			},
		},
		{
			ID:         "s2",
			Name:       "",
			BeanWeight: &green,
			CreatedAt:  time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
			TotalTime:  45,
			Samples:    []session.RoastSample{{Elapsed: 1, Temp: 25.0, RoR: 0}},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	db := NewSessionDB(afero.NewMemMapFs(), "/data/sessions.json")
	want := testSessions()

	require.NoError(t, db.Save(context.Background(), want))
	got, err := db.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, want, got, "round-trip preserves every field and the order")
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	db := NewSessionDB(afero.NewMemMapFs(), "/data/sessions.json")

	got, err := db.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoad_RejectsBareArray(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/sessions.json", []byte(`[]`), 0o644))
	db := NewSessionDB(fs, "/data/sessions.json")

	_, err := db.Load(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestLoad_RejectsMalformedDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"empty file", ""},
		{"not json", "hello"},
		{"bare array", `[{"id":"x"}]`},
		{"wrong top-level type", `"sessions"`},
		{"unknown field", `{"sessions":[],"extra":1}`},
		{"missing sessions key", `{}`},
		{"null sessions", `{"sessions":null}`},
		{"trailing data", `{"sessions":[]}{}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/s.json", []byte(tt.body), 0o644))
			db := NewSessionDB(fs, "/s.json")

			_, err := db.Load(context.Background())
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestLoad_AcceptsEmptyCollection(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/s.json", []byte(`{"sessions":[]}`), 0o644))
	db := NewSessionDB(fs, "/s.json")

	got, err := db.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSave_NilCollectionWritesEmptyArray(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	db := NewSessionDB(fs, "/s.json")

	require.NoError(t, db.Save(context.Background(), nil))
	got, err := db.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSave_LeavesNoTempFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	db := NewSessionDB(fs, "/data/s.json")

	require.NoError(t, db.Save(context.Background(), testSessions()))

	exists, err := afero.Exists(fs, "/data/s.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestContextCancellation(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	db := NewSessionDB(fs, "/s.json")
	require.NoError(t, db.Save(context.Background(), testSessions()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	err = db.Save(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)

	// The cancelled save left the stored document untouched.
	got, err := db.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
