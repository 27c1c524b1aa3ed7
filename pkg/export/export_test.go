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

package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/roastline/roastline/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() *session.RoastSession {
	return &session.RoastSession{
		ID:        "s1",
		Name:      "city roast",
		CreatedAt: time.Date(2026, 4, 2, 8, 15, 0, 0, time.UTC),
		TotalTime: 612,
		Samples: []session.RoastSample{
			{Elapsed: 1, Temp: 98.5, RoR: 0},
			{Elapsed: 2, Temp: 99.0, RoR: 0},
			{Elapsed: 3, Temp: 215.4, RoR: 8.2},
		},
	}
}

func TestCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleSession()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "time,temp,ror", strings.TrimSpace(lines[0]))
	assert.Equal(t, "1,98.5,0", strings.TrimSpace(lines[1]))
	assert.Equal(t, "3,215.4,8.2", strings.TrimSpace(lines[3]))
}

func TestCSV_EmptySession(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, &session.RoastSession{}))
	assert.Equal(t, "time,temp,ror", strings.TrimSpace(buf.String()))
}

func TestHTMLReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, HTMLReport(&buf, sampleSession()))
	html := buf.String()

	assert.Contains(t, html, "Roast Profile Report")
	assert.Contains(t, html, "city roast")
	assert.Contains(t, html, "2026-04-02 08:15")
	assert.Contains(t, html, "10.20 min")
	assert.Contains(t, html, "215.4")
	// Three cells per sample row.
	assert.Equal(t, 9, strings.Count(html, "<td>"), "unexpected cell count")
}

func TestHTMLReport_EscapesMetadata(t *testing.T) {
	t.Parallel()

	s := sampleSession()
	s.Name = `<script>alert("x")</script>`

	var buf bytes.Buffer
	require.NoError(t, HTMLReport(&buf, s))

	assert.NotContains(t, buf.String(), "<script>")
}
