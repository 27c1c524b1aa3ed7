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

package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePoll(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte{'t', '\n'}, Codec{}.EncodePoll())
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		line     string
		expected float64
		wantErr  bool
	}{
		{
			name:     "plain decimal",
			line:     "123.4",
			expected: 123.4,
		},
		{
			name:     "trailing carriage return",
			line:     "152.2\r",
			expected: 152.2,
		},
		{
			name:     "surrounding whitespace",
			line:     "  25.0  ",
			expected: 25.0,
		},
		{
			name:     "integer",
			line:     "0",
			expected: 0,
		},
		{
			name:     "negative value",
			line:     "-12.5",
			expected: -12.5,
		},
		{
			name:     "scientific notation",
			line:     "1e2",
			expected: 100,
		},
		{
			name:    "empty line",
			line:    "",
			wantErr: true,
		},
		{
			name:    "carriage return only",
			line:    "\r",
			wantErr: true,
		},
		{
			name:    "non-numeric",
			line:    "nonsense",
			wantErr: true,
		},
		{
			name:    "embedded garbage",
			line:    "12.3.4",
			wantErr: true,
		},
		{
			name:    "NaN rejected",
			line:    "NaN",
			wantErr: true,
		},
		{
			name:    "positive infinity rejected",
			line:    "+Inf",
			wantErr: true,
		},
		{
			name:    "negative infinity rejected",
			line:    "-Inf",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reading, err := Codec{}.Decode(tt.line)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedLine)
				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.expected, reading.TemperatureC, 0.0001)
		})
	}
}
