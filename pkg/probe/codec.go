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

// Package probe owns the single serial connection to the roaster's
// temperature probe: device selection, the poll loop, and decoding of
// probe replies.
package probe

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roastline/roastline/pkg/telemetry"
)

// ErrMalformedLine is returned by Decode for any reply that is not a
// finite decimal number. Callers drop such lines silently: no event is
// emitted and no cached value changes.
var ErrMalformedLine = errors.New("malformed probe reply")

// Codec implements the probe's line protocol: a one-byte poll command with
// a newline terminator going out, one ASCII decimal temperature per
// CRLF-terminated line coming back.
type Codec struct{}

// EncodePoll returns the poll command sent to the device on every tick.
func (Codec) EncodePoll() []byte {
	return []byte{'t', '\n'}
}

// Decode parses a single reply line into a reading. The line must be
// convertible to a finite decimal number once surrounding whitespace and
// the CRLF terminator are stripped.
func (Codec) Decode(line string) (telemetry.Reading, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return telemetry.Reading{}, ErrMalformedLine
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return telemetry.Reading{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return telemetry.Reading{}, fmt.Errorf("%w: non-finite value %q", ErrMalformedLine, line)
	}

	return telemetry.Reading{TemperatureC: value}, nil
}
