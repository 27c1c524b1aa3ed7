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

package validation

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deleteParams struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

type weightParams struct {
	Weight float64 `json:"weight" validate:"finite,gte=0"`
}

func TestValidateAndUnmarshal(t *testing.T) {
	t.Parallel()

	var params deleteParams
	err := ValidateAndUnmarshal(json.RawMessage(`{"ids":["a","b"]}`), &params)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, params.IDs)
}

func TestValidateAndUnmarshal_MissingParams(t *testing.T) {
	t.Parallel()

	var params deleteParams
	err := ValidateAndUnmarshal(nil, &params)
	assert.ErrorIs(t, err, ErrMissingParams)
}

func TestValidateAndUnmarshal_InvalidJSON(t *testing.T) {
	t.Parallel()

	var params deleteParams
	err := ValidateAndUnmarshal(json.RawMessage(`{"ids":`), &params)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestValidateAndUnmarshal_EmptyList(t *testing.T) {
	t.Parallel()

	var params deleteParams
	err := ValidateAndUnmarshal(json.RawMessage(`{"ids":[]}`), &params)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "IDs", verr.Fields[0].Field)
	assert.Equal(t, "min", verr.Fields[0].Tag)
}

func TestFiniteRule(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultValidator.Validate(weightParams{Weight: 250}))

	err := DefaultValidator.Validate(weightParams{Weight: math.NaN()})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "finite", verr.Fields[0].Tag)

	err = DefaultValidator.Validate(weightParams{Weight: -1})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "gte", verr.Fields[0].Tag)
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	var params deleteParams
	err := ValidateAndUnmarshal(json.RawMessage(`{}`), &params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}
