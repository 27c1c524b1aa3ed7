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

// Package session holds the roast session model and the in-memory
// collection logic that sits between the API surface and the store.
package session

import (
	"math"
	"time"
)

// RoastSample is a single recorded point of a roast: seconds since the
// roast started, the probe temperature at that moment and the computed
// rate of rise in degrees per minute.
type RoastSample struct {
	Elapsed float64 `json:"time"`
	Temp    float64 `json:"temp"`
	RoR     float64 `json:"ror"`
}

// RoastSession is one completed roast. The weight fields and tasting note
// are optional metadata filled in after the fact.
type RoastSession struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	BeanName      *string       `json:"beanName,omitempty"`
	BeanWeight    *float64      `json:"beanWeight,omitempty"`
	RoastedWeight *float64      `json:"roastedWeight,omitempty"`
	TastingNote   *string       `json:"tastingNote,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	TotalTime     float64       `json:"totalTime"`
	Samples       []RoastSample `json:"data"`
}

// RoastIndex returns the roasted-to-green weight ratio. The second return
// is false when either weight is missing or the green weight is not a
// positive finite number, in which case the index is not meaningful.
func (s *RoastSession) RoastIndex() (float64, bool) {
	if s.BeanWeight == nil || s.RoastedWeight == nil {
		return 0, false
	}
	green := *s.BeanWeight
	roasted := *s.RoastedWeight
	if green <= 0 || math.IsNaN(green) || math.IsInf(green, 0) ||
		math.IsNaN(roasted) || math.IsInf(roasted, 0) {
		return 0, false
	}
	return roasted / green, true
}
