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

// Package telemetry distributes probe status and temperature readings to
// subscribed consumers, caching the latest of each so late joiners never
// start from a stale default.
package telemetry

// ConnState is the link state of the probe connection.
type ConnState string

const (
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateError        ConnState = "error"
	StateDisconnected ConnState = "disconnected"
)

// Status describes the probe connection at a point in time. Path is set
// while connected, Message carries the device error when State is
// StateError.
type Status struct {
	State   ConnState `json:"status"`
	Path    string    `json:"path,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Reading is a single decoded probe measurement. Only the most recent
// reading is ever cached; readings are never persisted here.
type Reading struct {
	TemperatureC float64 `json:"temperatureC"`
}

// Event is a single hub broadcast: exactly one of Status or Reading is set.
type Event struct {
	Status  *Status
	Reading *Reading
}

// Sink receives probe events. Implemented by Hub; the probe manager only
// depends on this interface so tests can capture events directly.
type Sink interface {
	PublishStatus(status Status)
	PublishReading(reading Reading)
}
