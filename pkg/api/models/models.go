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

package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/roastline/roastline/pkg/session"
	"github.com/roastline/roastline/pkg/telemetry"
)

const (
	NotificationPortStatus = "port.status"
	NotificationReading    = "reading"
)

const (
	MethodPorts           = "ports"
	MethodPortsConnect    = "ports.connect"
	MethodPortsDisconnect = "ports.disconnect"
	MethodSessions        = "sessions"
	MethodSessionsReplace = "sessions.replace"
	MethodSessionsUpdate  = "sessions.update"
	MethodSessionsDelete  = "sessions.delete"
	MethodRoastStart      = "roast.start"
	MethodRoastStop       = "roast.stop"
	MethodRoastStatus     = "roast.status"
	MethodVersion         = "version"
)

type Notification struct {
	Params any
	Method string
}

type RequestObject struct {
	ID      *uuid.UUID      `json:"id,omitempty"`
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type ErrorObject struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type ResponseObject struct {
	Result  any          `json:"result"`
	Error   *ErrorObject `json:"error,omitempty"`
	JSONRPC string       `json:"jsonrpc"`
	ID      uuid.UUID    `json:"id"`
}

type PortInfo struct {
	Path         string `json:"path"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

type ConnectParams struct {
	Path string `json:"path,omitempty"`
}

type SessionsResponse struct {
	Sessions []session.RoastSession `json:"sessions"`
	Selected string                 `json:"selected,omitempty"`
}

type ReplaceSessionsParams struct {
	Sessions []session.RoastSession `json:"sessions" validate:"required"`
}

type UpdateSessionParams struct {
	ID    string                `json:"id" validate:"required"`
	Patch session.MetadataPatch `json:"patch"`
}

type DeleteSessionsParams struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

type DeleteSessionsResponse struct {
	Deleted []string `json:"deleted"`
}

type RoastStopParams struct {
	Name string                `json:"name,omitempty"`
	Meta session.MetadataPatch `json:"meta"`
}

type RoastStatusResponse struct {
	Samples   []session.RoastSample `json:"samples"`
	Recording bool                  `json:"recording"`
}

type VersionResponse struct {
	AppName string `json:"appName"`
	Version string `json:"version"`
}

// StatusParams is the wire shape of a port.status notification.
type StatusParams = telemetry.Status
