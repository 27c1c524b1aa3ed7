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

package requests

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/roastline/roastline/pkg/config"
	"github.com/roastline/roastline/pkg/probe"
	"github.com/roastline/roastline/pkg/recorder"
	"github.com/roastline/roastline/pkg/session"
)

// RequestEnv carries everything a method handler may need. Ctx is bound
// to the service lifetime plus the per-request timeout.
type RequestEnv struct {
	Ctx      context.Context
	Config   *config.Instance
	Probe    *probe.Manager
	Recorder *recorder.Recorder
	Sessions *session.Reconciler
	Params   json.RawMessage
	ID       uuid.UUID
	IsLocal  bool
}
