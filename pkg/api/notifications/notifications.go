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

package notifications

import (
	"github.com/roastline/roastline/pkg/api/models"
	"github.com/roastline/roastline/pkg/telemetry"
)

func PortStatus(ns chan<- models.Notification, status telemetry.Status) {
	ns <- models.Notification{
		Method: models.NotificationPortStatus,
		Params: status,
	}
}

func Reading(ns chan<- models.Notification, temperatureC float64) {
	ns <- models.Notification{
		Method: models.NotificationReading,
		Params: temperatureC,
	}
}
