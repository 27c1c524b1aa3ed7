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

package methods

import (
	"encoding/json"
	"fmt"

	"github.com/roastline/roastline/pkg/api/models"
	"github.com/roastline/roastline/pkg/api/models/requests"
	"github.com/rs/zerolog/log"
)

// HandlePorts lists the serial devices a probe could be attached to.
func HandlePorts(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received ports request")

	ports, err := env.Probe.ListPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}

	out := make([]models.PortInfo, len(ports))
	for i, p := range ports {
		out[i] = models.PortInfo{Path: p.Path, Manufacturer: p.Manufacturer}
	}
	return out, nil
}

// HandlePortsConnect opens the probe device. The path param is optional;
// without it the device is auto-selected. The caller gets the resulting
// status directly, every other client sees it as a port.status
// notification.
func HandlePortsConnect(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received ports.connect request")

	var params models.ConnectParams
	if len(env.Params) > 0 {
		if err := json.Unmarshal(env.Params, &params); err != nil {
			return nil, fmt.Errorf("error parsing params: %w", err)
		}
	}

	return env.Probe.Connect(params.Path), nil
}

// HandlePortsDisconnect closes the probe device.
func HandlePortsDisconnect(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received ports.disconnect request")

	env.Probe.Disconnect()
	return env.Probe.Status(), nil
}
