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
	"github.com/roastline/roastline/pkg/session"
	"github.com/rs/zerolog/log"
)

// HandleRoastStart begins recording a new roast.
func HandleRoastStart(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received roast.start request")

	if err := env.Recorder.Start(); err != nil {
		return nil, err
	}
	return models.RoastStatusResponse{Recording: true, Samples: []session.RoastSample{}}, nil
}

// HandleRoastStop ends the current roast. A non-empty roast is stored in
// the session collection and returned; a roast with no samples returns
// null and stores nothing.
func HandleRoastStop(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received roast.stop request")

	var params models.RoastStopParams
	if len(env.Params) > 0 {
		if err := json.Unmarshal(env.Params, &params); err != nil {
			return nil, fmt.Errorf("error parsing params: %w", err)
		}
	}

	s := env.Recorder.Stop(params.Name, params.Meta)
	if s == nil {
		return nil, nil //nolint:nilnil // null result means nothing was recorded
	}
	if err := env.Sessions.Append(env.Ctx, *s); err != nil {
		return nil, fmt.Errorf("roast recorded but not saved: %w", err)
	}
	return s, nil
}

// HandleRoastStatus reports whether a roast is running and the samples so
// far.
func HandleRoastStatus(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received roast.status request")

	return models.RoastStatusResponse{
		Recording: env.Recorder.Recording(),
		Samples:   env.Recorder.Samples(),
	}, nil
}
