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
	"fmt"

	"github.com/roastline/roastline/pkg/api/models"
	"github.com/roastline/roastline/pkg/api/models/requests"
	"github.com/roastline/roastline/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

// HandleSessions returns the stored roast sessions and the current
// selection.
func HandleSessions(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received sessions request")

	return models.SessionsResponse{
		Sessions: env.Sessions.Sessions(),
		Selected: env.Sessions.Selected(),
	}, nil
}

// HandleSessionsReplace swaps the whole stored collection, the bulk write
// used when a client syncs its local history.
func HandleSessionsReplace(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received sessions.replace request")

	var params models.ReplaceSessionsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	if err := env.Sessions.Replace(env.Ctx, params.Sessions); err != nil {
		return nil, fmt.Errorf("failed to replace sessions: %w", err)
	}
	return models.SessionsResponse{
		Sessions: env.Sessions.Sessions(),
		Selected: env.Sessions.Selected(),
	}, nil
}

// HandleSessionsUpdate merges a metadata patch into one session.
func HandleSessionsUpdate(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received sessions.update request")

	var params models.UpdateSessionParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	if err := env.Sessions.Update(env.Ctx, params.ID, params.Patch); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return models.SessionsResponse{
		Sessions: env.Sessions.Sessions(),
		Selected: env.Sessions.Selected(),
	}, nil
}

// HandleSessionsDelete removes sessions by id. Roasts past the deletion
// guard are silently kept; the response lists what was actually removed.
func HandleSessionsDelete(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received sessions.delete request")

	var params models.DeleteSessionsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	deleted, err := env.Sessions.Delete(env.Ctx, params.IDs)
	if err != nil {
		return nil, fmt.Errorf("failed to delete sessions: %w", err)
	}
	if deleted == nil {
		deleted = []string{}
	}
	return models.DeleteSessionsResponse{Deleted: deleted}, nil
}
