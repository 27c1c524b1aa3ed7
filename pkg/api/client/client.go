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

// Package client is a one-shot JSON-RPC client for talking to a running
// local service, used by the CLI flags.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/roastline/roastline/pkg/api/models"
	"github.com/roastline/roastline/pkg/config"
	"github.com/rs/zerolog/log"
)

var (
	ErrRequestTimeout   = errors.New("request timed out")
	ErrInvalidParams    = errors.New("invalid params")
	ErrRequestCancelled = errors.New("request cancelled")
)

const APIPath = "/api"

// LocalClient sends a single method with params to the local running
// service, waits for a response until timeout then disconnects.
func LocalClient(
	ctx context.Context,
	cfg *config.Instance,
	method string,
	params string,
) (string, error) {
	localWebsocketURL := url.URL{
		Scheme: "ws",
		Host:   "localhost:" + strconv.Itoa(cfg.APIPort()),
		Path:   APIPath,
	}

	id, err := uuid.NewUUID()
	if err != nil {
		return "", fmt.Errorf("error generating request id: %w", err)
	}

	req := models.RequestObject{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
	}

	switch {
	case len(params) == 0:
		req.Params = nil
	case json.Valid([]byte(params)):
		req.Params = []byte(params)
	default:
		return "", ErrInvalidParams
	}

	c, _, err := websocket.DefaultDialer.Dial(localWebsocketURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("error connecting to local service: %w", err)
	}
	defer func(c *websocket.Conn) {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing websocket")
		}
	}(c)

	done := make(chan struct{})
	var resp *models.ResponseObject

	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Error().Err(err).Msg("error reading message")
				return
			}

			var m models.ResponseObject
			if err := json.Unmarshal(message, &m); err != nil {
				continue
			}

			if m.JSONRPC != "2.0" {
				log.Error().Msg("invalid jsonrpc version")
				continue
			}

			if m.ID != id {
				continue
			}

			resp = &m
			return
		}
	}()

	if err := c.WriteJSON(req); err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	timer := time.NewTimer(config.APIRequestTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing websocket")
		}
		return "", ErrRequestTimeout
	case <-ctx.Done():
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing websocket")
		}
		return "", ErrRequestCancelled
	}

	if resp == nil {
		return "", ErrRequestTimeout
	}

	if resp.Error != nil {
		return "", errors.New(resp.Error.Message)
	}

	b, err := json.Marshal(resp.Result)
	if err != nil {
		return "", fmt.Errorf("error marshalling result: %w", err)
	}

	return string(b), nil
}
