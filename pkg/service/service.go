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

// Package service wires the probe, telemetry hub, recorder, session store
// and API server into a running daemon.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/roastline/roastline/pkg/api"
	"github.com/roastline/roastline/pkg/api/models"
	"github.com/roastline/roastline/pkg/api/notifications"
	"github.com/roastline/roastline/pkg/config"
	"github.com/roastline/roastline/pkg/database/sessiondb"
	"github.com/roastline/roastline/pkg/probe"
	"github.com/roastline/roastline/pkg/recorder"
	"github.com/roastline/roastline/pkg/service/publishers"
	"github.com/roastline/roastline/pkg/session"
	"github.com/roastline/roastline/pkg/telemetry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	// hubBufferSize covers a 1 Hz reading stream plus status churn while a
	// consumer is briefly behind.
	hubBufferSize = 64
	// notificationBufferSize is the feed into the websocket broadcaster and
	// each external publisher.
	notificationBufferSize = 64
)

// Start runs the daemon until ctx is cancelled. It blocks.
func Start(ctx context.Context, cfg *config.Instance) error {
	hub := telemetry.NewHub()
	defer hub.Stop()

	probeMgr := probe.NewManager(cfg, hub)
	defer probeMgr.Disconnect()

	store := sessiondb.NewSessionDB(afero.NewOsFs(), cfg.SessionsPath())
	sessions := session.NewReconciler(store)
	if err := sessions.Load(ctx); err != nil {
		var verr *sessiondb.ValidationError
		if errors.As(err, &verr) {
			// Leave the file alone and run with an empty collection; a
			// replace from a client will overwrite it deliberately.
			log.Error().Err(err).Msg("sessions file failed validation, starting empty")
		} else {
			return fmt.Errorf("failed to load sessions: %w", err)
		}
	}

	rec := recorder.NewRecorder(func() (float64, bool) {
		reading, ok := hub.LatestReading()
		return reading.TemperatureC, ok
	})

	apiNotifs := make(chan models.Notification, notificationBufferSize)
	mqttChans := startMQTTPublishers(cfg)
	go pumpNotifications(ctx, hub, apiNotifs, mqttChans)

	if device := cfg.ProbeDevice(); device != "" {
		log.Info().Str("device", device).Msg("connecting configured probe device")
		status := probeMgr.Connect(device)
		if status.State == telemetry.StateError {
			log.Warn().Str("message", status.Message).Msg("configured probe device not available")
		}
	}

	server := api.NewServer(cfg, probeMgr, rec, sessions, hub)
	return server.Start(ctx, apiNotifs)
}

// startMQTTPublishers brings up every enabled MQTT publisher from config
// and returns their notification channels. A broker that cannot be
// reached is logged and skipped, never fatal.
func startMQTTPublishers(cfg *config.Instance) []chan models.Notification {
	var chans []chan models.Notification
	for _, pub := range cfg.MQTTPublishers() {
		if pub.Enabled != nil && !*pub.Enabled {
			continue
		}
		if pub.Broker == "" || pub.Topic == "" {
			log.Warn().Msg("mqtt publisher missing broker or topic, skipping")
			continue
		}

		ch := make(chan models.Notification, notificationBufferSize)
		p := publishers.NewMQTTPublisher(pub.Broker, pub.Topic, pub.Filter)
		if err := p.Start(ch); err != nil {
			log.Error().Err(err).Str("broker", pub.Broker).Msg("failed to start mqtt publisher")
			continue
		}
		chans = append(chans, ch)
	}
	return chans
}

// pumpNotifications converts hub events into API notifications and fans
// them out to the websocket broadcaster and the external publishers.
// Sends never block: a full consumer misses the event rather than
// stalling the telemetry path.
func pumpNotifications(
	ctx context.Context,
	hub *telemetry.Hub,
	apiNotifs chan<- models.Notification,
	mqttChans []chan models.Notification,
) {
	events, id := hub.Subscribe(hubBufferSize)
	defer hub.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}

			var notif models.Notification
			switch {
			case event.Status != nil:
				notifications.PortStatus(apiNotifs, *event.Status)
				notif = models.Notification{
					Method: models.NotificationPortStatus,
					Params: *event.Status,
				}
			case event.Reading != nil:
				notifications.Reading(apiNotifs, event.Reading.TemperatureC)
				notif = models.Notification{
					Method: models.NotificationReading,
					Params: event.Reading.TemperatureC,
				}
			default:
				continue
			}

			for _, ch := range mqttChans {
				offer(ch, notif)
			}
		}
	}
}

func offer(ch chan<- models.Notification, notif models.Notification) {
	select {
	case ch <- notif:
	default:
		log.Warn().Str("method", notif.Method).Msg("notification consumer full, dropping")
	}
}
