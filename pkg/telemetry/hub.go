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

package telemetry

import (
	"github.com/roastline/roastline/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

type subscriber struct {
	ch chan Event
	id int
}

// Hub fans probe events out to all subscribers using non-blocking sends so
// a slow consumer cannot block the probe. Events reach each subscriber in
// emission order; delivery is at-most-once with no guarantee across
// subscriber disconnects.
type Hub struct {
	latestReading *Reading
	subscribers   []subscriber
	latestStatus  Status
	nextID        int
	mu            syncutil.RWMutex
}

// NewHub creates a hub with the connection state reported as disconnected
// until the probe manager publishes otherwise.
func NewHub() *Hub {
	return &Hub{
		latestStatus: Status{State: StateDisconnected},
	}
}

// Subscribe registers a new consumer and returns its event channel and an
// id for Unsubscribe. The cached latest status, and latest reading if one
// has arrived, are queued to the new channel only, before any live event.
func (h *Hub) Subscribe(bufferSize int) (<-chan Event, int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan Event, bufferSize)
	sub := subscriber{ch: ch, id: id}
	h.subscribers = append(h.subscribers, sub)

	// Replay to the new subscriber so it never renders a stale default.
	// Sends are non-blocking like any other delivery, so an undersized
	// buffer simply loses the replay rather than wedging the hub.
	status := h.latestStatus
	h.send(sub, Event{Status: &status})
	if h.latestReading != nil {
		reading := *h.latestReading
		h.send(sub, Event{Reading: &reading})
	}

	log.Debug().
		Int("subscriber_id", id).
		Int("buffer_size", bufferSize).
		Msg("new telemetry subscriber registered")

	return ch, id
}

// Unsubscribe removes a subscription and closes its channel.
// It's safe to call this multiple times with the same ID.
func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, sub := range h.subscribers {
		if sub.id == id {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			close(sub.ch)
			log.Debug().Int("subscriber_id", id).Msg("telemetry subscriber removed")
			return
		}
	}
}

// PublishStatus caches the status then broadcasts it to every subscriber in
// subscription order.
func (h *Hub) PublishStatus(status Status) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latestStatus = status
	s := status
	h.broadcast(Event{Status: &s})
}

// PublishReading caches the reading then broadcasts it to every subscriber
// in subscription order.
func (h *Hub) PublishReading(reading Reading) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := reading
	h.latestReading = &r
	h.broadcast(Event{Reading: &r})
}

// LatestStatus returns the most recently published status.
func (h *Hub) LatestStatus() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latestStatus
}

// LatestReading returns the most recently published reading, or false if no
// reading has arrived yet.
func (h *Hub) LatestReading() (Reading, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latestReading == nil {
		return Reading{}, false
	}
	return *h.latestReading, true
}

// Stop closes all subscriber channels and clears the registry.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subscribers {
		close(sub.ch)
	}
	h.subscribers = nil
}

// broadcast sends an event to all subscribers without blocking. If a
// subscriber's channel is full the event is dropped for that subscriber and
// a warning is logged. Caller must hold mu.
func (h *Hub) broadcast(event Event) {
	for _, sub := range h.subscribers {
		h.send(sub, event)
	}
}

func (*Hub) send(sub subscriber, event Event) {
	select {
	case sub.ch <- event:
	default:
		log.Warn().
			Int("subscriber_id", sub.id).
			Msg("subscriber channel full, dropping event")
	}
}
