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

package config

import (
	"path/filepath"
	"time"
)

func (c *Instance) APIPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiPortLocked()
}

// apiPortLocked returns the API port. Caller must hold mu (read or write).
func (c *Instance) apiPortLocked() int {
	if c.vals.Service.APIPort == nil {
		return DefaultAPIPort
	}
	return *c.vals.Service.APIPort
}

func (c *Instance) SetAPIPort(port int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Service.APIPort = &port
}

// APIListen returns the host the API server binds to. An empty string
// listens on every interface.
func (c *Instance) APIListen() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.APIListen
}

func (c *Instance) AllowedOrigins() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.vals.Service.AllowedOrigins) == 0 {
		return []string{"https://*", "http://*"}
	}
	return c.vals.Service.AllowedOrigins
}

func (c *Instance) MQTTPublishers() []MQTTPublisher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.Publishers.MQTT
}

func (c *Instance) BaudRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Probe.BaudRate == nil {
		return DefaultBaudRate
	}
	return *c.vals.Probe.BaudRate
}

func (c *Instance) PollPeriod() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Probe.PollPeriodMS == nil {
		return DefaultPollPeriod
	}
	return time.Duration(*c.vals.Probe.PollPeriodMS) * time.Millisecond
}

// ProbeDevice returns the configured serial device path, or an empty string
// if the device should be auto-selected.
func (c *Instance) ProbeDevice() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Probe.Device
}

func (c *Instance) SessionsPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Storage.SessionsPath == "" {
		return filepath.Join(c.dataDir, SessionsFile)
	}
	return c.vals.Storage.SessionsPath
}
