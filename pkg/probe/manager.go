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

package probe

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/roastline/roastline/pkg/config"
	"github.com/roastline/roastline/pkg/helpers/syncutil"
	"github.com/roastline/roastline/pkg/telemetry"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// SerialPort defines the serial port operations the manager needs (for
// mocking in tests).
type SerialPort interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error
	SetReadTimeout(t time.Duration) error
}

// PortFactory creates a serial port connection.
type PortFactory func(path string, mode *serial.Mode) (SerialPort, error)

// DefaultPortFactory is the default factory that opens real serial ports.
func DefaultPortFactory(path string, mode *serial.Mode) (SerialPort, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return port, nil
}

const readChunkSize = 256

// Manager owns the single probe connection and its poll timer. All device
// failures surface as status transitions published to the sink; none of
// the manager's methods return device-level errors to the caller.
//
// Each connection attempt bumps an internal generation counter, and the
// poll and read goroutines belonging to a superseded generation retire
// silently. Exactly one poll timer is alive per open connection.
type Manager struct {
	sink        telemetry.Sink
	lister      PortLister
	portFactory PortFactory
	clock       clockwork.Clock
	port        SerialPort
	stopPoll    chan struct{}
	path        string
	state       telemetry.ConnState
	codec       Codec
	baudRate    int
	pollPeriod  time.Duration
	gen         uint64
	mu          syncutil.Mutex
}

// Option overrides one of the manager's collaborators, used by tests to
// substitute fake ports, listers and clocks.
type Option func(*Manager)

// WithLister replaces the port lister.
func WithLister(lister PortLister) Option {
	return func(m *Manager) { m.lister = lister }
}

// WithPortFactory replaces the serial port factory.
func WithPortFactory(factory PortFactory) Option {
	return func(m *Manager) { m.portFactory = factory }
}

// WithClock replaces the poll timer clock.
func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

// NewManager creates a manager in the Disconnected state. Nothing is
// opened until Connect is called.
func NewManager(cfg *config.Instance, sink telemetry.Sink, opts ...Option) *Manager {
	m := &Manager{
		sink:        sink,
		lister:      EnumeratorLister{},
		portFactory: DefaultPortFactory,
		clock:       clockwork.NewRealClock(),
		state:       telemetry.StateDisconnected,
		baudRate:    cfg.BaudRate(),
		pollPeriod:  cfg.PollPeriod(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Status returns the current connection status.
func (m *Manager) Status() telemetry.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return telemetry.Status{State: m.state, Path: m.path}
}

// ListPorts returns the candidate serial devices.
func (m *Manager) ListPorts() ([]PortDescriptor, error) {
	ports, err := m.lister.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Connect opens the probe device and starts polling. With an empty path
// the device is auto-selected from the listed ports. The returned status
// is the caller-only echo; state transitions are additionally broadcast
// through the sink.
//
// Calling Connect while already connected is idempotent: the device is not
// reopened, no second poll timer starts, and nothing is broadcast. While a
// connection attempt is in flight, duplicate calls are rejected with a
// connecting echo.
func (m *Manager) Connect(requestedPath string) telemetry.Status {
	m.mu.Lock()

	switch m.state {
	case telemetry.StateConnected:
		status := telemetry.Status{State: telemetry.StateConnected, Path: m.path}
		m.mu.Unlock()
		return status
	case telemetry.StateConnecting:
		status := telemetry.Status{State: telemetry.StateConnecting, Path: m.path}
		m.mu.Unlock()
		return status
	default:
	}

	path := requestedPath
	if path == "" {
		ports, err := m.lister.List()
		if err == nil {
			path, err = selectPort(ports)
		}
		if err != nil {
			m.teardownLocked()
			m.state = telemetry.StateError
			m.path = ""
			status := telemetry.Status{State: telemetry.StateError, Message: err.Error()}
			m.mu.Unlock()
			log.Error().Err(err).Msg("probe auto-select failed")
			m.sink.PublishStatus(status)
			return status
		}
	}

	// Stop any prior connection's timer and clear its handle before the
	// new attempt proceeds.
	m.teardownLocked()

	m.state = telemetry.StateConnecting
	m.path = path
	gen := m.gen
	status := telemetry.Status{State: telemetry.StateConnecting, Path: path}
	m.mu.Unlock()
	m.sink.PublishStatus(status)

	// No timeout governs the open attempt, so the lock is not held across
	// it; the generation counter detects a superseding Connect/Disconnect.
	port, err := m.openPort(path)

	m.mu.Lock()
	if m.gen != gen || m.state != telemetry.StateConnecting {
		// Superseded while opening; discard this attempt.
		currentStatus := telemetry.Status{State: m.state, Path: m.path}
		m.mu.Unlock()
		if err == nil {
			_ = port.Close()
		}
		return currentStatus
	}

	if err != nil {
		m.state = telemetry.StateError
		m.path = ""
		status = telemetry.Status{State: telemetry.StateError, Message: err.Error()}
		m.mu.Unlock()
		log.Error().Err(err).Str("path", path).Msg("failed to open probe device")
		m.sink.PublishStatus(status)
		return status
	}

	m.port = port
	m.state = telemetry.StateConnected
	m.stopPoll = make(chan struct{})
	go m.pollLoop(gen, m.stopPoll)
	go m.readLoop(gen, port)
	status = telemetry.Status{State: telemetry.StateConnected, Path: path}
	m.mu.Unlock()

	log.Info().Str("path", path).Msg("probe device connected")
	m.sink.PublishStatus(status)
	return status
}

// Disconnect closes the device gracefully. It is safe to call in any
// state and always leaves the manager Disconnected with no live timers.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	hadConn := m.port != nil
	m.teardownLocked()
	m.state = telemetry.StateDisconnected
	m.path = ""
	m.mu.Unlock()

	if hadConn {
		log.Info().Msg("probe device disconnected")
		m.sink.PublishStatus(telemetry.Status{State: telemetry.StateDisconnected})
	}
}

func (m *Manager) openPort(path string) (SerialPort, error) {
	port, err := m.portFactory(path, &serial.Mode{BaudRate: m.baudRate})
	if err != nil {
		return nil, err
	}

	// A short read timeout keeps the read loop responsive to teardown.
	err = port.SetReadTimeout(100 * time.Millisecond)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return port, nil
}

// teardownLocked stops the poll timer, closes and clears the port handle,
// and retires the current generation. Caller must hold mu.
func (m *Manager) teardownLocked() {
	if m.stopPoll != nil {
		close(m.stopPoll)
		m.stopPoll = nil
	}
	if m.port != nil {
		if err := m.port.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close serial port")
		}
		m.port = nil
	}
	m.gen++
}

func (m *Manager) pollLoop(gen uint64, stop <-chan struct{}) {
	ticker := m.clock.NewTicker(m.pollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			if !m.poll(gen) {
				return
			}
		}
	}
}

// poll sends one reading request. Returns false once this generation is
// retired or the device fails.
func (m *Manager) poll(gen uint64) bool {
	m.mu.Lock()
	if m.gen != gen || m.port == nil {
		m.mu.Unlock()
		return false
	}
	port := m.port
	m.mu.Unlock()

	if _, err := port.Write(m.codec.EncodePoll()); err != nil {
		m.deviceError(gen, fmt.Errorf("failed to write poll command: %w", err))
		return false
	}
	return true
}

func (m *Manager) readLoop(gen uint64, port SerialPort) {
	var lineBuf []byte
	buf := make([]byte, readChunkSize)

	for {
		if m.retired(gen) {
			return
		}

		n, err := port.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				m.deviceClosed(gen)
			} else {
				m.deviceError(gen, fmt.Errorf("failed to read from serial port: %w", err))
			}
			return
		}

		for i := 0; i < n; i++ {
			if buf[i] != '\n' {
				lineBuf = append(lineBuf, buf[i])
				continue
			}

			line := string(lineBuf)
			lineBuf = lineBuf[:0]

			reading, decodeErr := m.codec.Decode(line)
			if decodeErr != nil {
				// Malformed lines are dropped: no broadcast, no cache update.
				log.Debug().Str("line", line).Msg("dropping malformed probe reply")
				continue
			}

			if m.retired(gen) {
				return
			}
			m.sink.PublishReading(reading)
		}
	}
}

func (m *Manager) retired(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen != gen
}

// deviceError handles a runtime device failure: the connection is torn
// down, state moves to Error and the failure is broadcast. No automatic
// retry; recovery is an explicit reconnect.
func (m *Manager) deviceError(gen uint64, err error) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.teardownLocked()
	m.state = telemetry.StateError
	m.path = ""
	m.mu.Unlock()

	log.Error().Err(err).Msg("probe device error")
	m.sink.PublishStatus(telemetry.Status{State: telemetry.StateError, Message: err.Error()})
}

// deviceClosed handles a spontaneous close from the device side.
func (m *Manager) deviceClosed(gen uint64) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.teardownLocked()
	m.state = telemetry.StateDisconnected
	m.path = ""
	m.mu.Unlock()

	log.Info().Msg("probe device closed")
	m.sink.PublishStatus(telemetry.Status{State: telemetry.StateDisconnected})
}
