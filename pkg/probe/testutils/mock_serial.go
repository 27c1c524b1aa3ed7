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

// Package testutils provides a mock serial port for probe tests.
package testutils

import (
	"errors"
	"time"

	"github.com/roastline/roastline/pkg/helpers/syncutil"
)

// MockSerialPort is a mock implementation of the probe's serial port
// interface. It supports custom read functions, error injection, buffered
// data reading and records every write.
type MockSerialPort struct {
	ReadError  error
	WriteError error
	CloseError error
	TimeoutErr error
	ReadFunc   func(p []byte) (n int, err error)
	ReadData   []byte
	writes     [][]byte
	ReadIndex  int
	Closed     bool
	mu         syncutil.RWMutex // protects Closed, writes
}

// NewMockSerialPort creates a new mock serial port for testing.
func NewMockSerialPort() *MockSerialPort {
	return &MockSerialPort{}
}

// Read supports custom read functions, error injection, and buffered data
// reading, in that order of precedence.
func (m *MockSerialPort) Read(p []byte) (n int, err error) {
	m.mu.RLock()
	closed := m.Closed
	m.mu.RUnlock()

	if closed {
		return 0, errors.New("port closed")
	}

	if m.ReadFunc != nil {
		return m.ReadFunc(p)
	}

	if m.ReadError != nil {
		return 0, m.ReadError
	}

	if m.ReadIndex >= len(m.ReadData) {
		// Simulate a read timeout with no data.
		time.Sleep(10 * time.Millisecond)
		return 0, nil
	}

	n = copy(p, m.ReadData[m.ReadIndex:])
	m.ReadIndex += n
	return n, nil
}

// Write records the written bytes, or fails if WriteError is set.
func (m *MockSerialPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Closed {
		return 0, errors.New("port closed")
	}
	if m.WriteError != nil {
		return 0, m.WriteError
	}

	buf := make([]byte, len(p))
	copy(buf, p)
	m.writes = append(m.writes, buf)
	return len(p), nil
}

// Close marks the port closed.
func (m *MockSerialPort) Close() error {
	m.mu.Lock()
	m.Closed = true
	closeError := m.CloseError
	m.mu.Unlock()
	return closeError
}

// SetReadTimeout returns TimeoutErr if set.
func (m *MockSerialPort) SetReadTimeout(_ time.Duration) error {
	return m.TimeoutErr
}

// IsClosed returns true if the port has been closed (thread-safe).
func (m *MockSerialPort) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Closed
}

// Writes returns a copy of everything written to the port so far.
func (m *MockSerialPort) Writes() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	writes := make([][]byte, len(m.writes))
	copy(writes, m.writes)
	return writes
}

// WriteCount returns how many writes the port has received (thread-safe).
func (m *MockSerialPort) WriteCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.writes)
}
