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
	"strings"

	"go.bug.st/serial/enumerator"
)

// ErrNoPortAvailable is reported when auto-selection runs against an empty
// port list.
var ErrNoPortAvailable = errors.New("no serial port available")

// PortDescriptor describes a candidate serial device.
type PortDescriptor struct {
	Path         string `json:"path"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

// PortLister enumerates candidate serial devices. The production
// implementation wraps the platform enumerator; tests supply fixed lists.
type PortLister interface {
	List() ([]PortDescriptor, error)
}

// EnumeratorLister lists ports using go.bug.st's detailed enumerator so
// USB product strings are available for auto-selection.
type EnumeratorLister struct{}

func (EnumeratorLister) List() ([]PortDescriptor, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	ports := make([]PortDescriptor, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortDescriptor{
			Path:         d.Name,
			Manufacturer: d.Product,
		})
	}
	return ports, nil
}

// usbSignatures are matched case-insensitively against a port's path and
// manufacturer string during auto-selection. They cover the common
// USB-serial bridge device names plus the microcontroller brand the
// typical probe board reports.
var usbSignatures = []string{
	"ttyusb",
	"usbserial",
	"usbmodem",
	"wchusbserial",
	"arduino",
}

// selectPort picks a device from the listed ports: the first port whose
// path or manufacturer matches a USB-serial signature, else the first
// listed port. List order wins over a better match later in the list.
func selectPort(ports []PortDescriptor) (string, error) {
	if len(ports) == 0 {
		return "", ErrNoPortAvailable
	}

	for _, p := range ports {
		path := strings.ToLower(p.Path)
		manufacturer := strings.ToLower(p.Manufacturer)
		for _, sig := range usbSignatures {
			if strings.Contains(path, sig) || strings.Contains(manufacturer, sig) {
				return p.Path, nil
			}
		}
	}

	return ports[0].Path, nil
}
