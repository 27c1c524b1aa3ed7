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
	"context"
	"encoding/json"
	"testing"

	"github.com/roastline/roastline/pkg/api/models"
	"github.com/roastline/roastline/pkg/api/models/requests"
	"github.com/roastline/roastline/pkg/api/validation"
	"github.com/roastline/roastline/pkg/config"
	"github.com/roastline/roastline/pkg/database/sessiondb"
	"github.com/roastline/roastline/pkg/probe"
	"github.com/roastline/roastline/pkg/probe/testutils"
	"github.com/roastline/roastline/pkg/recorder"
	"github.com/roastline/roastline/pkg/session"
	"github.com/roastline/roastline/pkg/telemetry"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	serial "go.bug.st/serial"
)

type staticLister struct {
	ports []probe.PortDescriptor
}

func (l staticLister) List() ([]probe.PortDescriptor, error) {
	return l.ports, nil
}

type nullSink struct{}

func (nullSink) PublishStatus(telemetry.Status)   {}
func (nullSink) PublishReading(telemetry.Reading) {}

func newTestEnv(t *testing.T) requests.RequestEnv {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	mgr := probe.NewManager(cfg, nullSink{},
		probe.WithLister(staticLister{ports: []probe.PortDescriptor{
			{Path: "/dev/ttyUSB0", Manufacturer: "wchUSBserial"},
		}}),
		probe.WithPortFactory(func(_ string, _ *serial.Mode) (probe.SerialPort, error) {
			return testutils.NewMockSerialPort(), nil
		}),
	)
	t.Cleanup(mgr.Disconnect)

	store := sessiondb.NewSessionDB(afero.NewMemMapFs(), "/sessions.json")
	sessions := session.NewReconciler(store)
	require.NoError(t, sessions.Load(context.Background()))

	rec := recorder.NewRecorder(func() (float64, bool) { return 0, false })
	t.Cleanup(func() { rec.Stop("", session.MetadataPatch{}) })

	return requests.RequestEnv{
		Ctx:      context.Background(),
		Config:   cfg,
		Probe:    mgr,
		Recorder: rec,
		Sessions: sessions,
	}
}

func TestHandlePorts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	result, err := HandlePorts(env)
	require.NoError(t, err)

	ports, ok := result.([]models.PortInfo)
	require.True(t, ok)
	require.Len(t, ports, 1)
	assert.Equal(t, "/dev/ttyUSB0", ports[0].Path)
	assert.Equal(t, "wchUSBserial", ports[0].Manufacturer)
}

func TestHandlePortsConnectDisconnect(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	// No params: auto-select picks the only listed port.
	result, err := HandlePortsConnect(env)
	require.NoError(t, err)
	status, ok := result.(telemetry.Status)
	require.True(t, ok)
	assert.Equal(t, telemetry.StateConnected, status.State)
	assert.Equal(t, "/dev/ttyUSB0", status.Path)

	result, err = HandlePortsDisconnect(env)
	require.NoError(t, err)
	status, ok = result.(telemetry.Status)
	require.True(t, ok)
	assert.Equal(t, telemetry.StateDisconnected, status.State)
}

func TestHandlePortsConnect_ExplicitPath(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Params = json.RawMessage(`{"path":"/dev/ttyACM3"}`)

	result, err := HandlePortsConnect(env)
	require.NoError(t, err)
	status, ok := result.(telemetry.Status)
	require.True(t, ok)
	assert.Equal(t, telemetry.StateConnected, status.State)
	assert.Equal(t, "/dev/ttyACM3", status.Path)
}

func TestHandleSessionsRoundTrip(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	env.Params = json.RawMessage(`{"sessions":[
		{"id":"a","name":"short","createdAt":"2026-03-14T09:30:00Z","totalTime":120,"data":[]},
		{"id":"b","name":"long","createdAt":"2026-03-14T10:30:00Z","totalTime":700,"data":[]}
	]}`)
	result, err := HandleSessionsReplace(env)
	require.NoError(t, err)
	resp, ok := result.(models.SessionsResponse)
	require.True(t, ok)
	require.Len(t, resp.Sessions, 2)
	assert.Equal(t, "a", resp.Selected)

	env.Params = nil
	result, err = HandleSessions(env)
	require.NoError(t, err)
	resp, ok = result.(models.SessionsResponse)
	require.True(t, ok)
	assert.Len(t, resp.Sessions, 2)
}

func TestHandleSessionsUpdate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Params = json.RawMessage(`{"sessions":[
		{"id":"a","name":"x","createdAt":"2026-03-14T09:30:00Z","totalTime":700,"data":[]}
	]}`)
	_, err := HandleSessionsReplace(env)
	require.NoError(t, err)

	env.Params = json.RawMessage(`{"id":"a","patch":{"beanName":"Guatemala SHB","beanWeight":200}}`)
	result, err := HandleSessionsUpdate(env)
	require.NoError(t, err)

	resp, ok := result.(models.SessionsResponse)
	require.True(t, ok)
	require.NotNil(t, resp.Sessions[0].BeanName)
	assert.Equal(t, "Guatemala SHB", *resp.Sessions[0].BeanName)
}

func TestHandleSessionsUpdate_UnknownID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Params = json.RawMessage(`{"id":"ghost","patch":{}}`)

	_, err := HandleSessionsUpdate(env)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestHandleSessionsDelete_RespectsGuard(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Params = json.RawMessage(`{"sessions":[
		{"id":"short","name":"","createdAt":"2026-03-14T09:30:00Z","totalTime":100,"data":[]},
		{"id":"long","name":"","createdAt":"2026-03-14T10:30:00Z","totalTime":700,"data":[]}
	]}`)
	_, err := HandleSessionsReplace(env)
	require.NoError(t, err)

	env.Params = json.RawMessage(`{"ids":["short","long"]}`)
	result, err := HandleSessionsDelete(env)
	require.NoError(t, err)

	resp, ok := result.(models.DeleteSessionsResponse)
	require.True(t, ok)
	assert.Equal(t, []string{"short"}, resp.Deleted)
}

func TestHandleSessionsDelete_MissingParams(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := HandleSessionsDelete(env)
	assert.ErrorIs(t, err, validation.ErrMissingParams)
}

func TestHandleRoastLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	result, err := HandleRoastStart(env)
	require.NoError(t, err)
	status, ok := result.(models.RoastStatusResponse)
	require.True(t, ok)
	assert.True(t, status.Recording)

	_, err = HandleRoastStart(env)
	assert.ErrorIs(t, err, recorder.ErrAlreadyRecording)

	result, err = HandleRoastStatus(env)
	require.NoError(t, err)
	status, ok = result.(models.RoastStatusResponse)
	require.True(t, ok)
	assert.True(t, status.Recording)

	// No readings arrived, so stopping records nothing.
	result, err = HandleRoastStop(env)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, env.Sessions.Sessions())
}

func TestHandleVersion(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	result, err := HandleVersion(env)
	require.NoError(t, err)

	resp, ok := result.(models.VersionResponse)
	require.True(t, ok)
	assert.Equal(t, config.AppName, resp.AppName)
	assert.Equal(t, config.AppVersion, resp.Version)
}
