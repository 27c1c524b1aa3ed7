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

package recorder

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/roastline/roastline/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// settableTemp is a TempSource whose value the test can change mid-roast.
type settableTemp struct {
	mu   sync.Mutex
	temp float64
	ok   bool
}

func (s *settableTemp) set(temp float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temp = temp
	s.ok = true
}

func (s *settableTemp) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ok = false
}

func (s *settableTemp) read() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temp, s.ok
}

func newFakeRecorder(source TempSource) (*Recorder, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return &Recorder{source: source, clock: clock}, clock
}

// advanceTicks moves the fake clock one second at a time, waiting for the
// sampling goroutine to consume each tick before the next.
func advanceTicks(t *testing.T, r *Recorder, clock *clockwork.FakeClock, n int) {
	t.Helper()
	base := len(r.Samples())
	for i := 1; i <= n; i++ {
		clock.Advance(time.Second)
		want := base + i
		require.Eventually(t, func() bool {
			return len(r.Samples()) == want
		}, time.Second, time.Millisecond)
	}
}

func TestStart_AlreadyRecording(t *testing.T) {
	t.Parallel()

	temps := &settableTemp{}
	temps.set(20)
	r, _ := newFakeRecorder(temps.read)

	require.NoError(t, r.Start())
	defer r.Stop("", session.MetadataPatch{})

	assert.ErrorIs(t, r.Start(), ErrAlreadyRecording)
	assert.True(t, r.Recording())
}

func TestRateOfRise_ZeroBeforeThirtySeconds(t *testing.T) {
	t.Parallel()

	temps := &settableTemp{}
	temps.set(20.5)
	r, clock := newFakeRecorder(temps.read)

	require.NoError(t, r.Start())
	defer r.Stop("", session.MetadataPatch{})
	clock.BlockUntil(1)

	advanceTicks(t, r, clock, 30)

	samples := r.Samples()
	require.Len(t, samples, 30)
	for _, s := range samples {
		assert.Zero(t, s.RoR, "no sample is 29-30 s old yet at %.0f s", s.Elapsed)
	}
}

func TestRateOfRise_ThirtySecondDelta(t *testing.T) {
	t.Parallel()

	temps := &settableTemp{}
	temps.set(20.5)
	r, clock := newFakeRecorder(temps.read)

	require.NoError(t, r.Start())
	defer r.Stop("", session.MetadataPatch{})
	clock.BlockUntil(1)

	advanceTicks(t, r, clock, 30)

	// At 31 s elapsed the 1 s sample is exactly 30 s old, the newest one
	// inside the lookback. Temperature has risen from 20.5 to 25.0, so
	// the rate of rise is 4.5 degrees per 30 s, doubled to per-minute.
	temps.set(25.0)
	advanceTicks(t, r, clock, 1)

	samples := r.Samples()
	require.Len(t, samples, 31)
	last := samples[30]
	assert.InDelta(t, 31.0, last.Elapsed, 0.0001)
	assert.InDelta(t, 25.0, last.Temp, 0.0001)
	assert.InDelta(t, 9.0, last.RoR, 0.0001)
}

func TestTick_SkippedWithoutReading(t *testing.T) {
	t.Parallel()

	temps := &settableTemp{}
	r, clock := newFakeRecorder(temps.read)

	require.NoError(t, r.Start())
	defer r.Stop("", session.MetadataPatch{})
	clock.BlockUntil(1)

	clock.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)

	assert.Empty(t, r.Samples(), "no probe reading, no sample")

	temps.set(180)
	advanceTicks(t, r, clock, 1)
	require.Len(t, r.Samples(), 1)
	assert.InDelta(t, 180, r.Samples()[0].Temp, 0.0001)
}

func TestStop_FinalizesSession(t *testing.T) {
	t.Parallel()

	temps := &settableTemp{}
	temps.set(20)
	r, clock := newFakeRecorder(temps.read)

	require.NoError(t, r.Start())
	clock.BlockUntil(1)
	advanceTicks(t, r, clock, 3)

	bean := "Kenya AB"
	s := r.Stop("morning batch", session.MetadataPatch{BeanName: &bean})

	require.NotNil(t, s)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "morning batch", s.Name)
	require.NotNil(t, s.BeanName)
	assert.Equal(t, bean, *s.BeanName)
	assert.InDelta(t, 3.0, s.TotalTime, 0.0001, "total time is the last sample's elapsed")
	assert.Len(t, s.Samples, 3)

	assert.False(t, r.Recording())
	assert.Empty(t, r.Samples(), "buffer is cleared on stop")
}

func TestStop_EmptyBufferReturnsNil(t *testing.T) {
	t.Parallel()

	temps := &settableTemp{}
	temps.set(20)
	r, _ := newFakeRecorder(temps.read)

	require.NoError(t, r.Start())
	assert.Nil(t, r.Stop("", session.MetadataPatch{}))
	assert.False(t, r.Recording())
}

func TestStop_Idle(t *testing.T) {
	t.Parallel()

	r, _ := newFakeRecorder((&settableTemp{}).read)
	assert.Nil(t, r.Stop("", session.MetadataPatch{}))
}

func TestRestart_ClearsPreviousRoast(t *testing.T) {
	t.Parallel()

	temps := &settableTemp{}
	temps.set(20)
	r, clock := newFakeRecorder(temps.read)

	require.NoError(t, r.Start())
	clock.BlockUntil(1)
	advanceTicks(t, r, clock, 2)
	require.NotNil(t, r.Stop("", session.MetadataPatch{}))

	require.NoError(t, r.Start())
	defer r.Stop("", session.MetadataPatch{})
	clock.BlockUntil(1)
	advanceTicks(t, r, clock, 1)

	samples := r.Samples()
	require.Len(t, samples, 1)
	assert.InDelta(t, 1.0, samples[0].Elapsed, 0.0001, "roast clock restarts at zero")
}
