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

// Package recorder samples the live probe temperature once per second
// while a roast is running and computes the rate of rise for each sample.
package recorder

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/roastline/roastline/pkg/helpers/syncutil"
	"github.com/roastline/roastline/pkg/session"
	"github.com/rs/zerolog/log"
)

// ErrAlreadyRecording is returned by Start while a roast is in progress.
var ErrAlreadyRecording = errors.New("a roast is already being recorded")

// rorLookback bounds the backwards scan for the rate-of-rise reference
// sample: the most recent sample between 29 and 30 seconds old.
const (
	rorLookbackMin = 29.0
	rorLookbackMax = 30.0
)

// TempSource returns the latest cached probe temperature. The second
// return is false while no reading has arrived yet.
type TempSource func() (float64, bool)

// Recorder drives the roast sampling loop. It ticks once per second on
// its own clock, reads the latest cached temperature (samples are not
// resynchronized to hardware poll ticks) and appends a sample with the
// elapsed time and rate of rise.
type Recorder struct {
	source  TempSource
	clock   clockwork.Clock
	stop    chan struct{}
	done    chan struct{}
	t0      time.Time
	samples []session.RoastSample
	active  bool
	mu      syncutil.Mutex
}

// NewRecorder creates an idle recorder reading temperatures from source.
func NewRecorder(source TempSource) *Recorder {
	return &Recorder{
		source: source,
		clock:  clockwork.NewRealClock(),
	}
}

// Recording reports whether a roast is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Samples returns a copy of the samples recorded so far.
func (r *Recorder) Samples() []session.RoastSample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.RoastSample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Start begins a new roast: the sample buffer is cleared, the roast clock
// starts at zero and the sampling goroutine spins up.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return ErrAlreadyRecording
	}

	r.samples = nil
	r.t0 = r.clock.Now()
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	r.active = true
	go r.run(r.stop, r.done)

	log.Info().Msg("roast recording started")
	return nil
}

// Stop ends the roast and returns the finished session with the given
// name and metadata, or nil when no samples were recorded. The sampling
// goroutine is cancelled synchronously and the buffer is cleared either
// way. Stopping an idle recorder returns nil.
func (r *Recorder) Stop(name string, meta session.MetadataPatch) *session.RoastSession {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return nil
	}
	r.active = false
	close(r.stop)
	done := r.done
	r.mu.Unlock()

	<-done

	r.mu.Lock()
	samples := r.samples
	createdAt := r.t0
	r.samples = nil
	r.mu.Unlock()

	if len(samples) == 0 {
		log.Info().Msg("roast recording stopped with no samples")
		return nil
	}

	s := &session.RoastSession{
		ID:            uuid.NewString(),
		Name:          name,
		BeanName:      meta.BeanName,
		BeanWeight:    meta.BeanWeight,
		RoastedWeight: meta.RoastedWeight,
		TastingNote:   meta.TastingNote,
		CreatedAt:     createdAt,
		TotalTime:     samples[len(samples)-1].Elapsed,
		Samples:       samples,
	}
	log.Info().Str("session_id", s.ID).
		Float64("total_time", s.TotalTime).
		Int("samples", len(samples)).
		Msg("roast recording stopped")
	return s
}

func (r *Recorder) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := r.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			r.tick()
		}
	}
}

func (r *Recorder) tick() {
	temp, ok := r.source()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	if !ok {
		log.Debug().Msg("no probe reading yet, skipping roast sample")
		return
	}

	elapsed := r.clock.Now().Sub(r.t0).Seconds()
	r.samples = append(r.samples, session.RoastSample{
		Elapsed: elapsed,
		Temp:    temp,
		RoR:     r.rateOfRiseLocked(elapsed, temp),
	})
}

// rateOfRiseLocked scans the buffer backwards for the most recent sample
// between 29 and 30 seconds older than elapsed and doubles the
// temperature delta to get degrees per minute. Zero until the roast is
// old enough to have such a sample.
func (r *Recorder) rateOfRiseLocked(elapsed, temp float64) float64 {
	for i := len(r.samples) - 1; i >= 0; i-- {
		age := elapsed - r.samples[i].Elapsed
		if age > rorLookbackMin && age <= rorLookbackMax {
			return (temp - r.samples[i].Temp) * 2
		}
		if age > rorLookbackMax {
			break
		}
	}
	return 0
}
