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

package session

// SmoothWindow is the number of neighbouring samples averaged for display.
const SmoothWindow = 5

// Smooth returns a moving-average copy of the samples for display: each
// point's temperature and rate of rise become the mean of a symmetric
// window clipped to the slice bounds. The input is not modified, the
// output has the same length and elapsed times, and applying Smooth twice
// smooths further rather than being a no-op.
func Smooth(samples []RoastSample) []RoastSample {
	return SmoothN(samples, SmoothWindow)
}

// SmoothN is Smooth with an explicit window size. Windows below 2 return
// an unmodified copy.
func SmoothN(samples []RoastSample, window int) []RoastSample {
	out := make([]RoastSample, len(samples))
	copy(out, samples)
	if window < 2 || len(samples) < 2 {
		return out
	}

	half := window / 2
	for i := range samples {
		lo := max(0, i-half)
		hi := min(len(samples), i+half+1)

		var temp, ror float64
		for j := lo; j < hi; j++ {
			temp += samples[j].Temp
			ror += samples[j].RoR
		}
		n := float64(hi - lo)
		out[i].Temp = temp / n
		out[i].RoR = ror / n
	}
	return out
}
