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

// Package export renders finished roast sessions as CSV data and a
// standalone HTML report.
package export

import (
	"fmt"
	"html/template"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/roastline/roastline/pkg/session"
)

type csvSample struct {
	Time float64 `csv:"time"`
	Temp float64 `csv:"temp"`
	RoR  float64 `csv:"ror"`
}

// CSV writes the session's samples as time/temp/ror rows with a header.
func CSV(w io.Writer, s *session.RoastSession) error {
	rows := make([]csvSample, len(s.Samples))
	for i, sample := range s.Samples {
		rows[i] = csvSample{Time: sample.Elapsed, Temp: sample.Temp, RoR: sample.RoR}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write roast CSV: %w", err)
	}
	return nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Roast Profile Report</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 0; padding: 40px; background-color: #f7fafc; color: #1a202c; }
    .container { max-width: 800px; margin: 0 auto; background-color: white; padding: 40px; border-radius: 12px; }
    h1 { font-size: 2.25rem; margin-bottom: 20px; }
    h2 { font-size: 1.5rem; margin-top: 40px; border-bottom: 2px solid #e2e8f0; padding-bottom: 10px; }
    .summary { display: grid; grid-template-columns: 1fr 1fr; gap: 20px; margin-bottom: 40px; }
    .summary-item { background-color: #f7fafc; padding: 20px; border-radius: 8px; }
    .summary-item p { margin: 0; color: #718096; font-size: 0.875rem; }
    .summary-item h3 { margin: 5px 0 0; font-size: 1.875rem; }
    table { width: 100%; border-collapse: collapse; }
    th, td { text-align: right; padding: 6px 12px; border-bottom: 1px solid #e2e8f0; }
  </style>
</head>
<body>
  <div class="container">
    <h1>Roast Profile Report</h1>
    {{- if .Name}}
    <p>{{.Name}}</p>
    {{- end}}
    <div class="summary">
      <div class="summary-item">
        <p>Roast Date</p>
        <h3>{{.RoastDate}}</h3>
      </div>
      <div class="summary-item">
        <p>Total Time</p>
        <h3>{{printf "%.2f" .TotalMinutes}} min</h3>
      </div>
      <div class="summary-item">
        <p>Max Temperature</p>
        <h3>{{printf "%.1f" .MaxTemp}} &deg;C</h3>
      </div>
    </div>
    <h2>Samples</h2>
    <table>
      <tr><th>Time (s)</th><th>Temp (&deg;C)</th><th>RoR (&deg;C/min)</th></tr>
      {{- range .Samples}}
      <tr><td>{{printf "%.0f" .Elapsed}}</td><td>{{printf "%.1f" .Temp}}</td><td>{{printf "%.1f" .RoR}}</td></tr>
      {{- end}}
    </table>
  </div>
</body>
</html>
`))

type reportData struct {
	Name         string
	RoastDate    string
	Samples      []session.RoastSample
	TotalMinutes float64
	MaxTemp      float64
}

// HTMLReport writes a self-contained report with the roast date, total
// time in minutes, maximum temperature and a per-sample table.
func HTMLReport(w io.Writer, s *session.RoastSession) error {
	maxTemp := 0.0
	for _, sample := range s.Samples {
		if sample.Temp > maxTemp {
			maxTemp = sample.Temp
		}
	}

	data := reportData{
		Name:         s.Name,
		RoastDate:    s.CreatedAt.Format("2006-01-02 15:04"),
		TotalMinutes: s.TotalTime / 60,
		MaxTemp:      maxTemp,
		Samples:      s.Samples,
	}
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render roast report: %w", err)
	}
	return nil
}
