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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/roastline/roastline/pkg/api/client"
	"github.com/roastline/roastline/pkg/api/models"
	"github.com/roastline/roastline/pkg/config"
	"github.com/roastline/roastline/pkg/helpers"
	"github.com/roastline/roastline/pkg/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	showVersion := flag.Bool("version", false, "print version and exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	daemonMode := flag.Bool("daemon", false, "log to stderr instead of only the log file")
	listPorts := flag.Bool("ports", false, "list serial ports on a running service and exit")
	connect := flag.String("connect", "", "connect a running service to a serial port and exit")
	doDisconnect := flag.Bool("disconnect", false, "disconnect a running service's probe and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		return nil
	}

	configDir := filepath.Join(xdg.ConfigHome, config.AppName)
	dataDir := filepath.Join(xdg.DataHome, config.AppName)

	var logWriters []io.Writer
	if *daemonMode {
		logWriters = []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	}
	if err := helpers.InitLogging(dataDir, logWriters); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg, err := config.NewConfig(configDir, config.BaseDefaults)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *debug || cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// One-shot commands against an already running service.
	switch {
	case *listPorts:
		return oneShot(cfg, models.MethodPorts, "")
	case *connect != "":
		return oneShot(cfg, models.MethodPortsConnect,
			fmt.Sprintf(`{"path":%q}`, *connect))
	case *doDisconnect:
		return oneShot(cfg, models.MethodPortsDisconnect, "")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msgf("starting %s v%s", config.AppName, config.AppVersion)
	if err := service.Start(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("service stopped with error")
		return fmt.Errorf("service stopped: %w", err)
	}
	return nil
}

func oneShot(cfg *config.Instance, method, params string) error {
	resp, err := client.LocalClient(context.Background(), cfg, method, params)
	if err != nil {
		return fmt.Errorf("%s failed: %w", method, err)
	}
	fmt.Println(resp)
	return nil
}
