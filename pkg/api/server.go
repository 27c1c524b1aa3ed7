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

// Package api serves the JSON-RPC websocket endpoint and the plain HTTP
// mirror of the session store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/olahol/melody"
	"github.com/roastline/roastline/pkg/api/methods"
	"github.com/roastline/roastline/pkg/api/models"
	"github.com/roastline/roastline/pkg/api/models/requests"
	"github.com/roastline/roastline/pkg/config"
	"github.com/roastline/roastline/pkg/database/sessiondb"
	"github.com/roastline/roastline/pkg/export"
	"github.com/roastline/roastline/pkg/probe"
	"github.com/roastline/roastline/pkg/recorder"
	"github.com/roastline/roastline/pkg/session"
	"github.com/roastline/roastline/pkg/telemetry"
	"github.com/rs/zerolog/log"
)

var JSONRPCErrorParseError = models.ErrorObject{
	Code:    -32700,
	Message: "Parse error",
}
var JSONRPCErrorInvalidRequest = models.ErrorObject{
	Code:    -32600,
	Message: "Invalid Request",
}
var JSONRPCErrorMethodNotFound = models.ErrorObject{
	Code:    -32601,
	Message: "Method not found",
}
var JSONRPCErrorServerError = models.ErrorObject{
	Code:    -32000,
	Message: "Server error",
}

var methodMap = map[string]func(requests.RequestEnv) (any, error){
	// ports
	models.MethodPorts:           methods.HandlePorts,
	models.MethodPortsConnect:    methods.HandlePortsConnect,
	models.MethodPortsDisconnect: methods.HandlePortsDisconnect,
	// sessions
	models.MethodSessions:        methods.HandleSessions,
	models.MethodSessionsReplace: methods.HandleSessionsReplace,
	models.MethodSessionsUpdate:  methods.HandleSessionsUpdate,
	models.MethodSessionsDelete:  methods.HandleSessionsDelete,
	// roast recording
	models.MethodRoastStart:  methods.HandleRoastStart,
	models.MethodRoastStop:   methods.HandleRoastStop,
	models.MethodRoastStatus: methods.HandleRoastStatus,
	// utils
	models.MethodVersion: methods.HandleVersion,
}

// Server ties the websocket endpoint, the HTTP mirror and the probe and
// session services together.
type Server struct {
	cfg      *config.Instance
	probe    *probe.Manager
	recorder *recorder.Recorder
	sessions *session.Reconciler
	hub      *telemetry.Hub
	melody   *melody.Melody
	baseCtx  context.Context
}

// NewServer creates the API server. Start must be called to serve.
func NewServer(
	cfg *config.Instance,
	probeMgr *probe.Manager,
	rec *recorder.Recorder,
	sessions *session.Reconciler,
	hub *telemetry.Hub,
) *Server {
	return &Server{
		cfg:      cfg,
		probe:    probeMgr,
		recorder: rec,
		sessions: sessions,
		hub:      hub,
	}
}

func maybeUUID(req models.RequestObject) uuid.UUID {
	if req.ID == nil {
		return uuid.Nil
	}
	return *req.ID
}

func (s *Server) handleRequest(req models.RequestObject, isLocal bool) (any, error) {
	fn, ok := methodMap[strings.ToLower(req.Method)]
	if !ok {
		return nil, fmt.Errorf("unknown method: %s", req.Method)
	}

	ctx, cancel := context.WithTimeout(s.baseCtx, config.APIRequestTimeout)
	defer cancel()

	return fn(requests.RequestEnv{
		Ctx:      ctx,
		Config:   s.cfg,
		Probe:    s.probe,
		Recorder: s.recorder,
		Sessions: s.sessions,
		Params:   req.Params,
		ID:       *req.ID,
		IsLocal:  isLocal,
	})
}

func sendResponse(ms *melody.Session, id uuid.UUID, result any) error {
	log.Debug().Interface("result", result).Msg("sending response")

	resp := models.ResponseObject{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("error marshalling response: %w", err)
	}

	if err := ms.Write(data); err != nil {
		return fmt.Errorf("error writing response: %w", err)
	}
	return nil
}

func sendError(ms *melody.Session, id uuid.UUID, errObj models.ErrorObject) error {
	log.Debug().Int("code", errObj.Code).Str("message", errObj.Message).Msg("sending error")

	resp := models.ResponseObject{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &errObj,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("error marshalling error response: %w", err)
	}

	if err := ms.Write(data); err != nil {
		return fmt.Errorf("error writing error response: %w", err)
	}
	return nil
}

// notificationData renders a notification as a JSON-RPC request with no id.
func notificationData(method string, params any) ([]byte, error) {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("error marshalling notification params: %w", err)
		}
		raw = data
	}

	data, err := json.Marshal(models.RequestObject{
		JSONRPC: "2.0",
		Method:  method,
		Params:  raw,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshalling notification: %w", err)
	}
	return data, nil
}

func (s *Server) broadcastNotifications(ctx context.Context, notifications <-chan models.Notification) {
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("stopping notification broadcaster")
			return
		case notif := <-notifications:
			data, err := notificationData(notif.Method, notif.Params)
			if err != nil {
				log.Error().Err(err).Msg("marshalling notification request")
				continue
			}
			if err := s.melody.Broadcast(data); err != nil {
				log.Error().Err(err).Msg("broadcasting notification")
			}
		}
	}
}

// replayToSession pushes the cached port status, and reading if one has
// arrived, to a freshly connected websocket client so it never renders a
// stale default.
func (s *Server) replayToSession(ms *melody.Session) {
	status := s.hub.LatestStatus()
	if data, err := notificationData(models.NotificationPortStatus, status); err == nil {
		if err := ms.Write(data); err != nil {
			log.Error().Err(err).Msg("replaying port status")
		}
	}

	if reading, ok := s.hub.LatestReading(); ok {
		if data, err := notificationData(models.NotificationReading, reading.TemperatureC); err == nil {
			if err := ms.Write(data); err != nil {
				log.Error().Err(err).Msg("replaying reading")
			}
		}
	}
}

func (s *Server) handleWSMessage(ms *melody.Session, msg []byte) {
	// ping command for heartbeat operation
	if bytes.Equal(msg, []byte("ping")) {
		if err := ms.Write([]byte("pong")); err != nil {
			log.Error().Err(err).Msg("sending pong")
		}
		return
	}

	if !json.Valid(msg) {
		log.Error().Msg("data not valid json")
		if err := sendError(ms, uuid.Nil, JSONRPCErrorParseError); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	var req models.RequestObject
	err := json.Unmarshal(msg, &req)
	if err != nil || req.Method == "" {
		log.Error().Err(err).Msg("message is not a request")
		if err := sendError(ms, maybeUUID(req), JSONRPCErrorInvalidRequest); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	if req.JSONRPC != "2.0" {
		log.Error().Str("jsonrpc", req.JSONRPC).Msg("unsupported payload version")
		if err := sendError(ms, maybeUUID(req), JSONRPCErrorInvalidRequest); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	if req.ID == nil {
		// request is a notification, nothing to respond to
		log.Info().Interface("req", req).Msg("received notification, ignoring")
		return
	}

	if _, ok := methodMap[strings.ToLower(req.Method)]; !ok {
		if err := sendError(ms, *req.ID, JSONRPCErrorMethodNotFound); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	rawIP := strings.SplitN(ms.Request.RemoteAddr, ":", 2)
	clientIP := net.ParseIP(rawIP[0])

	resp, err := s.handleRequest(req, clientIP != nil && clientIP.IsLoopback())
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Msg("method failed")
		if err := sendError(ms, *req.ID, JSONRPCErrorServerError); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	if err := sendResponse(ms, *req.ID, resp); err != nil {
		log.Error().Err(err).Msg("error sending response")
	}
}

func (s *Server) handleSessionsGet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"sessions": s.sessions.Sessions(),
	}); err != nil {
		log.Error().Err(err).Msg("writing sessions response")
	}
}

func (s *Server) handleSessionsPut(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Warn().Err(err).Msg("closing request body")
		}
	}()

	var body bytes.Buffer
	if _, err := body.ReadFrom(r.Body); err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	sessions, err := sessiondb.Decode(body.Bytes())
	if err != nil {
		var verr *sessiondb.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "invalid sessions document", http.StatusBadRequest)
		return
	}

	if err := s.sessions.Replace(r.Context(), sessions); err != nil {
		log.Error().Err(err).Msg("replacing sessions over http")
		http.Error(w, "failed to store sessions", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionByID(id string) (session.RoastSession, bool) {
	for _, sess := range s.sessions.Sessions() {
		if sess.ID == id {
			return sess, true
		}
	}
	return session.RoastSession{}, false
}

func (s *Server) handleSessionExportCSV(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionByID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "roast-"+sess.ID+".csv"))
	if err := export.CSV(w, &sess); err != nil {
		log.Error().Err(err).Msg("exporting session csv")
	}
}

func (s *Server) handleSessionExportHTML(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionByID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.HTMLReport(w, &sess); err != nil {
		log.Error().Err(err).Msg("exporting session report")
	}
}

// Start serves the API until ctx is cancelled. It blocks.
func (s *Server) Start(ctx context.Context, notifications <-chan models.Notification) error {
	s.baseCtx = ctx

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(middleware.Timeout(config.APIRequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins(),
		AllowedMethods: []string{"GET", "PUT"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.melody = melody.New()
	s.melody.Upgrader.CheckOrigin = func(_ *http.Request) bool { return true }
	s.melody.HandleConnect(s.replayToSession)
	s.melody.HandleMessage(s.handleWSMessage)
	go s.broadcastNotifications(ctx, notifications)

	r.Get("/api", func(w http.ResponseWriter, r *http.Request) {
		if err := s.melody.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})
	r.Get("/api/sessions", s.handleSessionsGet)
	r.Put("/api/sessions", s.handleSessionsPut)
	r.Get("/api/sessions/{id}/export.csv", s.handleSessionExportCSV)
	r.Get("/api/sessions/{id}/export.html", s.handleSessionExportHTML)

	addr := net.JoinHostPort(s.cfg.APIListen(), strconv.Itoa(s.cfg.APIPort()))
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("api server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down api server: %w", err)
		}
		if err := s.melody.Close(); err != nil {
			log.Warn().Err(err).Msg("closing websocket sessions")
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting http server: %w", err)
		}
		return nil
	}
}
