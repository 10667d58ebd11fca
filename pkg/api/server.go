/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api exposes the admin HTTP surface: job status, manual fetch
// trigger, and the device catalog.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	sdnhttp "github.com/carverauto/sdnsync/pkg/http"
	"github.com/carverauto/sdnsync/pkg/logger"
	"github.com/carverauto/sdnsync/pkg/models"
	"github.com/carverauto/sdnsync/pkg/sync"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Triggerer starts a fetch/sync cycle on demand.
type Triggerer interface {
	Trigger(ctx context.Context) error
}

// Server is the admin API server. All handlers read tracker snapshots; none
// of them ever blocks on a running job.
type Server struct {
	addr    string
	apiKey  string
	tracker *sync.Tracker
	service Triggerer
	store   sync.DeviceStore
	logger  logger.Logger
	router  *mux.Router
	httpSrv *http.Server
}

// NewServer builds the admin API around the tracker, the sync service, and
// the device store.
func NewServer(addr, apiKey string, tracker *sync.Tracker, service Triggerer, store sync.DeviceStore, log logger.Logger) *Server {
	s := &Server{
		addr:    addr,
		apiKey:  apiKey,
		tracker: tracker,
		service: service,
		store:   store,
		logger:  log.WithComponent("api"),
		router:  mux.NewRouter(),
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(sdnhttp.CommonMiddleware(s.logger))
	s.router.Use(sdnhttp.APIKeyMiddleware(s.apiKey, s.logger))

	s.router.HandleFunc("/api/status", s.getStatus).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/fetch", s.postFetch).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/api/devices", s.getDevices).Methods(http.MethodGet, http.MethodOptions)
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start begins serving. It blocks until the listener fails or Stop is called.
func (s *Server) Start(_ context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	s.logger.Info().Str("addr", s.addr).Msg("Admin API listening")

	err := s.httpSrv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, defaultShutdownTimeout)
	defer cancel()

	return s.httpSrv.Shutdown(shutdownCtx)
}

// statusPayload is the wire form of the job status: the snapshot plus the
// phase rendered as a string.
type statusPayload struct {
	models.SyncJobStatus
	Phase string `json:"phase"`
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.tracker.Snapshot()

	s.writeJSON(w, http.StatusOK, statusPayload{
		SyncJobStatus: snap,
		Phase:         snap.Phase.String(),
	})
}

func (s *Server) postFetch(w http.ResponseWriter, r *http.Request) {
	err := s.service.Trigger(r.Context())
	if err != nil {
		if errors.Is(err, sync.ErrJobNotReady) {
			s.writeJSON(w, http.StatusConflict, map[string]string{
				"error": "a fetch/sync job is already running",
			})

			return
		}

		s.logger.Error().Err(err).Msg("Failed to trigger fetch")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})

		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) getDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list devices")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})

		return
	}

	if devices == nil {
		devices = []models.LocalDevice{}
	}

	s.writeJSON(w, http.StatusOK, devices)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}
