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

package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/carverauto/sdnsync/pkg/api"
	"github.com/carverauto/sdnsync/pkg/config"
	"github.com/carverauto/sdnsync/pkg/lifecycle"
	"github.com/carverauto/sdnsync/pkg/logger"
	"github.com/carverauto/sdnsync/pkg/sdn"
	"github.com/carverauto/sdnsync/pkg/store"
	"github.com/carverauto/sdnsync/pkg/sync"
)

func main() {
	configPath := flag.String("config", "/etc/sdnsync/sdnsync.json", "Path to config file")
	flag.Parse()

	// Optional .env for local development; credentials may come from here.
	_ = godotenv.Load()

	ctx := context.Background()

	var cfg sync.Config

	cfgLoader := config.NewConfig(nil)
	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	mainLogger, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	deviceStore, err := store.New(cfg.DBPath)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Failed to open device store")
	}
	defer func() {
		if err := deviceStore.Close(); err != nil {
			mainLogger.Error().Err(err).Msg("Failed to close device store")
		}
	}()

	controller := sdn.NewCatalystClient(
		controllerEndpoint(cfg.Controller.Hostname),
		cfg.Controller.APIVersion,
		cfg.Controller.Username(),
		cfg.Controller.Password(),
		cfg.Controller.InsecureSkipVerify,
		mainLogger,
	)

	tracker := sync.NewTracker()
	syncService := sync.NewService(&cfg, controller, deviceStore, tracker, nil, mainLogger)
	apiServer := api.NewServer(cfg.ListenAddr, cfg.APIKey, tracker, syncService, deviceStore, mainLogger)

	if err := lifecycle.Run(ctx, mainLogger, syncService, apiServer); err != nil {
		mainLogger.Fatal().Err(err).Msg("Service failed")
	}
}

// controllerEndpoint normalizes a bare hostname into an HTTPS base URL.
func controllerEndpoint(hostname string) string {
	if strings.Contains(hostname, "://") {
		return hostname
	}

	return "https://" + hostname
}
