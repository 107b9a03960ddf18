// Copyright 2026 Datamere Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/datamere/ecosearch/ingest"
	"github.com/datamere/ecosearch/search"
	"github.com/datamere/ecosearch/storage"
)

// Server serves the HTTP API over the retrieval service, the dataset
// repository and the batch ingestion runner.
type Server struct {
	app       *fiber.App
	retrieval *search.Service
	datasets  storage.DatasetRepository
	runner    *ingest.Runner
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger.With("component", "server")
	}
}

// New wires the HTTP API. The ingestion runner is optional; without one the
// ingest endpoint reports the feature as disabled.
func New(retrieval *search.Service, datasets storage.DatasetRepository, runner *ingest.Runner, opts ...Option) *Server {
	s := &Server{
		retrieval: retrieval,
		datasets:  datasets,
		runner:    runner,
		logger:    slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "ecosearch",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	s.app.Use(recover.New())
	s.app.Use(fiberlogger.New())

	s.register(s.app.Group("/api"))
	return s
}

func (s *Server) register(api fiber.Router) {
	api.Get("/health", s.health)
	api.Post("/search", s.search)
	api.Post("/chat/ask", s.ask)
	api.Get("/datasets/:id", s.getDataset)
	api.Get("/datasets/:id/files", s.listFiles)
	api.Post("/ingest", s.ingestBatch)
}

// Listen blocks serving the API on the given address.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http api listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy", "app": "ecosearch"})
}
