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
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/datamere/ecosearch/ai"
	"github.com/datamere/ecosearch/core"
	"github.com/datamere/ecosearch/search"
	"github.com/datamere/ecosearch/storage"
)

const defaultSearchLimit = 10

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type askRequest struct {
	Question string        `json:"question"`
	History  []ai.ChatTurn `json:"history"`
	Limit    int           `json:"limit"`
}

type ingestRequest struct {
	FileIdentifiers []string `json:"fileIdentifiers"`
}

func (s *Server) search(c fiber.Ctx) error {
	var body searchRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(body.Query) == "" {
		return badRequest(c, "query is required")
	}
	if body.Limit <= 0 {
		body.Limit = defaultSearchLimit
	}

	hits, err := s.retrieval.Search(c.Context(), body.Query, body.Limit)
	if err != nil {
		return s.retrievalError(c, err)
	}

	results := make([]fiber.Map, len(hits))
	for i, hit := range hits {
		results[i] = fiber.Map{
			"fileIdentifier": hit.Dataset.FileIdentifier,
			"title":          hit.Dataset.Title,
			"abstract":       hit.Dataset.Abstract,
			"authors":        hit.Dataset.Authors,
			"keywords":       hit.Dataset.Keywords,
			"resourceUrl":    hit.Dataset.ResourceURL,
			"score":          hit.Score,
			"snippet":        hit.Snippet,
		}
	}
	return c.JSON(fiber.Map{"results": results})
}

func (s *Server) ask(c fiber.Ctx) error {
	var body askRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(body.Question) == "" {
		return badRequest(c, "question is required")
	}
	if body.Limit <= 0 {
		body.Limit = defaultSearchLimit
	}

	answer, err := s.retrieval.Ask(c.Context(), body.Question, body.History, body.Limit)
	if err != nil {
		return s.retrievalError(c, err)
	}

	sources := make([]fiber.Map, len(answer.Sources))
	for i, source := range answer.Sources {
		files := make([]fiber.Map, len(source.Files))
		for j, file := range source.Files {
			files[j] = fiber.Map{"name": file.Name, "path": file.Path}
		}
		sources[i] = fiber.Map{
			"fileIdentifier": source.FileIdentifier,
			"title":          source.Title,
			"files":          files,
		}
	}
	return c.JSON(fiber.Map{"answer": answer.Text, "sources": sources})
}

func (s *Server) getDataset(c fiber.Ctx) error {
	dataset, err := s.resolveDataset(c)
	if err != nil {
		return s.datasetError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":             strconv.FormatUint(uint64(dataset.Id), 10),
		"fileIdentifier": dataset.FileIdentifier,
		"title":          dataset.Title,
		"abstract":       dataset.Abstract,
		"authors":        dataset.Authors,
		"keywords":       dataset.Keywords,
		"resourceUrl":    dataset.ResourceURL,
		"publishedDate":  dataset.PublishedDate,
		"ingestedAt":     dataset.IngestedAt,
		"recordCount":    len(dataset.Records),
		"fileCount":      len(dataset.Files),
	})
}

func (s *Server) listFiles(c fiber.Ctx) error {
	dataset, err := s.resolveDataset(c)
	if err != nil {
		return s.datasetError(c, err)
	}

	files := make([]fiber.Map, len(dataset.Files))
	for i, file := range dataset.Files {
		files[i] = fiber.Map{
			"name":         file.FileName,
			"path":         file.StoragePath,
			"download_url": file.DownloadURL,
		}
	}
	return c.JSON(fiber.Map{"files": files})
}

func (s *Server) ingestBatch(c fiber.Ctx) error {
	if s.runner == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": "ingestion disabled"})
	}

	var body ingestRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	results := s.runner.Run(c.Context(), body.FileIdentifiers)
	out := make([]fiber.Map, len(results))
	for i, result := range results {
		entry := fiber.Map{
			"fileIdentifier": result.FileIdentifier,
			"status":         result.Status.String(),
			"vectors":        result.VectorCount,
			"files":          result.FileCount,
		}
		if result.Err != nil {
			entry["error"] = result.Err.Error()
		}
		out[i] = entry
	}
	return c.JSON(fiber.Map{"results": out})
}

// resolveDataset accepts either the numeric internal id or the catalogue
// file identifier in the :id segment.
func (s *Server) resolveDataset(c fiber.Ctx) (*core.Dataset, error) {
	param := c.Params("id")
	if id, err := strconv.ParseUint(param, 10, 64); err == nil {
		dataset, err := s.datasets.GetDataset(c.Context(), core.ID(id))
		if err == nil {
			return dataset, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}
	return s.datasets.GetDatasetByFileIdentifier(c.Context(), param)
}

func (s *Server) retrievalError(c fiber.Ctx, err error) error {
	if errors.Is(err, search.ErrAssistantUnavailable) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "assistant unavailable"})
	}
	s.logger.Error("retrieval request failed", "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func (s *Server) datasetError(c fiber.Ctx, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "dataset not found"})
	}
	s.logger.Error("dataset lookup failed", "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func badRequest(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}
