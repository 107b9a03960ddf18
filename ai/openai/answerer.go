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


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/datamere/ecosearch/ai"
)

// jsonAttempts bounds re-asks when the model emits unparseable JSON.
const jsonAttempts = 3

// Answerer implements ai.Answerer using OpenAI-compatible chat APIs.
type Answerer struct {
	client llms.Model
	logger *slog.Logger
}

// newAnswerer is the internal constructor returning the concrete type,
// used by Provider to manage the instance.
func newAnswerer(config *ai.Config) (*Answerer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Answerer{
		client: client,
		logger: slog.Default().With("component", "openai-answerer"),
	}, nil
}

// NewAnswerer creates an answerer from the configuration.
//
// Returns ai.Answerer interface to enforce abstraction.
func NewAnswerer(config *ai.Config) (ai.Answerer, error) {
	return newAnswerer(config)
}

// GenerateAnswer synthesizes a grounded answer from the snippets.
func (a *Answerer) GenerateAnswer(ctx context.Context, question string, snippets []string) (string, error) {
	var prompt strings.Builder
	prompt.WriteString("CONTEXT:\n")
	for i, snippet := range snippets {
		fmt.Fprintf(&prompt, "[%d] %s\n\n", i+1, snippet)
	}
	prompt.WriteString("QUESTION: ")
	prompt.WriteString(question)

	content := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextPart(answerSystemPrompt)}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextPart(prompt.String())}},
	}

	response, err := a.client.GenerateContent(ctx, content, llms.WithTemperature(0.2))
	if err != nil {
		a.logger.Error("failed to generate answer", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", fmt.Errorf("answerer: model returned no choices")
	}
	return strings.TrimSpace(response.Choices[0].Content), nil
}

// RewriteQuery folds conversation history into a standalone search query.
// When there is no history the question is returned as-is.
func (a *Answerer) RewriteQuery(ctx context.Context, question string, history []ai.ChatTurn) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	var prompt strings.Builder
	prompt.WriteString("HISTORY:\n")
	for _, turn := range history {
		fmt.Fprintf(&prompt, "%s: %s\n", turn.Role, turn.Content)
	}
	prompt.WriteString("\nLATEST QUESTION: ")
	prompt.WriteString(question)

	var decoded struct {
		Query string `json:"query"`
	}
	if err := a.generateJSON(ctx, rewriteSystemPrompt, prompt.String(), &decoded); err != nil {
		return "", err
	}
	if strings.TrimSpace(decoded.Query) == "" {
		return question, nil
	}
	return decoded.Query, nil
}

// ClassifyGranularity decides whether a question targets datasets or the
// documents inside them. Unrecognized labels fall back to datasets.
func (a *Answerer) ClassifyGranularity(ctx context.Context, question string) (ai.Granularity, error) {
	var decoded struct {
		Granularity string `json:"granularity"`
	}
	if err := a.generateJSON(ctx, granularitySystemPrompt, scrubString(question), &decoded); err != nil {
		return 0, err
	}

	switch strings.ToLower(strings.TrimSpace(decoded.Granularity)) {
	case "document":
		return ai.GranularityDocument, nil
	case "dataset":
		return ai.GranularityDataset, nil
	default:
		a.logger.Warn("unrecognized granularity label", "label", decoded.Granularity)
		return ai.GranularityDataset, nil
	}
}

// generateJSON runs a JSON-mode completion and decodes it into out,
// retrying when the model emits malformed JSON.
func (a *Answerer) generateJSON(ctx context.Context, system, user string, out any) error {
	content := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextPart(system)}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextPart(user)}},
	}

	var lastErr error
	for attempt := 0; attempt < jsonAttempts; attempt++ {
		response, err := a.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			a.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return err
		}
		if len(response.Choices) < 1 {
			return fmt.Errorf("answerer: model returned no choices")
		}

		text := repairJSON(response.Choices[0].Content)
		if err := json.Unmarshal([]byte(text), out); err != nil {
			lastErr = err
			a.logger.Warn("error parsing model response",
				"attempt", attempt+1,
				"response", text,
				"err", err)
			continue
		}
		return nil
	}

	a.logger.Error("failed to parse model response after retries", "err", lastErr)
	return lastErr
}
