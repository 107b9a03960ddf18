// Package openai implements the ai interfaces against OpenAI-compatible
// HTTP services (OpenAI, Ollama, LocalAI, vLLM) via langchaingo.
package openai
