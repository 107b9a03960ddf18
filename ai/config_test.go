package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	assert.Equal(t, 384, cfg.Dimensions)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://inference:9100"),
		WithEmbeddingModel("all-MiniLM-L6-v2"),
		WithChatModel("gpt-4o-mini"),
		WithDimensions(768),
	)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://inference:9100/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://inference:9100/v1", cfg.ChatHost)
	assert.Equal(t, 768, cfg.Dimensions)
}

func TestConfig_Normalize(t *testing.T) {
	cfg := NewConfig(WithEmbeddingHost("http://a/"), WithChatHost("http://b/v1"))
	cfg.Normalize()

	assert.Equal(t, "http://a/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://b/v1", cfg.ChatHost)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty embedding host", mutate: func(c *Config) { c.EmbeddingHost = "" }},
		{name: "empty chat host", mutate: func(c *Config) { c.ChatHost = "" }},
		{name: "empty embedding model", mutate: func(c *Config) { c.EmbeddingModel = "" }},
		{name: "empty chat model", mutate: func(c *Config) { c.ChatModel = "" }},
		{name: "zero dimensions", mutate: func(c *Config) { c.Dimensions = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
