package minilm

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datamere/ecosearch/core"
)

// fakeSession returns a fixed embedding for every token position so the
// pooling math is exactly predictable.
type fakeSession struct {
	dim         int
	perToken    []float32
	gotInputs   [][]int64
	gotMasks    [][]int64
	gotSegments [][]int64
}

func (f *fakeSession) Run(_ context.Context, inputIDs, attentionMask, tokenTypeIDs [][]int64) ([][][]float32, error) {
	f.gotInputs = inputIDs
	f.gotMasks = attentionMask
	f.gotSegments = tokenTypeIDs

	out := make([][][]float32, len(inputIDs))
	for i, row := range inputIDs {
		tokens := make([][]float32, len(row))
		for j := range tokens {
			tokens[j] = append([]float32(nil), f.perToken...)
		}
		out[i] = tokens
	}
	return out, nil
}

func (f *fakeSession) Dimensions() int { return f.dim }
func (f *fakeSession) Close() error    { return nil }

func testVocab() map[string]int64 {
	vocab := map[string]int64{
		"[PAD]": 0, "[UNK]": 1, "[CLS]": 2, "[SEP]": 3,
	}
	id := int64(4)
	for _, token := range []string{"rain", "##fall", "soil", "survey", "daily", ".", "the"} {
		vocab[token] = id
		id++
	}
	return vocab
}

func newTestEngine(t *testing.T, session Session, opts ...EngineOption) *Engine {
	t.Helper()
	engine, err := NewEngine(session, testVocab(), opts...)
	require.NoError(t, err)
	return engine
}

func TestMeanPool_IgnoresMaskedPositions(t *testing.T) {
	rows := [][]float32{
		{2, 4},
		{4, 8},
		{100, 100},
		{100, 100},
	}
	mask := []int64{1, 1, 0, 0}

	got, err := meanPool(rows, mask, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 6}, got, "padded positions must not contribute")
}

func TestMeanPool_AllOnesMaskIsArithmeticMean(t *testing.T) {
	rows := [][]float32{
		{1, 2},
		{3, 4},
		{5, 12},
	}
	mask := []int64{1, 1, 1}

	got, err := meanPool(rows, mask, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 6}, got)
}

func TestMeanPool_AllMasked(t *testing.T) {
	_, err := meanPool([][]float32{{1, 2}}, []int64{0}, 2)
	assert.ErrorIs(t, err, core.ErrEmptyText)
}

func TestMeanPool_DimensionMismatch(t *testing.T) {
	_, err := meanPool([][]float32{{1, 2, 3}}, []int64{1}, 2)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestNormalize_UnitLength(t *testing.T) {
	vector := []float32{3, 4}
	normalize(vector)

	assert.InDelta(t, 0.6, vector[0], 1e-6)
	assert.InDelta(t, 0.8, vector[1], 1e-6)

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestNormalize_NearZeroUnchanged(t *testing.T) {
	vector := []float32{0, 0, 0}
	normalize(vector)
	assert.Equal(t, []float32{0, 0, 0}, vector)
}

func TestSplitWords(t *testing.T) {
	chunks := splitWords("a b c d e", 2)
	assert.Equal(t, []string{"a b", "c d", "e"}, chunks)

	assert.Nil(t, splitWords("   ", 2))
}

func TestEngine_EmbedText(t *testing.T) {
	session := &fakeSession{dim: 2, perToken: []float32{3, 4}}
	engine := newTestEngine(t, session)

	vector, err := engine.EmbedText(context.Background(), "daily rainfall survey")
	require.NoError(t, err)
	require.Len(t, vector, 2)

	// Every token embeds to (3,4), so pooling keeps (3,4) and the
	// normalized result is the (0.6, 0.8) unit vector.
	assert.InDelta(t, 0.6, vector[0], 1e-6)
	assert.InDelta(t, 0.8, vector[1], 1e-6)

	// Single-sequence inputs carry an all-zero segment row per chunk.
	require.Len(t, session.gotSegments, len(session.gotInputs))
	for _, row := range session.gotSegments {
		require.Len(t, row, len(session.gotInputs[0]))
		for _, segment := range row {
			assert.Zero(t, segment)
		}
	}
}

func TestEngine_EmbedText_Empty(t *testing.T) {
	engine := newTestEngine(t, &fakeSession{dim: 2, perToken: []float32{1, 1}})

	_, err := engine.EmbedText(context.Background(), "  \n ")
	assert.ErrorIs(t, err, core.ErrEmptyText)
}

func TestEngine_LongTextBatchesChunks(t *testing.T) {
	session := &fakeSession{dim: 2, perToken: []float32{1, 0}}
	engine := newTestEngine(t, session, WithChunkWords(3))

	text := strings.Repeat("soil survey daily ", 3) // 9 words, 3 chunks
	_, err := engine.EmbedText(context.Background(), text)
	require.NoError(t, err)

	assert.Len(t, session.gotInputs, 3, "chunks must go through the model as one batch")
}

func TestEngine_EmbedTexts_PreservesOrder(t *testing.T) {
	session := &fakeSession{dim: 2, perToken: []float32{1, 0}}
	engine := newTestEngine(t, session)

	vectors, err := engine.EmbedTexts(context.Background(), []string{"rainfall", "soil"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	for _, vector := range vectors {
		assert.Len(t, vector, 2)
	}
}
