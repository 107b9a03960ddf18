package minilm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenizer_MissingSpecials(t *testing.T) {
	_, err := NewTokenizer(map[string]int64{"[CLS]": 0})
	assert.Error(t, err)
}

func TestEncode_Shape(t *testing.T) {
	tokenizer, err := NewTokenizer(testVocab())
	require.NoError(t, err)

	ids, mask, segments := tokenizer.Encode("Rainfall survey.", 16)
	require.Len(t, ids, 16)
	require.Len(t, mask, 16)
	require.Len(t, segments, 16)
	for _, segment := range segments {
		assert.EqualValues(t, 0, segment, "single-sequence inputs use segment 0 throughout")
	}

	vocab := testVocab()
	// [CLS] rain ##fall survey . [SEP] then padding
	want := []int64{vocab["[CLS]"], vocab["rain"], vocab["##fall"], vocab["survey"], vocab["."], vocab["[SEP]"]}
	assert.Equal(t, want, ids[:6])

	for i := range mask {
		if i < 6 {
			assert.EqualValues(t, 1, mask[i])
		} else {
			assert.EqualValues(t, 0, mask[i])
			assert.Equal(t, vocab["[PAD]"], ids[i])
		}
	}
}

func TestEncode_UnknownWord(t *testing.T) {
	tokenizer, err := NewTokenizer(testVocab())
	require.NoError(t, err)

	ids, _, _ := tokenizer.Encode("xylophone", 8)
	assert.Equal(t, testVocab()["[UNK]"], ids[1])
}

func TestEncode_TruncatesToWindow(t *testing.T) {
	tokenizer, err := NewTokenizer(testVocab())
	require.NoError(t, err)

	ids, mask, _ := tokenizer.Encode(strings.Repeat("survey ", 50), 8)
	require.Len(t, ids, 8)

	vocab := testVocab()
	assert.Equal(t, vocab["[SEP]"], ids[7], "window always ends with [SEP]")
	for _, m := range mask {
		assert.EqualValues(t, 1, m)
	}
}

func TestLoadVocabulary(t *testing.T) {
	vocab, err := LoadVocabulary(strings.NewReader("[PAD]\n[UNK]\n[CLS]\n[SEP]\nrain\n"))
	require.NoError(t, err)

	assert.EqualValues(t, 0, vocab["[PAD]"])
	assert.EqualValues(t, 4, vocab["rain"])
}
