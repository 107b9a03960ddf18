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


package minilm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Special token names used by BERT-family vocabularies.
const (
	tokenCLS = "[CLS]"
	tokenSEP = "[SEP]"
	tokenUNK = "[UNK]"
	tokenPAD = "[PAD]"
)

// maxWordChars bounds WordPiece lookups; longer words map to [UNK].
const maxWordChars = 100

// Tokenizer is a lowercase WordPiece tokenizer over a fixed vocabulary.
type Tokenizer struct {
	vocab map[string]int64
	cls   int64
	sep   int64
	unk   int64
	pad   int64
}

// NewTokenizer builds a tokenizer from a vocabulary map. The vocabulary
// must contain the four BERT special tokens.
func NewTokenizer(vocab map[string]int64) (*Tokenizer, error) {
	t := &Tokenizer{vocab: vocab}
	for _, special := range []struct {
		name string
		dst  *int64
	}{
		{tokenCLS, &t.cls},
		{tokenSEP, &t.sep},
		{tokenUNK, &t.unk},
		{tokenPAD, &t.pad},
	} {
		id, ok := vocab[special.name]
		if !ok {
			return nil, fmt.Errorf("vocabulary is missing %s", special.name)
		}
		*special.dst = id
	}
	return t, nil
}

// LoadVocabulary reads a one-token-per-line vocabulary file where the line
// number is the token id, the layout HuggingFace ships for MiniLM.
func LoadVocabulary(r io.Reader) (map[string]int64, error) {
	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(r)
	var id int64
	for scanner.Scan() {
		vocab[strings.TrimRight(scanner.Text(), "\r\n")] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vocabulary read: %w", err)
	}
	return vocab, nil
}

// Encode converts text into fixed-length id, attention-mask and segment
// rows. The sequence is [CLS] tokens... [SEP] padded with [PAD] to
// maxTokens; token positions beyond the window are truncated, keeping room
// for [SEP]. Every input is a single sequence, so the segment row is all
// zeros, but BERT-family checkpoints still expect it as a model input.
func (t *Tokenizer) Encode(text string, maxTokens int) (ids, mask, segments []int64) {
	ids = make([]int64, 0, maxTokens)
	ids = append(ids, t.cls)

	for _, word := range basicTokenize(text) {
		for _, id := range t.wordpiece(word) {
			if len(ids) == maxTokens-1 {
				break
			}
			ids = append(ids, id)
		}
		if len(ids) == maxTokens-1 {
			break
		}
	}
	ids = append(ids, t.sep)

	mask = make([]int64, maxTokens)
	for i := range ids {
		mask[i] = 1
	}
	for len(ids) < maxTokens {
		ids = append(ids, t.pad)
	}
	segments = make([]int64, maxTokens)
	return ids, mask, segments
}

// basicTokenize lowercases, splits on whitespace and breaks punctuation
// into standalone tokens.
func basicTokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// wordpiece greedily matches the longest vocabulary prefix, then continues
// with "##"-prefixed subword pieces. Words with no match become [UNK].
func (t *Tokenizer) wordpiece(word string) []int64 {
	runes := []rune(word)
	if len(runes) > maxWordChars {
		return []int64{t.unk}
	}

	var pieces []int64
	start := 0
	for start < len(runes) {
		end := len(runes)
		var matched int64 = -1
		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := t.vocab[piece]; ok {
				matched = id
				break
			}
			end--
		}
		if matched < 0 {
			return []int64{t.unk}
		}
		pieces = append(pieces, matched)
		start = end
	}
	return pieces
}
