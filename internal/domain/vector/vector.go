package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kailas-cloud/nobelidx/internal/domain"
)

// Dim is the fixed embedding length.
const Dim = 128

// FromName maps each code point of name to code/255, zero-filled to Dim and
// truncated beyond it. Code points above 255 clamp to 1 so every value stays in [0,1].
// No case folding or diacritic normalization is applied.
func FromName(name string) []float32 {
	v := make([]float32, Dim)
	i := 0
	for _, r := range name {
		if i == Dim {
			break
		}
		v[i] = float32(min(r, 255)) / 255
		i++
	}
	return v
}

// Encode serializes v as consecutive little-endian IEEE-754 float32 values.
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode is the inverse of Encode.
func Decode(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("encoded vector length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

// CharCodeEmbedder exposes FromName as a domain.Embedder.
type CharCodeEmbedder struct{}

// Embed never fails and reports no token usage.
func (CharCodeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: FromName(text)}, nil
}
