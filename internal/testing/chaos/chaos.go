// Package chaos corrupts valid type signatures for chaos tests of the
// parser.
//
// Besides byte-level damage, the Corruptor knows the signature grammar's
// structural characters and prefers mutations that keep the input looking
// almost right: an unbalanced bracket, a stray quote, a missing comma.
package chaos

import (
	"math/rand"
	"unicode/utf8"
)

// Corruptor applies random mutations from a seeded source, so a failing
// corpus can be regenerated from its seed.
type Corruptor struct {
	rng *rand.Rand
}

// NewCorruptor creates a new Corruptor with the given seed.
func NewCorruptor(seed int64) *Corruptor {
	return &Corruptor{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Mutation is a kind of corruption.
type Mutation int

const (
	ByteFlip Mutation = iota
	ByteDelete
	ByteInsert
	Utf8Corrupt
	Truncation
	StructuralDelete
	StructuralInsert
	SpanDuplicate
	CaseFlip

	mutationCount
)

// structural lists the bytes the signature grammar assigns meaning to.
const structural = "()<>,\"{}[]:. "

// Corrupt applies one random mutation to a copy of input.
func (c *Corruptor) Corrupt(input []byte) []byte {
	if len(input) == 0 {
		return c.insertRandomBytes(nil)
	}
	return c.Apply(Mutation(c.rng.Intn(int(mutationCount))), input)
}

// Apply applies mutation m to a copy of input.
func (c *Corruptor) Apply(m Mutation, input []byte) []byte {
	result := make([]byte, len(input))
	copy(result, input)
	if len(result) == 0 {
		return result
	}

	switch m {
	case ByteFlip:
		return c.byteFlip(result)
	case ByteDelete:
		return c.deleteAt(result, c.rng.Intn(len(result)))
	case ByteInsert:
		return c.insertAt(result, c.rng.Intn(len(result)+1), byte(c.rng.Intn(256)))
	case Utf8Corrupt:
		return c.utf8Corrupt(result)
	case Truncation:
		return c.truncate(result)
	case StructuralDelete:
		return c.structuralDelete(result)
	case StructuralInsert:
		return c.insertAt(result, c.rng.Intn(len(result)+1), structural[c.rng.Intn(len(structural))])
	case SpanDuplicate:
		return c.spanDuplicate(result)
	case CaseFlip:
		return c.caseFlip(result)
	default:
		return result
	}
}

// CorruptN applies n random corruptions to the input.
func (c *Corruptor) CorruptN(input []byte, n int) []byte {
	result := make([]byte, len(input))
	copy(result, input)

	for i := 0; i < n; i++ {
		result = c.Corrupt(result)
	}

	return result
}

// GenerateCorpus returns count corrupted variants of valid, each with one
// to five mutations.
func (c *Corruptor) GenerateCorpus(valid []byte, count int) [][]byte {
	corpus := make([][]byte, count)
	for i := 0; i < count; i++ {
		intensity := c.rng.Intn(5) + 1
		corpus[i] = c.CorruptN(valid, intensity)
	}
	return corpus
}

func (c *Corruptor) byteFlip(b []byte) []byte {
	n := c.rng.Intn(3) + 1
	for i := 0; i < n; i++ {
		idx := c.rng.Intn(len(b))
		b[idx] ^= byte(1 << c.rng.Intn(8))
	}
	return b
}

func (c *Corruptor) deleteAt(b []byte, idx int) []byte {
	if len(b) <= 1 {
		return b
	}
	return append(b[:idx], b[idx+1:]...)
}

func (c *Corruptor) insertAt(b []byte, idx int, v byte) []byte {
	out := make([]byte, 0, len(b)+1)
	out = append(out, b[:idx]...)
	out = append(out, v)
	return append(out, b[idx:]...)
}

func (c *Corruptor) utf8Corrupt(b []byte) []byte {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size > 1 && c.rng.Float64() < 0.5 {
			b[i] = byte(c.rng.Intn(256))
		}
		i += size
	}
	// Drop in a lone lead byte.
	idx := c.rng.Intn(len(b))
	b[idx] = 0xC0 | byte(c.rng.Intn(0x20))
	return b
}

func (c *Corruptor) truncate(b []byte) []byte {
	if len(b) <= 1 {
		return b
	}
	return b[:c.rng.Intn(len(b)-1)+1]
}

// structuralDelete removes one structural byte, falling back to a random
// byte when there is none.
func (c *Corruptor) structuralDelete(b []byte) []byte {
	var positions []int
	for i, v := range b {
		if isStructural(v) {
			positions = append(positions, i)
		}
	}
	if len(positions) == 0 {
		return c.deleteAt(b, c.rng.Intn(len(b)))
	}
	return c.deleteAt(b, positions[c.rng.Intn(len(positions))])
}

// spanDuplicate copies a random span to a random position.
func (c *Corruptor) spanDuplicate(b []byte) []byte {
	start := c.rng.Intn(len(b))
	end := start + c.rng.Intn(len(b)-start) + 1
	span := append([]byte(nil), b[start:end]...)
	at := c.rng.Intn(len(b) + 1)

	out := make([]byte, 0, len(b)+len(span))
	out = append(out, b[:at]...)
	out = append(out, span...)
	return append(out, b[at:]...)
}

func (c *Corruptor) caseFlip(b []byte) []byte {
	for i, v := range b {
		if c.rng.Intn(2) == 0 {
			continue
		}
		switch {
		case v >= 'a' && v <= 'z':
			b[i] = v - 'a' + 'A'
		case v >= 'A' && v <= 'Z':
			b[i] = v - 'A' + 'a'
		}
	}
	return b
}

func (c *Corruptor) insertRandomBytes(input []byte) []byte {
	n := c.rng.Intn(10) + 1
	bytes := make([]byte, n)
	c.rng.Read(bytes)
	return append(input, bytes...)
}

func isStructural(v byte) bool {
	for i := 0; i < len(structural); i++ {
		if structural[i] == v {
			return true
		}
	}
	return false
}
