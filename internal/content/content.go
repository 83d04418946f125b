// Package content generates file payloads with known compressibility.
//
// Two strategies exist: Incompressible emits uniformly random bytes and
// exercises the worst case of a compressing filesystem, Compressible emits
// hexadecimal digit characters only and exercises the best case. Both are
// driven by the caller's random source so a seeded run is reproducible.
package content

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/ivoronin/randtree/internal/types"
)

// Kind selects a content generator.
type Kind int

const (
	Incompressible Kind = iota
	Compressible
)

// chunkSize is the streaming buffer size for Write. Must stay a multiple of 4
// so that chunked output matches Bytes draw for draw.
const chunkSize = 1 << 20

const hexDigits = "0123456789abcdefABCDEF"

// fillFunc fills buf from r.
type fillFunc func(r *rand.Rand, buf []byte)

var generators = [...]struct {
	name    string
	aliases []string
	fill    fillFunc
}{
	Incompressible: {"incompressible", []string{"uncompressable_bytes", "uncompressible"}, fillIncompressible},
	Compressible:   {"compressible", []string{"compressable_bytes"}, fillCompressible},
}

// Kinds returns every known kind name.
func Kinds() []string {
	out := make([]string, len(generators))
	for i, g := range generators {
		out[i] = g.name
	}
	return out
}

// ParseKind resolves a kind name or alias.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, g := range generators {
		if s == g.name {
			return Kind(k), nil
		}
		for _, a := range g.aliases {
			if s == a {
				return Kind(k), nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unknown file content %q (want one of %s)",
		types.ErrInvalidArgument, s, strings.Join(Kinds(), ", "))
}

func (k Kind) valid() bool { return k >= 0 && int(k) < len(generators) }

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return generators[k].name
}

// Set implements pflag.Value.
func (k *Kind) Set(s string) error {
	v, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Type implements pflag.Value.
func (k *Kind) Type() string { return "content" }

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("%w: unknown content kind %d", types.ErrInvalidArgument, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	return k.Set(string(b))
}

// Bytes returns exactly n bytes of content of the given kind.
func Bytes(k Kind, r *rand.Rand, n int) []byte {
	buf := make([]byte, n)
	generators[k].fill(r, buf)
	return buf
}

// Write streams exactly n bytes of content of the given kind to w.
// The bytes are identical to Bytes(k, r, n) for the same random state.
func Write(w io.Writer, k Kind, r *rand.Rand, n int64) error {
	if !k.valid() {
		return fmt.Errorf("%w: unknown content kind %d", types.ErrInvalidArgument, int(k))
	}
	fill := generators[k].fill

	bufSize := int64(chunkSize)
	if n < bufSize {
		bufSize = n
	}
	buf := make([]byte, bufSize)

	for remaining := n; remaining > 0; {
		chunk := buf
		if remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}
		fill(r, chunk)
		if _, err := w.Write(chunk); err != nil {
			return err
		}
		remaining -= int64(len(chunk))
	}
	return nil
}

// fillIncompressible draws 32 bits at a time and emits them little-endian.
func fillIncompressible(r *rand.Rand, buf []byte) {
	for i := 0; i < len(buf); i += 4 {
		v := r.Uint32()
		for shift := 0; shift < 4 && i+shift < len(buf); shift++ {
			buf[i+shift] = byte(v >> (8 * shift))
		}
	}
}

func fillCompressible(r *rand.Rand, buf []byte) {
	for i := range buf {
		buf[i] = hexDigits[r.IntN(len(hexDigits))]
	}
}
