package shamir

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cyphar-go/paperback/pkg/config"
	"github.com/cyphar-go/paperback/pkg/gf32"
)

// Dealer mints and recovers Shards for a single secret. It has two possible
// internal representations — see NewDealer and RecoverDealer — but callers
// never need to know which one they hold.
//
// A freshly constructed Dealer keeps the explicit random polynomials it
// generated, so minting a shard is a direct evaluation. A Dealer rebuilt
// from a quorum of shards instead keeps the barycentric form of each
// chunk's interpolated polynomial (see pkg/gf32.Barycentric); it can still
// mint further shards (by evaluating at a new x) or recreate an existing
// one, it just does so by interpolation instead of direct evaluation.
type Dealer interface {
	// NextShard mints a shard at a freshly drawn, non-zero x value.
	NextShard() (Shard, error)
	// Shard evaluates the dealer at a specific x value. It returns
	// ok=false if x is zero, which can never be used as a shard's x-value
	// (it would directly expose each chunk's secret constant term).
	Shard(x gf32.Elem) (shard Shard, ok bool)
	// Secret returns the shared secret, reassembled from every chunk's
	// constant term and truncated to its original byte length.
	Secret() []byte
	// Threshold returns k, the number of shards required to recover.
	Threshold() uint32
}

// chunkBytes is the width of one Shamir chunk: one GF(2^32) element.
const chunkBytes = 4

// freshDealer holds explicit, randomly generated per-chunk polynomials.
type freshDealer struct {
	polys     []gf32.Polynomial
	threshold uint32
	secretLen uint64
}

// NewDealer splits secret into 4-byte chunks (zero-padding the final chunk
// if needed) and builds an independent degree-(threshold-1) random
// polynomial per chunk, with each chunk's constant term set to the chunk's
// bytes.
func NewDealer(threshold uint32, secret []byte) (Dealer, error) {
	if threshold < config.MinQuorumSize || threshold > config.MaxQuorumSize {
		return nil, fmt.Errorf("shamir: threshold must be between %d and %d, got %d",
			config.MinQuorumSize, config.MaxQuorumSize, threshold)
	}

	numChunks := (len(secret) + chunkBytes - 1) / chunkBytes
	if numChunks == 0 {
		numChunks = 1
	}

	polys := make([]gf32.Polynomial, numChunks)
	for i := range polys {
		poly, err := gf32.NewRandomPolynomial(int(threshold)-1, rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("shamir: generating chunk %d polynomial: %w", i, err)
		}
		start := i * chunkBytes
		end := start + chunkBytes
		if end > len(secret) {
			end = len(secret)
		}
		chunk, _ := gf32.FromBytesPartial(secret[start:end])
		poly.SetConstant(chunk)
		polys[i] = poly
	}

	return &freshDealer{polys: polys, threshold: threshold, secretLen: uint64(len(secret))}, nil
}

func (d *freshDealer) Threshold() uint32 { return d.threshold }

func (d *freshDealer) Secret() []byte {
	return assembleSecret(d.secretLen, func(i int) gf32.Elem { return d.polys[i].Constant() }, len(d.polys))
}

func (d *freshDealer) Shard(x gf32.Elem) (Shard, bool) {
	if x == gf32.Zero {
		return Shard{}, false
	}
	ys := make([]gf32.Elem, len(d.polys))
	for i, poly := range d.polys {
		ys[i] = poly.Evaluate(x)
	}
	return Shard{X: x, Ys: ys, Threshold: d.threshold, SecretLen: d.secretLen}, true
}

func (d *freshDealer) NextShard() (Shard, error) {
	x, err := randomNonZeroElem()
	if err != nil {
		return Shard{}, err
	}
	shard, _ := d.Shard(x)
	return shard, nil
}

// recoveredDealer holds the barycentric form of each chunk's interpolated
// polynomial, rebuilt from a quorum of shards.
type recoveredDealer struct {
	chunks    []gf32.Barycentric
	threshold uint32
	secretLen uint64
}

// RecoverDealer rebuilds a Dealer from exactly threshold shards (threshold
// being every shard's agreed-upon Threshold field). All shards must agree
// on threshold, secret length, and chunk count; their x-values must be
// distinct and nonzero.
func RecoverDealer(shards []Shard) (Dealer, error) {
	if len(shards) == 0 {
		return nil, fmt.Errorf("shamir: cannot recover a dealer from zero shards")
	}

	threshold := shards[0].Threshold
	secretLen := shards[0].SecretLen
	numChunks := len(shards[0].Ys)

	if len(shards) != int(threshold) {
		return nil, fmt.Errorf("shamir: recovery requires exactly %d shards, got %d", threshold, len(shards))
	}

	for i, s := range shards {
		if s.Threshold != threshold {
			return nil, fmt.Errorf("shamir: shard %d has threshold %d, want %d", i, s.Threshold, threshold)
		}
		if s.SecretLen != secretLen {
			return nil, fmt.Errorf("shamir: shard %d has secret length %d, want %d", i, s.SecretLen, secretLen)
		}
		if len(s.Ys) != numChunks {
			return nil, fmt.Errorf("shamir: shard %d has %d chunks, want %d", i, len(s.Ys), numChunks)
		}
	}

	chunks := make([]gf32.Barycentric, numChunks)
	for chunk := 0; chunk < numChunks; chunk++ {
		points := make([]gf32.Point, len(shards))
		for i, s := range shards {
			points[i] = gf32.Point{X: s.X, Y: s.Ys[chunk]}
		}
		bary, err := gf32.NewBarycentric(int(threshold), points)
		if err != nil {
			return nil, fmt.Errorf("shamir: interpolating chunk %d: %w", chunk, err)
		}
		chunks[chunk] = bary
	}

	return &recoveredDealer{chunks: chunks, threshold: threshold, secretLen: secretLen}, nil
}

func (d *recoveredDealer) Threshold() uint32 { return d.threshold }

func (d *recoveredDealer) Secret() []byte {
	return assembleSecret(d.secretLen, func(i int) gf32.Elem { return d.chunks[i].Constant() }, len(d.chunks))
}

func (d *recoveredDealer) Shard(x gf32.Elem) (Shard, bool) {
	if x == gf32.Zero {
		return Shard{}, false
	}
	ys := make([]gf32.Elem, len(d.chunks))
	for i, chunk := range d.chunks {
		ys[i] = chunk.Evaluate(x)
	}
	return Shard{X: x, Ys: ys, Threshold: d.threshold, SecretLen: d.secretLen}, true
}

func (d *recoveredDealer) NextShard() (Shard, error) {
	x, err := randomNonZeroElem()
	if err != nil {
		return Shard{}, err
	}
	shard, _ := d.Shard(x)
	return shard, nil
}

// randomNonZeroElem draws a uniformly random, nonzero field element from
// the host CSPRNG, resampling on the (astronomically unlikely) zero draw.
func randomNonZeroElem() (gf32.Elem, error) {
	var buf [4]byte
	for {
		if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
			return 0, fmt.Errorf("shamir: drawing random x value: %w", err)
		}
		x := gf32.Elem(binary.LittleEndian.Uint32(buf[:]))
		if x != gf32.Zero {
			return x, nil
		}
	}
}

// assembleSecret concatenates numChunks chunks (via get) and truncates the
// result to secretLen bytes.
func assembleSecret(secretLen uint64, get func(i int) gf32.Elem, numChunks int) []byte {
	out := make([]byte, 0, numChunks*chunkBytes)
	for i := 0; i < numChunks; i++ {
		out = append(out, get(i).Bytes()...)
	}
	if uint64(len(out)) > secretLen {
		out = out[:secretLen]
	}
	return out
}
