package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
)

// primalityRounds for ProbablyPrime; 20 Miller-Rabin rounds keeps the false
// positive chance below 2^-40 on random candidates.
const primalityRounds = 20

// drbg is a deterministic byte generator: SHA-256 over seed plus counter,
// incremented per block. Identical seeds always replay the identical stream,
// which is what makes keypair derivation reproducible.
type drbg struct {
	seed    []byte
	counter uint32
}

func newDRBG(seed []byte) *drbg {
	return &drbg{seed: append([]byte(nil), seed...)}
}

func (g *drbg) read(n int) []byte {
	out := make([]byte, 0, n+sha256.Size)
	var block [4]byte
	for len(out) < n {
		binary.BigEndian.PutUint32(block[:], g.counter)
		sum := sha256.Sum256(append(g.seed, block[:]...))
		out = append(out, sum[:]...)
		g.counter++
	}
	return out[:n]
}

// prime draws odd candidates of exactly bits bits until one passes the
// primality test. The top bit is forced so the resulting modulus keeps its
// full size.
func (g *drbg) prime(bits int) *big.Int {
	for {
		c := new(big.Int).SetBytes(g.read((bits + 7) / 8))
		if excess := c.BitLen() - bits; excess > 0 {
			c.Rsh(c, uint(excess))
		}
		c.SetBit(c, bits-1, 1)
		c.SetBit(c, 0, 1)
		if c.ProbablyPrime(primalityRounds) {
			return c
		}
	}
}
