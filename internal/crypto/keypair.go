package crypto

import (
	"crypto/rsa"
	"math/big"

	"shary/internal/domain"
	"shary/internal/util/memzero"
)

const (
	// MinKeySize is the smallest accepted modulus. Below this the two prime
	// halves are small enough that a p == q collision stops being negligible.
	MinKeySize = 512
	// DefaultKeySize is used when the caller does not pick a size.
	DefaultKeySize = 2048

	publicExponent = 65537
)

// DeriveKeyPair deterministically derives an RSA keypair from a password and
// an identity string. The password is stretched with PBKDF2 using the
// identity string as salt; the resulting seed drives a deterministic byte
// generator from which the two primes are drawn. Identical inputs always
// yield a bit-identical keypair, so the private key never needs to be
// persisted.
func DeriveKeyPair(password, identity string, bits int) (*rsa.PrivateKey, error) {
	if bits < MinKeySize || bits%2 != 0 {
		return nil, domain.ErrInvalidKeySize
	}

	seed := StretchPassword([]byte(password), []byte(identity))
	defer memzero.Zero(seed)
	g := newDRBG(seed)

	e := big.NewInt(publicExponent)
	one := big.NewInt(1)
	half := bits / 2

	for {
		p := g.prime(half)
		q := g.prime(half)
		for q.Cmp(p) == 0 {
			q = g.prime(half)
		}

		phi := new(big.Int).Mul(
			new(big.Int).Sub(p, one),
			new(big.Int).Sub(q, one),
		)
		d := new(big.Int).ModInverse(e, phi)
		if d == nil {
			// e divides phi(n); draw the next pair from the same stream so
			// the retry stays deterministic.
			continue
		}

		key := &rsa.PrivateKey{
			PublicKey: rsa.PublicKey{
				N: new(big.Int).Mul(p, q),
				E: publicExponent,
			},
			D:      d,
			Primes: []*big.Int{p, q},
		}
		key.Precompute()
		return key, nil
	}
}
