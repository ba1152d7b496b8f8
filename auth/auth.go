// Package auth provides authorization predicates that decide whether a
// caller may act as a given principal.
package auth

import (
	"encoding/hex"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"

	"github.com/bitfsorg/poolvault-go/accounting"
)

// Caller carries whatever the surrounding environment knows about the
// party invoking a vault operation.
type Caller struct {
	// Principal is the identity the environment has already authenticated.
	Principal accounting.Principal

	// PubKey is the caller's compressed secp256k1 public key.
	PubKey []byte

	// Signature is a DER signature over SHA-256(Message).
	Signature []byte
	Message   []byte
}

// As returns a Caller the environment vouches for as principal p.
func As(p accounting.Principal) Caller {
	return Caller{Principal: p}
}

// Authorizer decides whether caller may act as principal.
type Authorizer interface {
	IsAuthorized(caller Caller, principal accounting.Principal) bool
}

// Trusted authorizes a caller whose pre-authenticated Principal equals the
// requested principal.
type Trusted struct{}

// IsAuthorized implements Authorizer.
func (Trusted) IsAuthorized(caller Caller, principal accounting.Principal) bool {
	return principal != "" && caller.Principal == principal
}

// KeyAuthorizer authorizes a caller that controls the key behind principal.
// Principals are hex HASH160 digests of compressed public keys.
type KeyAuthorizer struct {
	// RequireSignature additionally demands a valid signature over Message.
	RequireSignature bool
}

// IsAuthorized implements Authorizer.
func (a KeyAuthorizer) IsAuthorized(caller Caller, principal accounting.Principal) bool {
	if principal == "" || len(caller.PubKey) == 0 {
		return false
	}
	pub, err := ec.PublicKeyFromBytes(caller.PubKey)
	if err != nil {
		return false
	}
	if PrincipalFromPubKey(pub) != principal {
		return false
	}
	if !a.RequireSignature {
		return true
	}
	return VerifySignature(pub, caller.Message, caller.Signature)
}

// PrincipalFromPubKey derives the principal identity of a public key:
// hex(RIPEMD160(SHA256(compressed pubkey))).
func PrincipalFromPubKey(pub *ec.PublicKey) accounting.Principal {
	return accounting.Principal(hex.EncodeToString(bsvhash.Hash160(pub.Compressed())))
}

// Sign produces a Caller for priv that carries a signature over msg.
func Sign(priv *ec.PrivateKey, msg []byte) (Caller, error) {
	sig, err := priv.Sign(bsvhash.Sha256(msg))
	if err != nil {
		return Caller{}, err
	}
	pub := priv.PubKey()
	return Caller{
		Principal: PrincipalFromPubKey(pub),
		PubKey:    pub.Compressed(),
		Signature: sig.Serialize(),
		Message:   msg,
	}, nil
}

// VerifySignature checks a DER signature over SHA-256(msg).
func VerifySignature(pub *ec.PublicKey, msg, der []byte) bool {
	if len(der) == 0 {
		return false
	}
	sig, err := ec.ParseDERSignature(der)
	if err != nil {
		return false
	}
	return sig.Verify(bsvhash.Sha256(msg), pub)
}
