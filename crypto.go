package rebento

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

// Signer is a publishing identity. Address is the owner identity recorded in
// tags and is always derived from PublicKey.
type Signer interface {
	Address() string
	// PublicKey is the 65 byte uncompressed secp256k1 key carried as the
	// owner of signed items.
	PublicKey() []byte
	// Sign returns an [R || S || V] personal-message signature with V in {27, 28}.
	Sign(ctx context.Context, message []byte) ([]byte, error)
}

func GetHash(bytes []byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(bytes)
	return hash.Sum(nil)
}

// OwnerToAddress is the address the storage network assigns to an owner
// key: the base64url sha-256 of the raw key.
func OwnerToAddress(owner []byte) string {
	sum := sha256.Sum256(owner)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func PubkeyToAddr(pub *ecdsa.PublicKey) string {
	return OwnerToAddress(crypto.FromECDSAPub(pub))
}

func PrivKeyToAddr(privKey string) (string, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privKey, "0x"))
	if err != nil {
		return "", errors.Wrap(err, "invalid private key")
	}
	return PubkeyToAddr(&key.PublicKey), nil
}

func SignBytes(bytes []byte, privatekey string) ([]byte, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privatekey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	return crypto.Sign(GetHash(bytes), key)
}

// VerifySignature recovers the signing key and checks it against an address.
func VerifySignature(bytes []byte, signature []byte, address string) error {
	if address == "" {
		return errors.New("empty address")
	}

	pub, err := crypto.SigToPub(GetHash(bytes), signature)
	if err != nil {
		return errors.Wrap(err, "failed to recover public key")
	}

	if recovered := PubkeyToAddr(pub); recovered != address {
		return fmt.Errorf("signature does not match address: expected %s, got %s", address, recovered)
	}
	return nil
}

type KeySigner struct {
	key     *ecdsa.PrivateKey
	owner   []byte
	address string
}

func NewKeySigner(privateKey string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	return newKeySigner(key), nil
}

func GenerateKeySigner() (*KeySigner, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate key")
	}
	return newKeySigner(key), nil
}

func newKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	owner := crypto.FromECDSAPub(&key.PublicKey)
	return &KeySigner{key: key, owner: owner, address: OwnerToAddress(owner)}
}

func (s *KeySigner) Address() string {
	return s.address
}

func (s *KeySigner) PublicKey() []byte {
	return s.owner
}

// EthereumAddress is the checksummed 0x address of the same key, as wallets
// display it.
func (s *KeySigner) EthereumAddress() string {
	return crypto.PubkeyToAddress(s.key.PublicKey).Hex()
}

func (s *KeySigner) PrivateKeyHex() string {
	return hex.EncodeToString(crypto.FromECDSA(s.key))
}

func (s *KeySigner) Sign(ctx context.Context, message []byte) ([]byte, error) {
	signature, err := crypto.Sign(personalHash(message), s.key)
	if err != nil {
		return nil, err
	}
	signature[64] += 27
	return signature, nil
}
