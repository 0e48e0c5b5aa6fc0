package rebento

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// SignatureTypeEthereum marks secp256k1 personal-message signatures in a
// bundle item header.
const SignatureTypeEthereum uint16 = 3

const (
	signatureLength = 65
	ownerLength     = 65
	targetLength    = 32
	anchorLength    = 32

	maxTags        = 128
	maxTagName     = 1024
	maxTagValue    = 3072
	bundleFormat   = "1"
	dataItemMarker = "dataitem"
)

var (
	ErrUnsupportedSignature = errors.New("unsupported signature type")
	ErrTruncated            = errors.New("data item truncated")
)

// DataItem is an ANS-104 bundle item, the unit accepted by the bundler and
// by the cache process.
type DataItem struct {
	Owner     []byte
	Target    string // base64url, empty when the item has no recipient
	Anchor    []byte
	Tags      []Tag
	Data      []byte
	Signature []byte
}

// ID is the base64url sha-256 of the signature.
func (d DataItem) ID() string {
	sum := sha256.Sum256(d.Signature)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// OwnerAddress is the address the network indexes the item under.
func (d DataItem) OwnerAddress() string {
	return OwnerToAddress(d.Owner)
}

func (d DataItem) rawTarget() ([]byte, error) {
	if d.Target == "" {
		return nil, nil
	}
	target, err := base64.RawURLEncoding.DecodeString(d.Target)
	if err != nil || len(target) != targetLength {
		return nil, fmt.Errorf("invalid target %q", d.Target)
	}
	return target, nil
}

// signatureData is the deep hash the signature commits to.
func (d DataItem) signatureData() ([]byte, error) {
	target, err := d.rawTarget()
	if err != nil {
		return nil, err
	}
	if len(d.Anchor) != 0 && len(d.Anchor) != anchorLength {
		return nil, fmt.Errorf("anchor must be %d bytes", anchorLength)
	}
	tags, err := encodeTags(d.Tags)
	if err != nil {
		return nil, err
	}
	return deepHash([][]byte{
		[]byte(dataItemMarker),
		[]byte(bundleFormat),
		[]byte(strconv.Itoa(int(SignatureTypeEthereum))),
		d.Owner,
		target,
		d.Anchor,
		tags,
		d.Data,
	}), nil
}

// Bytes is the binary encoding of a signed item.
func (d DataItem) Bytes() ([]byte, error) {
	if len(d.Signature) != signatureLength {
		return nil, errors.New("data item is not signed")
	}
	if len(d.Owner) != ownerLength {
		return nil, fmt.Errorf("owner must be %d bytes", ownerLength)
	}
	target, err := d.rawTarget()
	if err != nil {
		return nil, err
	}
	if len(d.Anchor) != 0 && len(d.Anchor) != anchorLength {
		return nil, fmt.Errorf("anchor must be %d bytes", anchorLength)
	}
	tags, err := encodeTags(d.Tags)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 2+signatureLength+ownerLength+2+targetLength+anchorLength+16+len(tags)+len(d.Data))
	out = binary.LittleEndian.AppendUint16(out, SignatureTypeEthereum)
	out = append(out, d.Signature...)
	out = append(out, d.Owner...)
	out = appendOptional(out, target)
	out = appendOptional(out, d.Anchor)
	out = binary.LittleEndian.AppendUint64(out, uint64(len(d.Tags)))
	out = binary.LittleEndian.AppendUint64(out, uint64(len(tags)))
	out = append(out, tags...)
	return append(out, d.Data...), nil
}

// Verify checks that the signature was made by the owner key.
func (d DataItem) Verify() error {
	if len(d.Signature) != signatureLength {
		return errors.New("data item is not signed")
	}
	message, err := d.signatureData()
	if err != nil {
		return err
	}

	sig := bytes.Clone(d.Signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := crypto.SigToPub(personalHash(message), sig)
	if err != nil {
		return errors.Wrap(err, "failed to recover public key")
	}
	if !bytes.Equal(crypto.FromECDSAPub(pub), d.Owner) {
		return errors.New("signature does not match owner")
	}
	return nil
}

func appendOptional(out, field []byte) []byte {
	if len(field) == 0 {
		return append(out, 0)
	}
	out = append(out, 1)
	return append(out, field...)
}

// SignDataItem stamps the signer's key as owner, signs the item and returns
// its binary encoding.
func SignDataItem(ctx context.Context, signer Signer, item DataItem) ([]byte, error) {
	item.Owner = signer.PublicKey()
	message, err := item.signatureData()
	if err != nil {
		return nil, err
	}

	signature, err := signer.Sign(ctx, message)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign data item")
	}
	if len(signature) != signatureLength {
		return nil, fmt.Errorf("signer returned %d signature bytes", len(signature))
	}
	item.Signature = signature
	return item.Bytes()
}

// ParseDataItem decodes a binary item without checking its signature.
func ParseDataItem(raw []byte) (DataItem, error) {
	c := &cursor{buf: raw}
	head := c.next(2)
	if c.err == nil && binary.LittleEndian.Uint16(head) != SignatureTypeEthereum {
		return DataItem{}, ErrUnsupportedSignature
	}
	signature := c.next(signatureLength)
	owner := c.next(ownerLength)
	target := c.optional(targetLength)
	anchor := c.optional(anchorLength)
	counts := c.next(16)
	if c.err != nil {
		return DataItem{}, c.err
	}

	tagCount := binary.LittleEndian.Uint64(counts[:8])
	tagLength := binary.LittleEndian.Uint64(counts[8:])
	if tagLength > uint64(len(c.buf)) {
		return DataItem{}, ErrTruncated
	}
	tags, err := decodeTags(c.next(int(tagLength)))
	if err != nil {
		return DataItem{}, err
	}
	if uint64(len(tags)) != tagCount {
		return DataItem{}, fmt.Errorf("header declares %d tags, found %d", tagCount, len(tags))
	}

	item := DataItem{
		Owner:     bytes.Clone(owner),
		Anchor:    bytes.Clone(anchor),
		Tags:      tags,
		Data:      bytes.Clone(c.buf),
		Signature: bytes.Clone(signature),
	}
	if target != nil {
		item.Target = base64.RawURLEncoding.EncodeToString(target)
	}
	return item, nil
}

// VerifyDataItem decodes a binary item and checks its signature.
func VerifyDataItem(raw []byte) (DataItem, error) {
	item, err := ParseDataItem(raw)
	if err != nil {
		return DataItem{}, err
	}
	if err := item.Verify(); err != nil {
		return DataItem{}, err
	}
	return item, nil
}

type cursor struct {
	buf []byte
	err error
}

func (c *cursor) next(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n > len(c.buf) {
		c.err = ErrTruncated
		return nil
	}
	b := c.buf[:n]
	c.buf = c.buf[n:]
	return b
}

func (c *cursor) optional(n int) []byte {
	flag := c.next(1)
	if c.err != nil {
		return nil
	}
	switch flag[0] {
	case 0:
		return nil
	case 1:
		return c.next(n)
	default:
		c.err = fmt.Errorf("invalid presence byte %d", flag[0])
		return nil
	}
}

// encodeTags writes tags as an avro array of {name, value} string records.
// No tags encode to nothing at all.
func encodeTags(tags []Tag) ([]byte, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	if len(tags) > maxTags {
		return nil, fmt.Errorf("too many tags: %d", len(tags))
	}

	out := binary.AppendVarint(nil, int64(len(tags)))
	for _, t := range tags {
		if t.Name == "" || len(t.Name) > maxTagName {
			return nil, fmt.Errorf("invalid tag name %q", t.Name)
		}
		if t.Value == "" || len(t.Value) > maxTagValue {
			return nil, fmt.Errorf("invalid value for tag %q", t.Name)
		}
		out = appendAvroString(out, t.Name)
		out = appendAvroString(out, t.Value)
	}
	return append(out, 0), nil
}

func appendAvroString(out []byte, s string) []byte {
	out = binary.AppendVarint(out, int64(len(s)))
	return append(out, s...)
}

func decodeTags(raw []byte) ([]Tag, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	r := bytes.NewReader(raw)
	var tags []Tag
	for {
		n, err := binary.ReadVarint(r)
		if err != nil {
			return nil, errors.Wrap(err, "invalid tag block")
		}
		if n == 0 {
			break
		}
		if n < 0 {
			// a negative count is followed by the block size in bytes
			n = -n
			if _, err := binary.ReadVarint(r); err != nil {
				return nil, errors.Wrap(err, "invalid tag block")
			}
		}
		if n > maxTags || len(tags)+int(n) > maxTags {
			return nil, fmt.Errorf("too many tags")
		}
		for i := int64(0); i < n; i++ {
			name, err := readAvroString(r)
			if err != nil {
				return nil, err
			}
			value, err := readAvroString(r)
			if err != nil {
				return nil, err
			}
			tags = append(tags, Tag{Name: name, Value: value})
		}
	}
	if r.Len() != 0 {
		return nil, errors.New("trailing bytes after tags")
	}
	return tags, nil
}

func readAvroString(r *bytes.Reader) (string, error) {
	n, err := binary.ReadVarint(r)
	if err != nil {
		return "", errors.Wrap(err, "invalid tag length")
	}
	if n < 0 || n > int64(r.Len()) {
		return "", errors.New("invalid tag length")
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func deepHash(chunks [][]byte) []byte {
	acc := sha512.Sum384([]byte("list" + strconv.Itoa(len(chunks))))
	sum := acc[:]
	for _, chunk := range chunks {
		pair := append(bytes.Clone(sum), deepHashBlob(chunk)...)
		next := sha512.Sum384(pair)
		sum = next[:]
	}
	return sum
}

func deepHashBlob(data []byte) []byte {
	tag := sha512.Sum384([]byte("blob" + strconv.Itoa(len(data))))
	body := sha512.Sum384(data)
	sum := sha512.Sum384(append(tag[:], body[:]...))
	return sum[:]
}

// personalHash is the digest an Ethereum wallet signs for a personal message.
func personalHash(message []byte) []byte {
	return crypto.Keccak256([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))), message)
}
