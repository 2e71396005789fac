package logging

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/wardkeep/wardkeep/iso8601"
)

// MinKeyLength is the minimum HMAC-SHA256 key length in bytes, matching
// the SHA256 output size.
const MinKeyLength = 32

// ErrKeyTooShort is returned when the secret key is shorter than MinKeyLength.
var ErrKeyTooShort = errors.New("secret key must be at least 32 bytes")

// SignatureConfig holds the key material for action log signing.
type SignatureConfig struct {
	// KeyID identifies the signing key so verifiers can handle rotation.
	KeyID string
	// SecretKey is the HMAC-SHA256 key.
	SecretKey []byte
}

// Validate checks the key length.
func (c *SignatureConfig) Validate() error {
	if len(c.SecretKey) < MinKeyLength {
		return ErrKeyTooShort
	}
	return nil
}

// SignedEntry is an action log entry together with its signature. The
// entry is held as the raw JSON it was signed over, so an entry read
// back from a log file verifies against the exact bytes that were
// signed. The signature also covers the signing timestamp and the key
// ID, so a record cannot be replayed under a different time or key.
type SignedEntry struct {
	Entry     json.RawMessage `json:"entry"`
	Signature string          `json:"signature"`
	KeyID     string          `json:"key_id"`
	Timestamp string          `json:"timestamp"`
}

// signedPayload is the exact structure fed to the HMAC, for both
// signing and verification.
type signedPayload struct {
	Entry     json.RawMessage `json:"entry"`
	Timestamp string          `json:"timestamp"`
	KeyID     string          `json:"key_id"`
}

// ComputeSignature returns the hex-encoded HMAC-SHA256 of the entry's
// JSON encoding.
func ComputeSignature(entry any, secretKey []byte) (string, error) {
	if len(secretKey) < MinKeyLength {
		return "", ErrKeyTooShort
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifySignature checks a hex-encoded signature in constant time.
// A malformed signature counts as invalid, not as an error.
func VerifySignature(entry any, signature string, secretKey []byte) (bool, error) {
	expected, err := ComputeSignature(entry, secretKey)
	if err != nil {
		return false, err
	}

	providedBytes, err := hex.DecodeString(signature)
	if err != nil {
		return false, nil
	}
	expectedBytes, err := hex.DecodeString(expected)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(providedBytes, expectedBytes) == 1, nil
}

// NewSignedEntry signs the entry with the current timestamp. The entry
// is marshaled once and the HMAC is computed over those bytes, which
// travel with the signature.
func NewSignedEntry(entry any, config *SignatureConfig) (*SignedEntry, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}

	timestamp := iso8601.Format(time.Now())
	signature, err := ComputeSignature(signedPayload{
		Entry:     raw,
		Timestamp: timestamp,
		KeyID:     config.KeyID,
	}, config.SecretKey)
	if err != nil {
		return nil, err
	}

	return &SignedEntry{
		Entry:     raw,
		Signature: signature,
		KeyID:     config.KeyID,
		Timestamp: timestamp,
	}, nil
}

// Verify checks the entry's signature against the given key.
func (s *SignedEntry) Verify(secretKey []byte) (bool, error) {
	return VerifySignature(signedPayload{
		Entry:     s.Entry,
		Timestamp: s.Timestamp,
		KeyID:     s.KeyID,
	}, s.Signature, secretKey)
}
