// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package envelope encrypts log records for the collector.
//
// Each [Envelope] generates one AES-256 session key and wraps it with the
// collector's RSA public key (PKCS #1 v1.5). Records are encrypted with
// AES-256-CBC under a fresh random IV, PKCS #7 padded, and base64
// encoded with the IV prepended. The wrapped key travels with every
// record so the collector can decrypt any file independently.
//
// The session key lives only in memory. Files written by a previous
// process remain decryptable by the collector's private key, not by a
// new Envelope.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"strings"

	schema "github.com/bureau-foundation/birch/lib/schema/log"
)

// KeySize is the AES session key length in bytes.
const KeySize = 32

// ErrInvalidPublicKey is returned (wrapped) when key material cannot be
// parsed as an RSA public key.
var ErrInvalidPublicKey = errors.New("envelope: invalid public key")

// Envelope holds one session key and its RSA-wrapped form.
type Envelope struct {
	block        cipher.Block
	encryptedKey string
	random       io.Reader
}

// Parse reads an RSA public key and returns an Envelope for it. The
// material may be a PEM "PUBLIC KEY" block or the base64 encoding of
// one, which is how collector dashboards distribute keys.
func Parse(material string) (*Envelope, error) {
	key, err := ParsePublicKey(material)
	if err != nil {
		return nil, err
	}
	return New(key)
}

// ParsePublicKey decodes PEM or base64-of-PEM key material into an RSA
// public key. Both PKIX and PKCS #1 encodings are accepted.
func ParsePublicKey(material string) (*rsa.PublicKey, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPublicKey)
	}

	pemData := []byte(material)
	if !strings.HasPrefix(material, "-----BEGIN") {
		decoded, err := base64.StdEncoding.DecodeString(material)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		pemData = decoded
	}

	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrInvalidPublicKey)
	}

	switch block.Type {
	case "RSA PUBLIC KEY":
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		return key, nil
	default:
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		key, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not an RSA key", ErrInvalidPublicKey, parsed)
		}
		return key, nil
	}
}

// New generates a session key and wraps it with publicKey.
func New(publicKey *rsa.PublicKey) (*Envelope, error) {
	return newWithRandom(publicKey, rand.Reader)
}

func newWithRandom(publicKey *rsa.PublicKey, random io.Reader) (*Envelope, error) {
	if publicKey == nil {
		return nil, fmt.Errorf("%w: nil key", ErrInvalidPublicKey)
	}

	sessionKey := make([]byte, KeySize)
	if _, err := io.ReadFull(random, sessionKey); err != nil {
		return nil, fmt.Errorf("envelope: generating session key: %w", err)
	}

	wrapped, err := rsa.EncryptPKCS1v15(random, publicKey, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("envelope: wrapping session key: %w", err)
	}

	block, err := aes.NewCipher(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}
	clear(sessionKey)

	return &Envelope{
		block:        block,
		encryptedKey: base64.StdEncoding.EncodeToString(wrapped),
		random:       random,
	}, nil
}

// EncryptedKey returns the base64 RSA-wrapped session key. It is the
// same for the life of the Envelope.
func (e *Envelope) EncryptedKey() string { return e.encryptedKey }

// Encrypt returns base64(IV || AES-256-CBC(PKCS7(message))). Safe for
// concurrent use.
func (e *Envelope) Encrypt(message string) (string, error) {
	padded := pad([]byte(message), aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))

	iv := out[:aes.BlockSize]
	if _, err := io.ReadFull(e.random, iv); err != nil {
		return "", fmt.Errorf("envelope: generating IV: %w", err)
	}

	cipher.NewCBCEncrypter(e.block, iv).CryptBlocks(out[aes.BlockSize:], padded)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Seal encrypts record and renders it as a sealed record line, without
// the trailing separator.
func (e *Envelope) Seal(record []byte) ([]byte, error) {
	encrypted, err := e.Encrypt(string(record))
	if err != nil {
		return nil, err
	}
	return schema.Encode(schema.Sealed{
		EncryptedKey:     e.encryptedKey,
		EncryptedMessage: encrypted,
	})
}

// pad appends PKCS #7 padding. A full block is added when data is
// already aligned.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}
