package transform

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/c360/mapengine/jsontree"
	"github.com/c360/mapengine/pkg/cache"
)

const (
	nonceSize = 12
	keySize   = 32
)

// Encryptor resolves key references to AES-GCM ciphers and caches the
// result, keyed by the resolved key text (concurrent, write-through, per
// the process-wide encryption-helper cache). Keys are never logged.
type Encryptor struct {
	helpers cache.Cache[cipher.AEAD]
}

// NewEncryptor constructs an Encryptor with an empty helper cache.
func NewEncryptor() *Encryptor {
	c, err := cache.NewSimple[cipher.AEAD]()
	if err != nil {
		panic(fmt.Sprintf("transform: failed to initialize encryption-helper cache: %v", err))
	}
	return &Encryptor{helpers: c}
}

// resolveKeyRef turns a configured key reference into raw key bytes. A
// reference of the form "${NAME}" is resolved from the environment
// variable NAME; anything else is treated as literal base64.
func resolveKeyRef(ref string) ([]byte, error) {
	text := ref
	if strings.HasPrefix(ref, "${") && strings.HasSuffix(ref, "}") {
		name := ref[2 : len(ref)-1]
		val, ok := os.LookupEnv(name)
		if !ok {
			return nil, fmt.Errorf("encrypt: unknown environment variable %q for key reference", name)
		}
		text = val
	}

	key, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("encrypt: key reference is not valid base64: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("encrypt: key must decode to %d bytes, got %d", keySize, len(key))
	}
	return key, nil
}

// aeadFor returns the cipher.AEAD for a resolved key reference,
// constructing and caching it on first use.
func (e *Encryptor) aeadFor(ref string) (cipher.AEAD, error) {
	key, err := resolveKeyRef(ref)
	if err != nil {
		return nil, err
	}
	cacheKey := string(key)
	if a, ok := e.helpers.Get(cacheKey); ok {
		return a, nil
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("encrypt: invalid key material: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("encrypt: failed to initialize AEAD: %w", err)
	}

	e.helpers.Set(cacheKey, gcm)
	return gcm, nil
}

// encrypt implements the encrypt transform: null → null, array →
// element-wise, otherwise coerce to text and produce a
// nonce‖ciphertext‖tag envelope, base64-encoded. A missing key reference
// passes the value through with a warning event; an unresolvable
// environment-variable placeholder passes the value through with an
// error event.
func encrypt(d Descriptor, n jsontree.Node, enc *Encryptor) (jsontree.Node, []Event) {
	if jsontree.IsNull(n) {
		return nil, nil
	}
	if jsontree.IsMissing(n) {
		return n, nil
	}
	if arr, ok := jsontree.Array(n); ok {
		return elementWise(arr, func(e jsontree.Node) (jsontree.Node, []Event) { return encrypt(d, e, enc) })
	}

	text, ok := jsontree.AsText(n)
	if !ok {
		return n, []Event{{Stage: string(KindEncrypt), Message: "value has no textual coercion"}}
	}

	if d.KeyRef == "" {
		return text, []Event{{Stage: string(KindEncrypt), Message: "warning: no key reference configured, value passed through unencrypted"}}
	}
	if enc == nil {
		return text, []Event{{Stage: string(KindEncrypt), Message: "error: no encryptor available for key reference"}}
	}

	gcm, err := enc.aeadFor(d.KeyRef)
	if err != nil {
		return text, []Event{{Stage: string(KindEncrypt), Message: "error: " + err.Error()}}
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return text, []Event{{Stage: string(KindEncrypt), Message: "error: failed to generate nonce: " + err.Error()}}
	}

	sealed := gcm.Seal(nonce, nonce, []byte(text), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses encrypt for the same key reference, given the
// base64-encoded nonce‖ciphertext‖tag envelope. Exposed so tests (and
// any host tooling that needs to verify round-tripping) don't need to
// reimplement the envelope layout.
func (e *Encryptor) Decrypt(keyRef, envelope string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", fmt.Errorf("decrypt: invalid base64 envelope: %w", err)
	}
	if len(raw) < nonceSize {
		return "", fmt.Errorf("decrypt: envelope too short")
	}
	gcm, err := e.aeadFor(keyRef)
	if err != nil {
		return "", err
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: authentication failed: %w", err)
	}
	return string(plain), nil
}
