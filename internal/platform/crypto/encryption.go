package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

var ErrDecryptionFailed = errors.New("decryption failed")

const (
	saltSize   = 16
	keySize    = 32
	kdfRounds  = 120_000
	passwordSz = 32
)

// NewPassword returns a fresh one-time password. It is handed to the caller
// exactly once and never persisted.
func NewPassword() (string, error) {
	buff := make([]byte, passwordSz)
	if _, err := rand.Read(buff); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buff), nil
}

// Encrypt seals plaintext with a key derived from password. The output layout
// is salt || nonce || ciphertext.
func Encrypt(plain []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("password is required")
	}
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, saltSize+len(nonce)+len(plain)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plain, nil), nil
}

// Decrypt reverses Encrypt. A wrong password fails the GCM authentication and
// surfaces as ErrDecryptionFailed, never as garbage plaintext.
func Decrypt(ciphertext []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("password is required")
	}
	if len(ciphertext) < saltSize {
		return nil, ErrDecryptionFailed
	}
	salt := ciphertext[:saltSize]
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	rest := ciphertext[saltSize:]
	if len(rest) < gcm.NonceSize() {
		return nil, ErrDecryptionFailed
	}
	nonce := rest[:gcm.NonceSize()]
	plain, err := gcm.Open(nil, nonce, rest[gcm.NonceSize():], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plain, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, kdfRounds, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
