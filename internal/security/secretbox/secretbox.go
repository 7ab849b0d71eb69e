// Package secretbox cifra secretos de configuración (las URIs de los
// clusters) con AES-256-GCM. La clave maestra vive en SECRETBOX_MASTER_KEY;
// el ciphertext viaja como base64(nonce)|base64(ciphertext) dentro del yaml.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const (
	envVar    = "SECRETBOX_MASTER_KEY"
	nonceSize = 12 // AES-GCM, 96 bits
	keySize   = 32 // AES-256
	sep       = "|"
)

var (
	keyOnce sync.Once
	key     []byte
	loadErr error
)

// loadKey lee la clave maestra del entorno una sola vez.
func loadKey() ([]byte, error) {
	keyOnce.Do(func() {
		raw := strings.TrimSpace(os.Getenv(envVar))
		if raw == "" {
			loadErr = fmt.Errorf("%s no seteada; genere una con: openssl rand -base64 32", envVar)
			return
		}
		k, err := decodeKey(raw)
		if err != nil {
			loadErr = fmt.Errorf("%s: %w", envVar, err)
			return
		}
		key = k
	})
	return key, loadErr
}

// decodeKey acepta la clave en base64 (std o raw), hex, o cruda de 32 bytes.
func decodeKey(raw string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(raw); err == nil && len(b) == keySize {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(raw); err == nil && len(b) == keySize {
		return b, nil
	}
	if len(raw) == keySize*2 {
		if b, err := hex.DecodeString(raw); err == nil {
			return b, nil
		}
	}
	if len(raw) == keySize {
		return []byte(raw), nil
	}
	return nil, fmt.Errorf("la clave debe decodificar a %d bytes", keySize)
}

// Ready informa si la clave maestra está disponible.
func Ready() bool {
	_, err := loadKey()
	return err == nil
}

// Encrypt cifra plain con la clave maestra.
func Encrypt(plain string) (string, error) {
	k, err := loadKey()
	if err != nil {
		return "", err
	}
	return encryptWith(k, plain)
}

// Decrypt descifra base64(nonce)|base64(ciphertext) con la clave maestra.
func Decrypt(cipherText string) (string, error) {
	k, err := loadKey()
	if err != nil {
		return "", err
	}
	return decryptWith(k, cipherText)
}

// DecryptWithKey descifra con una clave explícita, sin tocar el entorno.
func DecryptWithKey(rawKey, cipherText string) (string, error) {
	k, err := decodeKey(strings.TrimSpace(rawKey))
	if err != nil {
		return "", err
	}
	return decryptWith(k, cipherText)
}

func encryptWith(k []byte, plain string) (string, error) {
	aead, err := newGCM(k)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce random: %w", err)
	}
	ct := aead.Seal(nil, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(nonce) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

func decryptWith(k []byte, cipherText string) (string, error) {
	parts := strings.Split(cipherText, sep)
	if len(parts) != 2 {
		return "", errors.New("formato inválido: esperado base64(nonce)|base64(ciphertext)")
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("decode nonce: %w", err)
	}
	if len(nonce) != nonceSize {
		return "", fmt.Errorf("nonce inválido: esperado %d bytes, obtuvo %d", nonceSize, len(nonce))
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	aead, err := newGCM(k)
	if err != nil {
		return "", err
	}
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("gcm auth/decrypt: %w", err)
	}
	return string(pt), nil
}

func newGCM(k []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// ResetForTests borra el estado de la clave. Usar sólo en tests.
func ResetForTests() {
	keyOnce = sync.Once{}
	key = nil
	loadErr = nil
}
