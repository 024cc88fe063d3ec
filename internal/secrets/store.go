// Package secrets keeps classifier API keys out of the plain-text config file.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// per-user key file (0600) with AES-GCM obfuscation. Not a replacement for an OS keychain.

const fileName = "keys.json"

// ErrNotFound is returned when no key is stored for a backend.
var ErrNotFound = errors.New("secrets: key not found")

type keyFile struct {
	Keys map[string]string `json:"keys"` // backend -> base64(ciphertext)
}

// Store saves key for backend, replacing any previous value.
func Store(backend, key string) error {
	if backend = norm(backend); backend == "" {
		return fmt.Errorf("secrets: backend required")
	}
	path, err := filePath()
	if err != nil {
		return err
	}
	kf, err := load(path)
	if err != nil {
		return err
	}
	if kf.Keys == nil {
		kf.Keys = map[string]string{}
	}
	ct, err := seal([]byte(strings.TrimSpace(key)))
	if err != nil {
		return fmt.Errorf("secrets: encrypt: %w", err)
	}
	kf.Keys[backend] = base64.StdEncoding.EncodeToString(ct)
	return save(path, kf)
}

// Fetch returns the key stored for backend.
func Fetch(backend string) (string, error) {
	if backend = norm(backend); backend == "" {
		return "", fmt.Errorf("secrets: backend required")
	}
	path, err := filePath()
	if err != nil {
		return "", err
	}
	kf, err := load(path)
	if err != nil {
		return "", err
	}
	enc, ok := kf.Keys[backend]
	if !ok {
		return "", ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("secrets: decode: %w", err)
	}
	pt, err := open(raw)
	if err != nil {
		return "", fmt.Errorf("secrets: decrypt: %w", err)
	}
	return string(pt), nil
}

// Delete removes the key stored for backend.
func Delete(backend string) error {
	if backend = norm(backend); backend == "" {
		return fmt.Errorf("secrets: backend required")
	}
	path, err := filePath()
	if err != nil {
		return err
	}
	kf, err := load(path)
	if err != nil {
		return err
	}
	delete(kf.Keys, backend)
	return save(path, kf)
}

// Resolve picks the API key for backend: the env var named envVar first, then the
// secret store, then the configured value.
func Resolve(backend, envVar, configured string) string {
	if envVar = strings.TrimSpace(envVar); envVar != "" {
		if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
			return v
		}
	}
	if k, err := Fetch(backend); err == nil && k != "" {
		return k
	}
	return strings.TrimSpace(configured)
}

func filePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "foodcalorie")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func load(path string) (keyFile, error) {
	var kf keyFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return keyFile{}, nil
		}
		return kf, err
	}
	if err := json.Unmarshal(data, &kf); err != nil {
		return kf, fmt.Errorf("secrets: parse %s: %w", path, err)
	}
	return kf, nil
}

func save(path string, kf keyFile) error {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func masterKey() []byte {
	base := fmt.Sprintf("foodcalorie-%s-%s", runtime.GOOS, os.Getenv("USER"))
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func seal(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func open(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
