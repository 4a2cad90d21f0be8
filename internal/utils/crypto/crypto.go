package crypto

import (
	base64_ "brandops/internal/utils/base64"
	"brandops/internal/utils/logger"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/ssh"
)

var log = logger.New("crypto")

// PrivateKey signs audit-archive manifests so exported batches can be
// verified offline by operators.
var PrivateKey *rsa.PrivateKey
var PublicKey *rsa.PublicKey

func InitializeKeys(privateKeyEnv string) error {

	log.Info("Initializing audit export keys")

	if privateKeyEnv == "" {
		return errors.New("private key not found")
	}

	privateKeyEnv, err := base64_.DecodeFromBase64(privateKeyEnv)

	if err != nil {
		return fmt.Errorf("failed to decode private key: %w", err)
	}

	key, err := ssh.ParseRawPrivateKey([]byte(privateKeyEnv))

	if err != nil {
		return fmt.Errorf("failed to parse private key: %w", err)
	}

	PrivateKey = key.(*rsa.PrivateKey)
	PublicKey = &PrivateKey.PublicKey
	return nil
}

// NewSessionToken returns a fresh unguessable token for a dashboard session.
// Tokens are opaque; nothing is encoded in them.
func NewSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SignManifest signs an audit-archive manifest digest with the export key.
func SignManifest(digest string) (string, error) {

	if PrivateKey == nil {
		return "", errors.New("private key not initialized")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"digest": digest,
		"iat":    time.Now().Unix(),
	})

	signedString, err := token.SignedString(PrivateKey)

	if err != nil {
		return "", err
	}

	return signedString, nil
}

// Encrypt is used by the helper CLI to protect operator secrets at rest.
func Encrypt(plaintext string) (string, error) {
	if PublicKey == nil {
		return "", errors.New("public key not initialized")
	}

	ciphertext, err := rsa.EncryptOAEP(
		sha256.New(),
		rand.Reader,
		PublicKey,
		[]byte(plaintext),
		nil,
	)

	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func Decrypt(ciphertext string) (string, error) {
	if PrivateKey == nil {
		return "", errors.New("private key not initialized")
	}

	decodedCiphertext, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	plaintext, err := rsa.DecryptOAEP(
		sha256.New(),
		rand.Reader,
		PrivateKey,
		decodedCiphertext,
		nil,
	)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// ComputeArchiveSignature returns an HMAC over an exported audit batch so the
// archive job can detect tampering before marking rows archived.
func ComputeArchiveSignature(batch []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(batch)
	return hex.EncodeToString(h.Sum(nil))
}
