package vault

import (
	"crypto/tls"
	"testing"
)

func TestEncryptDecrypt(t *testing.T) {
	key := DeriveKey("backup passphrase")
	plaintext := `{"assets":[],"history":[]}`

	ciphertext, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}

	if ciphertext == plaintext {
		t.Fatal("Ciphertext should not be equal to plaintext")
	}

	decrypted, err := Decrypt(ciphertext, key)
	if err != nil {
		t.Fatalf("Decryption failed: %v", err)
	}

	if decrypted != plaintext {
		t.Errorf("Expected %s, got %s", plaintext, decrypted)
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	ciphertext, err := Encrypt("Secret snapshot", DeriveKey("right"))
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}

	if _, err = Decrypt(ciphertext, DeriveKey("wrong")); err == nil {
		t.Fatal("Decryption with the wrong key must fail")
	}
}

func TestDeriveKeyLength(t *testing.T) {
	if got := len(DeriveKey("x")); got != 32 {
		t.Errorf("Expected a 32-byte key for AES-256, got %d", got)
	}
}

func TestGenerateSelfSignedCert(t *testing.T) {
	cert, err := GenerateSelfSignedCert()
	if err != nil {
		t.Fatalf("GenerateSelfSignedCert failed: %v", err)
	}

	// The pair must be loadable into a TLS config.
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}}
	if len(cfg.Certificates) != 1 {
		t.Error("Certificate was not usable")
	}
}
