package crypto

import (
	"bytes"
	"testing"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	digest := bytes.Repeat([]byte{0xAB}, 32)

	sig, err := NewSigner(key).Sign(digest)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	pubKey := key.PubKey().SerializeCompressed()
	ok, err := NewVerifier().Verify(digest, sig, pubKey)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("Verify returned false for a valid signature")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	other, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	digest := bytes.Repeat([]byte{0xCD}, 32)

	sig, err := NewSigner(key).Sign(digest)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	ok, err := NewVerifier().Verify(digest, sig, other.PubKey().SerializeCompressed())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("Verify returned true for the wrong public key")
	}
}

func TestParsePrivateKeyRejectsWrongLength(t *testing.T) {
	if _, err := ParsePrivateKey([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected an error for a short key")
	}
}
