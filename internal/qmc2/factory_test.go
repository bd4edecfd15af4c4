package qmc2

import "testing"

func TestDecryptFactorySelectsByKeyLength(t *testing.T) {
	shortKey := make([]byte, 200)
	for i := range shortKey {
		shortKey[i] = byte(i)
	}
	ekey, err := GenerateEKey(shortKey)
	if err != nil {
		t.Fatalf("GenerateEKey: %v", err)
	}
	dec, err := DecryptFactory(ekey)
	if err != nil {
		t.Fatalf("DecryptFactory: %v", err)
	}
	if _, ok := dec.(*mapCipher); !ok {
		t.Fatalf("DecryptFactory(%d-byte key) = %T, want *mapCipher", len(shortKey), dec)
	}

	longKey := make([]byte, 400)
	for i := range longKey {
		longKey[i] = byte(i)
	}
	ekey, err = GenerateEKey(longKey)
	if err != nil {
		t.Fatalf("GenerateEKey: %v", err)
	}
	dec, err = DecryptFactory(ekey)
	if err != nil {
		t.Fatalf("DecryptFactory: %v", err)
	}
	if _, ok := dec.(*rc4Cipher); !ok {
		t.Fatalf("DecryptFactory(%d-byte key) = %T, want *rc4Cipher", len(longKey), dec)
	}
}

func TestDecryptFactoryPropagatesParseError(t *testing.T) {
	if _, err := DecryptFactory("not valid base64 !!"); err == nil {
		t.Fatal("DecryptFactory: expected error for invalid ekey")
	}
}
