package hash

import (
	"strings"
	"testing"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(DefaultBcryptCost)

	digest, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "s3cret" || !strings.HasPrefix(digest, "$2") {
		t.Fatalf("digest does not look like bcrypt: %q", digest)
	}

	ok, err := h.Verify("s3cret", digest)
	if err != nil || !ok {
		t.Fatalf("verify own digest: ok=%v err=%v", ok, err)
	}

	ok, err = h.Verify("other", digest)
	if err != nil {
		t.Fatalf("verify mismatch err: %v", err)
	}
	if ok {
		t.Fatal("mismatching secret must not verify")
	}
}

func TestBcryptHasher_MalformedDigest(t *testing.T) {
	h := NewBcryptHasher(0)

	ok, err := h.Verify("whatever", "not-a-digest")
	if ok {
		t.Fatal("malformed digest must not verify")
	}
	if err == nil {
		t.Fatal("malformed digest must be reported as an error")
	}
}

func TestArgon2Hasher_RoundTrip(t *testing.T) {
	h := NewArgon2Hasher()

	digest, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ok, err := h.Verify("s3cret", digest)
	if err != nil || !ok {
		t.Fatalf("verify own digest: ok=%v err=%v", ok, err)
	}

	ok, _ = h.Verify("other", digest)
	if ok {
		t.Fatal("mismatching secret must not verify")
	}
}

func TestNew_SelectsAlgorithm(t *testing.T) {
	if _, err := New("", 0); err != nil {
		t.Fatalf("default: %v", err)
	}
	if _, err := New("argon2id", 0); err != nil {
		t.Fatalf("argon2id: %v", err)
	}
	if _, err := New("md5", 0); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}
