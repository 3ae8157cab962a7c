package auth

import "testing"

func TestHashers(t *testing.T) {
	tests := []struct {
		name   string
		hasher Hasher
	}{
		{name: "plain", hasher: NewHasher("plain")},
		{name: "bcrypt", hasher: NewHasher("bcrypt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored, err := tt.hasher.Hash("s3cret!pwd")
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if err = tt.hasher.Compare(stored, "s3cret!pwd"); err != nil {
				t.Errorf("Compare() error = %v; want nil", err)
			}
			if err = tt.hasher.Compare(stored, "wrong"); err != ErrPasswordMismatch {
				t.Errorf("Compare() error = %v; want ErrPasswordMismatch", err)
			}
		})
	}
}

func TestNewHasher_scheme(t *testing.T) {
	// plain stores the password as entered; bcrypt never does
	if stored, _ := NewHasher("plain").Hash("pwd12345"); stored != "pwd12345" {
		t.Errorf("plain Hash() = %s; want pwd12345", stored)
	}
	if stored, _ := NewHasher("").Hash("pwd12345"); stored != "pwd12345" {
		t.Errorf("unknown scheme Hash() = %s; want plain fallback", stored)
	}
	if stored, _ := NewHasher("bcrypt").Hash("pwd12345"); stored == "pwd12345" {
		t.Error("bcrypt Hash() stored the plaintext")
	}
}
