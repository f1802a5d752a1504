package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash := HashPassword("correct horse battery staple")
	if hash == "" {
		t.Fatal("empty hash")
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword("correct horse battery staple", hash) {
		t.Fatal("valid password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("invalid password accepted")
	}
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash accepted")
	}
}
