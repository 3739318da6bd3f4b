package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// checkAgainstDummy burns the same bcrypt work as a real comparison so that
// unknown emails take as long to reject as wrong passwords.
func checkAgainstDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = HashPassword("bookmarks-timing-equalizer")
	})
	CheckPassword(password, dummyHash)
}
