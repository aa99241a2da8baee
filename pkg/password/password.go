package password

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Cost used for new hashes. Tests may lower it to bcrypt.MinCost.
var Cost = bcrypt.DefaultCost

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// Hash returns the bcrypt hash of plain
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plain matches hash. An empty hash never matches.
func Verify(plain, hash string) bool {
	if hash == "" {
		Burn(plain)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Burn spends one comparison's worth of work so that logins for unknown
// accounts take as long as wrong passwords.
func Burn(plain string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("forum-dummy-password"), Cost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
