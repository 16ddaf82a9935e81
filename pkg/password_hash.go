package pkg

import "golang.org/x/crypto/bcrypt"

// HashToken bcrypt-hashes an API token. A cost outside bcrypt's range falls back to the default.
func HashToken(token string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	return BytesToString(bytes), err
}

func CheckTokenHash(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
