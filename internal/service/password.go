package service

import "golang.org/x/crypto/bcrypt"

// PasswordHasher encapsula el hashing de secretos antes de persistirlos.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// bcryptHasher implementa PasswordHasher con bcrypt y costo configurable.
// bcrypt sala cada hash con bytes aleatorios, así que dos llamadas con el
// mismo plaintext producen valores distintos.
type bcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// Verify nunca devuelve error: cualquier hash malformado o mismatch es false.
func (h *bcryptHasher) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
