package utils

import (
	"crypto/rand"
	"math/big"
)

const passwordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomPassword returns a password of random length within
// [minLength, maxLength], used for students registered through a payment.
func GenerateRandomPassword(minLength, maxLength int) (string, error) {
	span, err := rand.Int(rand.Reader, big.NewInt(int64(maxLength-minLength+1)))
	if err != nil {
		return "", err
	}
	length := minLength + int(span.Int64())

	password := make([]byte, length)
	for i := range password {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordChars))))
		if err != nil {
			return "", err
		}
		password[i] = passwordChars[idx.Int64()]
	}

	return string(password), nil
}
