package helpers

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenOTPCode generates a secure random 6-digit OTP code in [100000, 999999].
// The range never needs zero padding but Sprintf keeps the width explicit.
func GenOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
