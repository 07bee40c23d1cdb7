package service

import (
	"time"

	"github.com/vibast-solutions/ms-go-jobboard/app/entity"

	"golang.org/x/crypto/bcrypt"
)

// passwordChangeSkew backdates password_changed_at so a token issued in the
// same second as the change still passes the freshness check.
const passwordChangeSkew = time.Second

func hashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func passwordMatches(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

// passwordChangedAfter reports whether the user's password was changed after
// a token issued at issuedAt. Comparison is at second precision.
func passwordChangedAfter(user *entity.User, issuedAt time.Time) bool {
	if !user.PasswordChangedAt.Valid {
		return false
	}
	return issuedAt.Unix() < user.PasswordChangedAt.Time.Unix()
}
