package user

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type CustomClaims struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

const (
	accessTokenTTL  = 30 * time.Minute
	refreshTokenTTL = 24 * time.Hour
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func GenerateAccessToken(u *User) (string, error) {
	return generateToken(u, os.Getenv("ACCESS_TOKEN_SECRET"), accessTokenTTL)
}

func GenerateRefreshToken(u *User) (string, error) {
	return generateToken(u, os.Getenv("REFRESH_TOKEN_SECRET"), refreshTokenTTL)
}

func generateToken(u *User, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("token secret is not set")
	}

	claims := CustomClaims{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseAccessToken(tokenStr string) (*CustomClaims, error) {
	return parseToken(tokenStr, os.Getenv("ACCESS_TOKEN_SECRET"))
}

func ParseRefreshToken(tokenStr string) (*CustomClaims, error) {
	return parseToken(tokenStr, os.Getenv("REFRESH_TOKEN_SECRET"))
}

func parseToken(tokenStr, secret string) (*CustomClaims, error) {
	if secret == "" {
		return nil, errors.New("token secret is not set")
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&CustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
