package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid rejoin token")
	ErrExpiredToken = errors.New("rejoin token expired")
)

// rejoinClaims binds a token to one seat in one room.
type rejoinClaims struct {
	RoomCode string `json:"room"`
	PlayerID string `json:"pid"`
	jwt.RegisteredClaims
}

// Manager signs and checks HS256 rejoin tokens.
type Manager struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewManager(secretKey string, ttl time.Duration) *Manager {
	return &Manager{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

func (m *Manager) Issue(roomCode, playerID string) (string, error) {
	now := m.now()
	claims := rejoinClaims{
		RoomCode: roomCode,
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
}

func (m *Manager) Verify(tokenString string) (string, string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &rejoinClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now))

	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", "", ErrExpiredToken
	}
	if err != nil {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*rejoinClaims)
	if !ok || !token.Valid || claims.RoomCode == "" || claims.PlayerID == "" {
		return "", "", ErrInvalidToken
	}
	return claims.RoomCode, claims.PlayerID, nil
}
