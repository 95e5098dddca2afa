package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// ResumeTokenService mints and verifies the signed tokens a client uses
// to resume effect delivery after a dropped connection. A token binds a
// player, a game kind and the effect cursor already delivered, so the
// registry can replay exactly the effects the client has not seen.
type ResumeTokenService struct {
	secret string
	issuer string
}

// NewResumeTokenService constructs the service with the signing secret.
func NewResumeTokenService(secret, issuer string) *ResumeTokenService {
	return &ResumeTokenService{secret: secret, issuer: issuer}
}

// Generate signs a resume token for the given player, game and cursor.
func (s *ResumeTokenService) Generate(playerID string, game GameKind, cursor uint64) (string, error) {
	if s == nil || s.secret == "" {
		return "", fmt.Errorf("resume token service not configured")
	}
	if playerID == "" {
		return "", fmt.Errorf("playerID is required")
	}

	claims := jwt.MapClaims{
		"iss":    s.issuer,
		"sub":    playerID,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"game":   string(game),
		"cursor": cursor,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify checks a token's signature and subject and returns the cursor a
// resuming client may continue from. A token for another player or game
// is rejected.
func (s *ResumeTokenService) Verify(tokenString, playerID string, game GameKind) (uint64, error) {
	if s == nil || s.secret == "" {
		return 0, fmt.Errorf("resume token service not configured")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("invalid resume token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid resume token claims")
	}
	if sub, _ := claims["sub"].(string); sub != playerID {
		return 0, fmt.Errorf("resume token subject mismatch")
	}
	if g, _ := claims["game"].(string); g != string(game) {
		return 0, fmt.Errorf("resume token game mismatch")
	}

	cursor, ok := claims["cursor"].(float64)
	if !ok || cursor < 0 {
		return 0, fmt.Errorf("resume token missing cursor")
	}
	return uint64(cursor), nil
}
