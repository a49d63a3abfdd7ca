package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"account-api/internal/domain"
)

// SessionService emite y valida tokens de sesión firmados. El token es el
// único estado de sesión: no se persiste nada en el Credential Store.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	store  RevocationStore
}

// SessionClaims es el contenido firmado de la cookie de sesión.
type SessionClaims struct {
	UserID    string `json:"uid"`
	Username  string `json:"username"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Identity reconstruye la identidad embebida en los claims.
func (c SessionClaims) Identity() domain.Identity {
	return domain.Identity{
		ID:        c.UserID,
		Username:  c.Username,
		Firstname: c.Firstname,
		Lastname:  c.Lastname,
	}
}

var (
	ErrSessionInvalid = errors.New("session invalid")
	ErrSessionExpired = errors.New("session expired")
)

// DefaultSessionTTL replica la vida de 2 horas de la cookie original.
const DefaultSessionTTL = 2 * time.Hour

func NewSessionService(secret string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "account-api",
		store:  NewMemoryRevocationStore(),
	}
}

func NewSessionServiceWithStore(secret string, ttl time.Duration, store RevocationStore) *SessionService {
	svc := NewSessionService(secret, ttl)
	if store != nil {
		svc.store = store
	}
	return svc
}

// TTL expone la vida del token para alinear el MaxAge de la cookie.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Mint firma un token de sesión para la identidad dada. El expiry es
// iat + TTL fijo; no hay renovación deslizante.
func (s *SessionService) Mint(user domain.User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSessionInvalid
	}
	now := time.Now().UTC()
	claims := SessionClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Firstname: user.Firstname,
		Lastname:  user.Lastname,
		TokenType: "session",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifica firma, expiración, emisor y revocación. Cualquier fallo se
// trata aguas arriba como "sin sesión": nunca interrumpe un request por sí
// solo, solo fuerza la verificación de credenciales.
func (s *SessionService) Parse(token string) (SessionClaims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(token) == "" {
		return SessionClaims{}, ErrSessionInvalid
	}

	var claims SessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrSessionExpired
		}
		return SessionClaims{}, ErrSessionInvalid
	}

	if !s.isValidClaims(claims) {
		return SessionClaims{}, ErrSessionInvalid
	}
	if s.store != nil {
		revoked, err := s.store.IsRevoked(claims.ID)
		if err != nil || revoked {
			return SessionClaims{}, ErrSessionInvalid
		}
	}
	return claims, nil
}

// Revoke anula el jti del token por lo que le queda de vida, para que una
// cookie robada no sobreviva al signout. Best-effort: un token ilegible no es
// un error del signout.
func (s *SessionService) Revoke(token string) error {
	claims, err := s.Parse(token)
	if err != nil {
		return nil
	}
	if s.store == nil || claims.ID == "" {
		return nil
	}
	remaining := s.ttl
	if claims.ExpiresAt != nil {
		remaining = time.Until(claims.ExpiresAt.Time)
	}
	if remaining <= 0 {
		return nil
	}
	return s.store.Revoke(claims.ID, remaining)
}

func (s *SessionService) isValidClaims(claims SessionClaims) bool {
	if claims.TokenType != "session" {
		return false
	}
	if strings.TrimSpace(claims.UserID) == "" || strings.TrimSpace(claims.Username) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
