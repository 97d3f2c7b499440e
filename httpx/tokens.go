package httpx

import (
	"context"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/gofrs/uuid"
	"github.com/lestrrat-go/jwx/jwt"
	"github.com/pkg/errors"
)

// TokenIssuer signs and verifies the HS256 bearer tokens handed out at login.
type TokenIssuer struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
	now  func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		auth: jwtauth.New("HS256", []byte(secret), nil),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (ti *TokenIssuer) Auth() *jwtauth.JWTAuth {
	return ti.auth
}

// Issue returns a token for the user, valid for the issuer TTL.
func (ti *TokenIssuer) Issue(userID int64) (string, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(err, "token id")
	}

	now := ti.now()
	claims := map[string]interface{}{
		"sub": strconv.FormatInt(userID, 10),
		"jti": jti.String(),
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, now.Add(ti.ttl))

	_, token, err := ti.auth.Encode(claims)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}

// UserID reads the user id out of the token verified for the request.
func UserID(ctx context.Context) (int64, error) {
	token, _, err := jwtauth.FromContext(ctx)
	if err != nil {
		return 0, err
	}
	if token == nil {
		return 0, jwtauth.ErrNoTokenFound
	}
	return subjectID(token)
}

func subjectID(token jwt.Token) (int64, error) {
	id, err := strconv.ParseInt(token.Subject(), 10, 64)
	if err != nil || id <= 0 {
		return 0, jwtauth.ErrUnauthorized
	}
	return id, nil
}
