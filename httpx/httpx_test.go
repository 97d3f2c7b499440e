package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/lestrrat-go/jwx/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/survey-studio/database"
)

func TestTokenIssuer(t *testing.T) {
	issuedAt := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	ti := NewTokenIssuer("secret", time.Hour)
	ti.now = func() time.Time { return issuedAt }

	a, err := ti.Issue(7)
	require.NoError(t, err)
	b, err := ti.Issue(7)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "every token has its own id")

	token, err := ti.Auth().Decode(a)
	require.NoError(t, err)
	assert.Equal(t, "7", token.Subject())
	assert.True(t, issuedAt.Equal(token.IssuedAt()))
	assert.True(t, issuedAt.Add(time.Hour).Equal(token.Expiration()))
	assert.NotEmpty(t, token.JwtID())

	ctx := jwtauth.NewContext(context.Background(), token, nil)
	id, err := UserID(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)

	_, err = UserID(context.Background())
	assert.ErrorIs(t, err, jwtauth.ErrNoTokenFound)
}

func TestSubjectID(t *testing.T) {
	for _, sub := range []string{"", "abc", "0", "-3"} {
		token := jwt.New()
		require.NoError(t, token.Set(jwt.SubjectKey, sub))
		_, err := subjectID(token)
		assert.ErrorIs(t, err, jwtauth.ErrUnauthorized, sub)
	}

	token := jwt.New()
	require.NoError(t, token.Set(jwt.SubjectKey, "12"))
	id, err := subjectID(token)
	require.NoError(t, err)
	assert.EqualValues(t, 12, id)
}

func TestCredentials(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	id, err := RegisterUser(ctx, db, "Ann", "ann@x.com", "password1")
	require.NoError(t, err)

	got, err := VerifyCredentials(ctx, db, "ann@x.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = VerifyCredentials(ctx, db, "ann@x.com", "password2")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = VerifyCredentials(ctx, db, "bob@x.com", "password1")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestResponseBuffer(t *testing.T) {
	buf := NewResponseBuffer()
	assert.Equal(t, http.StatusOK, buf.Status())

	buf.Header().Set("Content-Type", "text/plain")
	buf.WriteHeader(http.StatusNotFound)
	buf.WriteHeader(http.StatusOK)
	buf.Write([]byte("missing"))
	assert.Equal(t, http.StatusNotFound, buf.Status())
	assert.Equal(t, "missing", string(buf.Body()))

	buf.Reset()
	assert.Empty(t, buf.Body())
	assert.Empty(t, buf.Header().Get("Content-Type"))

	buf.Write([]byte("replaced"))
	rec := httptest.NewRecorder()
	require.NoError(t, buf.Flush(rec))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "replaced", rec.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	LogNotFound(rec, httptest.NewRequest(http.MethodGet, "/", nil), "get_survey", 3)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"survey 3 not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	LogInternalError(rec, httptest.NewRequest(http.MethodGet, "/", nil), "db.test", assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())
}
