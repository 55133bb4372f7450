package service

import (
	"context"
	"testing"
	"time"

	"github.com/calebc9298-pixel/fencepost/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testJWTSecret = "unit-test-secret"

func newAuthFixture(t *testing.T) (AuthService, *memUserRepo) {
	t.Helper()
	users := &memUserRepo{users: map[primitive.ObjectID]*domain.User{}}
	return NewAuthService(users, testJWTSecret, time.Hour), users
}

func TestRegisterCreatesFarmer(t *testing.T) {
	svc, users := newAuthFixture(t)

	user, err := svc.Register(context.Background(), "Dale", "dale@farm.test", "longpassword")
	require.NoError(t, err)
	require.Equal(t, domain.RoleFarmer, user.Role)
	require.Empty(t, user.PasswordHash)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), "Dale", "dale@farm.test", "longpassword")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Dale II", "dale@farm.test", "otherpassword")
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture(t)

	registered, err := svc.Register(context.Background(), "Dale", "dale@farm.test", "longpassword")
	require.NoError(t, err)

	token, user, err := svc.Login(context.Background(), "dale@farm.test", "longpassword")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)
	require.Empty(t, user.PasswordHash)

	claims := &jwtCustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	require.Equal(t, registered.ID.Hex(), claims.UserID)
	require.Equal(t, domain.RoleFarmer, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), "Dale", "dale@farm.test", "longpassword")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "dale@farm.test", "wrong")
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(context.Background(), "nobody@farm.test", "longpassword")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestTokenRequiresIdentity(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Token(context.Background())
	require.ErrorIs(t, err, ErrNoIdentity)
}

func TestTokenMintsShortLivedJWT(t *testing.T) {
	svc, _ := newAuthFixture(t)

	userID := primitive.NewObjectID().Hex()
	ctx := ContextWithIdentity(context.Background(), userID)

	token, err := svc.Token(ctx)
	require.NoError(t, err)

	claims := &jwtCustomClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	// Short lifetime, well under the login token's expiration.
	require.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Minute)
}
