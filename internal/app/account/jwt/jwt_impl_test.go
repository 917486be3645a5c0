package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	authErrors "github.com/jmorelos/accounts-backend/internal/domain/account/errors"
	"github.com/jmorelos/accounts-backend/internal/infra/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func writeTestKeys(t *testing.T) (privPath, pubPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath = filepath.Join(dir, "priv.pem")
	pubPath = filepath.Join(dir, "pub.pem")

	privPem := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privPath, privPem, 0o600))

	pubDer, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPem := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDer})
	require.NoError(t, os.WriteFile(pubPath, pubPem, 0o600))

	return privPath, pubPath
}

func newUtil(t *testing.T) *JwtUtilImpl {
	t.Helper()
	priv, pub := writeTestKeys(t)
	util, err := NewJWTUtil(&config.Config{
		JWTPrivateKeyPath: priv,
		JWTPublicKeyPath:  pub,
		AccessTokenTTL:    time.Minute,
		RefreshTokenTTL:   time.Hour,
		Issuer:            "test",
		Audience:          "test",
	})
	require.NoError(t, err)
	return util
}

func TestJWTUtil_AccessRoundTrip(t *testing.T) {
	util := newUtil(t)
	uid := uuid.New()

	token, exp, jti, err := util.GenerateAccessToken(uid, []string{"user"})
	require.NoError(t, err)
	require.NotEmpty(t, jti)
	require.True(t, exp.After(time.Now()))

	claims, err := util.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, uid.String(), claims.Subject)
	require.Equal(t, []string{"user"}, claims.Roles)
	require.Equal(t, jti, claims.ID)
}

func TestJWTUtil_RefreshRoundTrip(t *testing.T) {
	util := newUtil(t)
	uid := uuid.New()

	token, _, jti, err := util.GenerateRefreshToken(uid)
	require.NoError(t, err)

	claims, err := util.ValidateRefreshToken(token)
	require.NoError(t, err)
	require.Equal(t, uid.String(), claims.Subject)
	require.Equal(t, jti, claims.ID)
}

func TestJWTUtil_ValidateGarbage(t *testing.T) {
	util := newUtil(t)

	_, err := util.ValidateAccessToken("garbage")
	require.True(t, authErrors.IsInvalidToken(err))

	_, err = util.ValidateRefreshToken("garbage")
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestJWTUtil_WrongKey(t *testing.T) {
	util := newUtil(t)
	other := newUtil(t)

	token, _, _, err := util.GenerateAccessToken(uuid.New(), nil)
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	require.True(t, authErrors.IsInvalidToken(err))
}
