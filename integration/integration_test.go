//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	carevault "github.com/carevault/client-go"
)

var baseURL string

func TestMain(m *testing.M) {
	// Load .env file if it exists (won't error if missing)
	if err := godotenv.Load("../.env"); err != nil {
		os.Stderr.WriteString("Note: .env file not found at project root\n")
	}

	baseURL = os.Getenv("CAREVAULT_URL")
	if baseURL == "" {
		os.Stderr.WriteString("Skipping integration tests: CAREVAULT_URL not set\n")
		os.Exit(0)
	}

	os.Stderr.WriteString("Running integration tests against " + baseURL + "\n")
	os.Exit(m.Run())
}

func newClient(t *testing.T) *carevault.Client {
	t.Helper()

	client, err := carevault.New(baseURL,
		carevault.WithTimeout(30*time.Second),
		carevault.WithRetries(2),
	)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

// freshIdentity returns an identity unlikely to collide across runs.
func freshIdentity(prefix string) string {
	return fmt.Sprintf("%s+%d@carevault-sdk-test.example.com", prefix, time.Now().UnixNano())
}

func registerPatient(t *testing.T, client *carevault.Client, prefix, password string) *carevault.Session {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	session, err := client.Register(ctx, freshIdentity(prefix), password,
		carevault.ProfileDocument{"firstName": "Integration"})
	require.NoError(t, err)
	return session
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	identity := freshIdentity("lifecycle")
	session, err := client.Register(ctx, identity, "Sesame123",
		carevault.ProfileDocument{"firstName": "Jean"})
	require.NoError(t, err)
	require.NotEmpty(t, session.UserID)
	masterKey := session.MasterKeyPlain

	require.NoError(t, client.Logout())

	session, err = client.Login(ctx, identity, "Sesame123")
	require.NoError(t, err)
	assert.Equal(t, masterKey, session.MasterKeyPlain)
	assert.Equal(t, "Jean", session.Profile["firstName"])
}

func TestWrongPasswordRejected(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	identity := freshIdentity("wrongpass")
	_, err := client.Register(ctx, identity, "Sesame123", nil)
	require.NoError(t, err)
	require.NoError(t, client.Logout())

	_, err = client.Login(ctx, identity, "NotThepassword1")
	assert.ErrorIs(t, err, carevault.ErrUnauthorized)
}

func TestProfileUpdatePersists(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	identity := freshIdentity("profile")
	_, err := client.Register(ctx, identity, "Sesame123",
		carevault.ProfileDocument{"firstName": "Jean"})
	require.NoError(t, err)

	require.NoError(t, client.UpdateProfile(ctx, carevault.ProfileDocument{
		"firstName": "Jean",
		"objective": "better sleep",
	}))

	require.NoError(t, client.Logout())
	session, err := client.Login(ctx, identity, "Sesame123")
	require.NoError(t, err)
	assert.Equal(t, "better sleep", session.Profile["objective"])
}

func TestPasswordChange(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	identity := freshIdentity("passchange")
	session, err := client.Register(ctx, identity, "OldPass123",
		carevault.ProfileDocument{"firstName": "Jean"})
	require.NoError(t, err)
	masterKey := session.MasterKeyPlain

	require.NoError(t, client.ChangePassword(ctx, "OldPass123", "NewPass456"))
	require.NoError(t, client.Logout())

	_, err = client.Login(ctx, identity, "OldPass123")
	assert.ErrorIs(t, err, carevault.ErrUnauthorized)

	session, err = client.Login(ctx, identity, "NewPass456")
	require.NoError(t, err)
	assert.Equal(t, masterKey, session.MasterKeyPlain)
	assert.Equal(t, "Jean", session.Profile["firstName"])
}
