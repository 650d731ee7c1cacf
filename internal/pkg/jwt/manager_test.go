package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Secret:   "test-secret-for-unit-tests",
		Issuer:   "cobramax",
		Audience: "cobramax-users",
		TTL:      time.Hour,
	}
}

func TestManagerRoundTrip(t *testing.T) {
	m, err := NewManager(testConfig())
	require.NoError(t, err)

	token, jti, err := m.Generate(42, "cobrador", "carlos@cobramax.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "cobrador", claims.Role)
	assert.Equal(t, "carlos@cobramax.com", claims.Email)
	assert.Equal(t, jti, claims.ID)
}

func TestManagerRejectsForeignToken(t *testing.T) {
	m1, err := NewManager(testConfig())
	require.NoError(t, err)

	other := testConfig()
	other.Secret = "a-different-secret-entirely"
	m2, err := NewManager(other)
	require.NoError(t, err)

	token, _, err := m1.Generate(1, "admin", "a@cobramax.com")
	require.NoError(t, err)

	_, err = m2.Verify(token)
	assert.Error(t, err)
}

func TestManagerRejectsGarbage(t *testing.T) {
	m, err := NewManager(testConfig())
	require.NoError(t, err)

	_, err = m.Verify("not.a.token")
	assert.Error(t, err)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager(Config{})
	assert.Error(t, err)
}

func TestClaimsRoleHelpers(t *testing.T) {
	c := &Claims{Role: "admin"}
	assert.True(t, c.IsAdmin())
	assert.True(t, c.HasRole("admin"))
	assert.False(t, c.HasRole("cobrador"))

	c = &Claims{Role: "oficina"}
	assert.False(t, c.IsAdmin())
	assert.True(t, c.IsStaff())
}
