package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityVerifier_RoundTrip(t *testing.T) {
	v := NewIdentityVerifier("shared-secret", "doctaba-identity")

	token, err := v.Sign("ext@doctaba.com", "Ext", "User", time.Minute)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ext@doctaba.com", claims.Email)
	assert.Equal(t, "Ext", claims.GivenName)
	assert.Equal(t, "User", claims.FamilyName)
}

func TestIdentityVerifier_Rejects(t *testing.T) {
	v := NewIdentityVerifier("shared-secret", "doctaba-identity")

	expired, err := v.Sign("ext@doctaba.com", "", "", -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidAssertion)

	other, err := NewIdentityVerifier("other-secret", "doctaba-identity").Sign("ext@doctaba.com", "", "", time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(other)
	assert.ErrorIs(t, err, ErrInvalidAssertion)

	wrongIssuer, err := NewIdentityVerifier("shared-secret", "someone-else").Sign("ext@doctaba.com", "", "", time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(wrongIssuer)
	assert.ErrorIs(t, err, ErrInvalidAssertion)

	noEmail, err := v.Sign("", "", "", time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(noEmail)
	assert.ErrorIs(t, err, ErrInvalidAssertion)

	_, err = v.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestIdentityVerifier_NotConfigured(t *testing.T) {
	_, err := NewIdentityVerifier("", "").Verify("anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
