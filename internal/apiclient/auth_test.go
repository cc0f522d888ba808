package apiclient

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubAuthHeaders(t *testing.T) {
	auth := GitHubAuth(NewTokenCredential("ghp_secret123"))

	headers, err := auth.Headers()
	require.NoError(t, err)

	assert.Equal(t, "token ghp_secret123", headers["Authorization"])
	assert.Equal(t, "application/vnd.github.v3+json", headers["Accept"])
}

func TestGitHubAuthValidation(t *testing.T) {
	tests := []struct {
		name string
		cred Credential
	}{
		{
			name: "empty token",
			cred: NewTokenCredential(""),
		},
		{
			name: "wrong credential kind",
			cred: NewBasicCredential("user@example.com", "secret"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GitHubAuth(tt.cred).Headers()
			require.Error(t, err)
			assert.True(t, IsKind(err, KindValidation))
		})
	}
}

func TestJiraAuthHeaders(t *testing.T) {
	auth := JiraAuth(NewBasicCredential("user@example.com", "api-token"))

	headers, err := auth.Headers()
	require.NoError(t, err)

	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("user@example.com:api-token"))
	assert.Equal(t, expected, headers["Authorization"])
	assert.Equal(t, "application/json", headers["Accept"])
}

func TestJiraAuthValidation(t *testing.T) {
	tests := []struct {
		name string
		cred Credential
	}{
		{
			name: "empty token",
			cred: NewBasicCredential("user@example.com", ""),
		},
		{
			name: "missing email",
			cred: NewBasicCredential("", "api-token"),
		},
		{
			name: "wrong credential kind",
			cred: NewTokenCredential("secret"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JiraAuth(tt.cred).Headers()
			require.Error(t, err)
			assert.True(t, IsKind(err, KindValidation))
		})
	}
}

// TestCredentialMasking checks that no fmt verb can render the secret.
func TestCredentialMasking(t *testing.T) {
	secret := "super-secret-token-value"
	cred := NewBasicCredential("user@example.com", secret)

	for _, rendered := range []string{
		fmt.Sprintf("%s", cred),
		fmt.Sprintf("%v", cred),
		fmt.Sprintf("%+v", cred),
		fmt.Sprintf("%#v", cred),
		fmt.Sprint(cred),
	} {
		assert.NotContains(t, rendered, secret)
		assert.Equal(t, maskedCredential, rendered)
	}
}

func TestAuthErrorsNeverContainSecret(t *testing.T) {
	secret := "leaky-secret"

	_, err := GitHubAuth(NewBasicCredential("user@example.com", secret)).Headers()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), secret)

	_, err = JiraAuth(NewBasicCredential("", secret)).Headers()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), secret)
}
