package apiclient

import (
	"encoding/base64"
	"fmt"
)

// maskedCredential is the only representation of a secret that may appear in
// logs, error messages, or formatted output.
const maskedCredential = "***"

// CredentialKind distinguishes the two authentication schemes in use.
type CredentialKind int

const (
	// CredentialToken is a bearer-style personal access token (GitHub).
	CredentialToken CredentialKind = iota
	// CredentialBasic is an email+token pair sent as HTTP Basic (Jira).
	CredentialBasic
)

// Credential holds an API secret. The zero value is empty and fails
// validation. Fields are unexported so the secret cannot leak through
// serialization; fmt verbs render the fixed mask only.
type Credential struct {
	kind  CredentialKind
	token string
	email string
}

// NewTokenCredential builds a bearer token credential.
func NewTokenCredential(token string) Credential {
	return Credential{kind: CredentialToken, token: token}
}

// NewBasicCredential builds an email+token credential for HTTP Basic auth.
func NewBasicCredential(email, token string) Credential {
	return Credential{kind: CredentialBasic, token: token, email: email}
}

// Kind returns the credential's authentication scheme.
func (c Credential) Kind() CredentialKind { return c.kind }

// Empty reports whether no secret is present.
func (c Credential) Empty() bool { return c.token == "" }

// String implements fmt.Stringer and always returns the mask.
func (c Credential) String() string { return maskedCredential }

// GoString implements fmt.GoStringer so %#v cannot reveal the secret either.
func (c Credential) GoString() string { return maskedCredential }

// AuthStrategy builds the authentication and content-negotiation headers for
// one upstream. Implementations are pure functions of the credential: no
// side effects, no logging, and the raw secret never escapes except inside
// the returned Authorization header value.
type AuthStrategy interface {
	// Headers returns the headers to attach to every request. Fails with
	// KindValidation when the credential is empty or structurally wrong.
	Headers() (map[string]string, error)
}

// gitHubAuth produces "Authorization: token <PAT>" plus the v3 Accept header.
type gitHubAuth struct {
	cred Credential
}

// GitHubAuth returns the AuthStrategy for the GitHub REST v3 API.
func GitHubAuth(cred Credential) AuthStrategy {
	return gitHubAuth{cred: cred}
}

func (a gitHubAuth) Headers() (map[string]string, error) {
	if a.cred.Empty() {
		return nil, NewError(KindValidation, "github token is empty")
	}
	if a.cred.kind != CredentialToken {
		return nil, NewError(KindValidation, "github requires a token credential, got basic")
	}
	return map[string]string{
		"Authorization": "token " + a.cred.token,
		"Accept":        "application/vnd.github.v3+json",
	}, nil
}

// jiraAuth produces "Authorization: Basic base64(email:token)" plus the JSON
// Accept header.
type jiraAuth struct {
	cred Credential
}

// JiraAuth returns the AuthStrategy for the Jira REST API.
func JiraAuth(cred Credential) AuthStrategy {
	return jiraAuth{cred: cred}
}

func (a jiraAuth) Headers() (map[string]string, error) {
	if a.cred.Empty() {
		return nil, NewError(KindValidation, "jira token is empty")
	}
	if a.cred.kind != CredentialBasic {
		return nil, NewError(KindValidation, "jira requires a basic credential, got token")
	}
	if a.cred.email == "" {
		return nil, NewError(KindValidation, "jira credential is missing the email")
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", a.cred.email, a.cred.token)))
	return map[string]string{
		"Authorization": "Basic " + encoded,
		"Accept":        "application/json",
	}, nil
}
