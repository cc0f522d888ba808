package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmazur/worklens/internal/apiclient"
	"github.com/tmazur/worklens/internal/logging"
)

// testClient builds a Client whose engine talks to the given server.
func testClient(t *testing.T, serverURL string, version, pageSize, maxPages int) *Client {
	t.Helper()
	transport := apiclient.NewNetTransport(serverURL, 5*time.Second)
	auth := apiclient.JiraAuth(apiclient.NewBasicCredential("user@example.com", "api-token"))
	engine := apiclient.NewEngine(transport, auth, apiclient.JiraDefaults(),
		apiclient.NewTracker(), maxPages, "application/json", logging.GetLogger())
	return &Client{engine: engine, version: version, pageSize: pageSize}
}

func TestProbeVersion(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected int
	}{
		{name: "v3 available", status: 200, expected: 3},
		{name: "v3 missing selects v2", status: 404, expected: 2},
		{name: "server error is inconclusive", status: 500, expected: 2},
		{name: "auth failure is inconclusive", status: 401, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/rest/api/3/myself", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			transport := apiclient.NewNetTransport(server.URL, time.Second)
			auth := apiclient.JiraAuth(apiclient.NewBasicCredential("user@example.com", "api-token"))
			assert.Equal(t, tt.expected, probeVersion(context.Background(), transport, auth))
		})
	}
}

func TestProbeVersionNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	transport := apiclient.NewNetTransport(addr, time.Second)
	auth := apiclient.JiraAuth(apiclient.NewBasicCredential("user@example.com", "api-token"))
	assert.Equal(t, 2, probeVersion(context.Background(), transport, auth))
}

func TestSearchIssuesPaginates(t *testing.T) {
	// 3 issues at page size 2: startAt advances by records received.
	var startAts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/api/2/search", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("Authorization"))
		assert.Equal(t, `project = "PROJ"`, r.URL.Query().Get("jql"))

		startAt := r.URL.Query().Get("startAt")
		startAts = append(startAts, startAt)

		w.Header().Set("Content-Type", "application/json")
		if startAt == "0" {
			fmt.Fprint(w, `{
				"startAt": 0, "maxResults": 2, "total": 3,
				"issues": [
					{"key":"PROJ-1","fields":{"summary":"First","issuetype":{"name":"Bug"},"status":{"name":"Done"},
					 "assignee":{"displayName":"Ann"},"reporter":{"displayName":"Bob"},
					 "created":"2024-05-01T10:30:00.000+0200","resolutiondate":"2024-05-03T09:00:00.000+0200"}},
					{"key":"PROJ-2","fields":{"summary":"Second","issuetype":{"name":"Task"},"status":{"name":"Open"},
					 "assignee":null,"reporter":{"displayName":"Ann"},
					 "created":"2024-05-02T08:00:00.000+0200","resolutiondate":null}}
				]
			}`)
			return
		}
		fmt.Fprint(w, `{
			"startAt": 2, "maxResults": 2, "total": 3,
			"issues": [
				{"key":"PROJ-3","fields":{"summary":"Third","issuetype":{"name":"Story"},"status":{"name":"Open"},
				 "assignee":null,"reporter":{"displayName":"Cay"},
				 "created":"2024-05-04T12:00:00.000+0200","resolutiondate":null}}
			]
		}`)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 2, 2, 10)
	issues, truncated, err := client.SearchIssues(context.Background(), `project = "PROJ"`)

	require.NoError(t, err)
	assert.False(t, truncated)
	require.Len(t, issues, 3)
	assert.Equal(t, []string{"0", "2"}, startAts)

	assert.Equal(t, "PROJ-1", issues[0].Key)
	assert.Equal(t, "PROJ", issues[0].Project)
	assert.Equal(t, "Ann", issues[0].Assignee)
	assert.Equal(t, "Bob", issues[0].Reporter)
	require.NotNil(t, issues[0].ResolvedAt)
	assert.Empty(t, issues[1].Assignee)
	assert.Nil(t, issues[1].ResolvedAt)
}

func TestSearchIssuesExactMultipleStopsAtTotal(t *testing.T) {
	// 4 issues at page size 2: both pages come back full, but the envelope's
	// total proves the second page is the last one, so no extra request is
	// spent discovering an empty page.
	issue := `{"key":"PROJ-%d","fields":{"summary":"S","issuetype":{"name":"Task"},"status":{"name":"Open"},
		"assignee":null,"reporter":{"displayName":"Ann"},
		"created":"2024-05-01T10:30:00.000+0200","resolutiondate":null}}`

	var startAts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startAt := r.URL.Query().Get("startAt")
		startAts = append(startAts, startAt)

		w.Header().Set("Content-Type", "application/json")
		if startAt == "0" {
			fmt.Fprintf(w, `{"startAt":0,"maxResults":2,"total":4,"issues":[`+issue+`,`+issue+`]}`, 1, 2)
			return
		}
		fmt.Fprintf(w, `{"startAt":2,"maxResults":2,"total":4,"issues":[`+issue+`,`+issue+`]}`, 3, 4)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 2, 2, 10)
	issues, truncated, err := client.SearchIssues(context.Background(), `project = "PROJ"`)

	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Len(t, issues, 4)
	assert.Equal(t, []string{"0", "2"}, startAts)
}

func TestSearchIssuesRetryAfter(t *testing.T) {
	// 429 with Retry-After on the first call, success on the second: one
	// retry, and the rate-limit state reflects the header.
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"startAt":0,"maxResults":50,"total":0,"issues":[]}`)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 2, 50, 10)
	start := time.Now()
	issues, _, err := client.SearchIssues(context.Background(), "project = X")

	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestSearchIssuesEmptyJQL(t *testing.T) {
	client := testClient(t, "http://unused.invalid", 2, 50, 10)
	_, _, err := client.SearchIssues(context.Background(), "   ")

	require.Error(t, err)
	assert.True(t, apiclient.IsKind(err, apiclient.KindValidation))
}

func TestListComments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/api/3/issue/PROJ-1/comment", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"startAt": 0, "maxResults": 50, "total": 2,
			"comments": [
				{"author":{"displayName":"Ann"},"created":"2024-05-01T10:30:00.000+0200"},
				{"author":{"displayName":"Bob"},"created":"2024-05-01T11:00:00.000+0200"}
			]
		}`)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 3, 50, 10)
	comments, _, err := client.ListComments(context.Background(), "PROJ-1")

	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "PROJ-1", comments[0].IssueKey)
	assert.Equal(t, "Ann", comments[0].Author)
}

func TestJiraTimeParsing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "jira offset format",
			input: `"2024-05-01T10:30:00.000+0200"`,
			want:  time.Date(2024, 5, 1, 10, 30, 0, 0, time.FixedZone("", 2*3600)),
		},
		{
			name:  "rfc3339",
			input: `"2024-05-01T10:30:00Z"`,
			want:  time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var jt jiraTime
			require.NoError(t, jt.UnmarshalJSON([]byte(tt.input)))
			assert.True(t, tt.want.Equal(jt.Time), "got %v", jt.Time)
		})
	}

	var jt jiraTime
	assert.Error(t, jt.UnmarshalJSON([]byte(`"yesterday"`)))
}

func TestProjectKey(t *testing.T) {
	assert.Equal(t, "PROJ", projectKey("PROJ-123"))
	assert.Equal(t, "ABC", projectKey("ABC-1"))
	assert.Equal(t, "NOKEY", projectKey("NOKEY"))
}
