package apiclient

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Cursor is the upstream-specific pagination state. It advances
// monotonically and never decreases.
type Cursor interface {
	// Apply attaches the cursor's current position to the query parameters.
	Apply(q url.Values)

	// Advance moves the cursor past a page that returned the given number
	// of records.
	Advance(received int)

	// PageSize is the number of records requested per page. A page with
	// fewer records signals the natural end of the collection.
	PageSize() int
}

// PageCursor drives GitHub-style page/per_page pagination. Pages start at 1.
type PageCursor struct {
	page    int
	perPage int
}

// NewPageCursor returns a cursor requesting perPage records per page.
func NewPageCursor(perPage int) *PageCursor {
	return &PageCursor{page: 1, perPage: perPage}
}

// Apply implements Cursor.
func (c *PageCursor) Apply(q url.Values) {
	q.Set("page", strconv.Itoa(c.page))
	q.Set("per_page", strconv.Itoa(c.perPage))
}

// Advance implements Cursor.
func (c *PageCursor) Advance(int) {
	c.page++
}

// PageSize implements Cursor.
func (c *PageCursor) PageSize() int { return c.perPage }

// OffsetCursor drives Jira-style startAt/maxResults pagination. The offset
// advances by the number of records actually received.
type OffsetCursor struct {
	startAt    int
	maxResults int
}

// NewOffsetCursor returns a cursor requesting maxResults records per page.
func NewOffsetCursor(maxResults int) *OffsetCursor {
	return &OffsetCursor{maxResults: maxResults}
}

// Apply implements Cursor.
func (c *OffsetCursor) Apply(q url.Values) {
	q.Set("startAt", strconv.Itoa(c.startAt))
	q.Set("maxResults", strconv.Itoa(c.maxResults))
}

// Advance implements Cursor.
func (c *OffsetCursor) Advance(received int) {
	c.startAt += received
}

// PageSize implements Cursor.
func (c *OffsetCursor) PageSize() int { return c.maxResults }

// Page reports the outcome of decoding one response body.
type Page struct {
	// Count is the number of records the page held.
	Count int

	// Done is set when the body itself proves the collection is exhausted,
	// e.g. a Jira envelope whose startAt plus page length reaches total.
	Done bool
}

// PageFunc decodes one page body into the caller's accumulator and reports
// what the page contained.
type PageFunc func(body []byte) (Page, error)

// FetchResult summarizes a paginated fetch. Records decoded before a
// terminal failure are kept by the caller's accumulator, so a non-nil error
// from FetchAll can still accompany a partial result.
type FetchResult struct {
	// Pages is the number of pages successfully fetched and decoded.
	Pages int

	// Records is the total number of records decoded.
	Records int

	// Truncated is set when the page ceiling stopped the fetch before the
	// upstream signaled the end of the collection.
	Truncated bool
}

// Engine drives Transport, RetryPolicy, and Tracker through a paginated
// fetch. It is the only place where retries, rate-limit waits, and cursor
// advancement happen; facade operations express themselves purely as an
// endpoint plus a page decoder.
type Engine struct {
	transport Transport
	auth      AuthStrategy
	policy    RetryPolicy
	tracker   *Tracker
	maxPages  int
	expected  string
	log       *slog.Logger

	// sleep is replaceable for deterministic tests.
	sleep func(time.Duration)
}

// NewEngine composes a pagination engine. expectedContentType is checked,
// warn-only, on every response. maxPages caps the number of pages fetched
// per call to FetchAll; a non-positive ceiling is raised to one page.
func NewEngine(transport Transport, auth AuthStrategy, policy RetryPolicy, tracker *Tracker, maxPages int, expectedContentType string, log *slog.Logger) *Engine {
	if maxPages < 1 {
		maxPages = 1
	}
	return &Engine{
		transport: transport,
		auth:      auth,
		policy:    policy,
		tracker:   tracker,
		maxPages:  maxPages,
		expected:  expectedContentType,
		log:       log,
		sleep:     time.Sleep,
	}
}

// Tracker exposes the engine's rate-limit tracker so facade clients can
// surface the current state to callers.
func (e *Engine) Tracker() *Tracker { return e.tracker }

// FetchAll repeatedly issues spec with the cursor's position attached until
// the upstream signals the end of the collection, the page ceiling is hit,
// or a failure becomes terminal. Termination conditions in priority order:
// an end-of-data signal (the decoder reporting Done, a Link header without
// rel="next", or a short page), the maxPages ceiling (Truncated is set and
// a warning logged), a non-retryable or budget-exhausted failure (the error
// is returned; pages already decoded stay with the caller).
func (e *Engine) FetchAll(ctx context.Context, spec RequestSpec, cursor Cursor, decode PageFunc) (FetchResult, error) {
	var res FetchResult

	headers, err := e.auth.Headers()
	if err != nil {
		return res, err
	}

	for res.Pages < e.maxPages {
		q := make(url.Values, len(spec.Query)+2)
		for k, v := range spec.Query {
			q[k] = v
		}
		cursor.Apply(q)

		pageSpec := spec
		pageSpec.Query = q

		env, err := e.executeWithRetry(ctx, pageSpec, headers)
		if err != nil {
			return res, err
		}

		if warn := CheckContentType(env, e.expected); warn != "" {
			e.log.Warn("unexpected content type", "path", spec.Path, "warning", warn)
		}

		page, err := decode(env.Body)
		if err != nil {
			return res, NewError(KindUnknown, "decoding page %d of %s: %v", res.Pages+1, spec.Path, err)
		}

		res.Pages++
		res.Records += page.Count

		if page.Done || !hasNextPage(env, page.Count, cursor.PageSize()) {
			return res, nil
		}
		cursor.Advance(page.Count)
	}

	res.Truncated = true
	e.log.Warn("page ceiling reached, results may be incomplete",
		"path", spec.Path,
		"max_pages", e.maxPages,
		"records", res.Records)
	return res, nil
}

// hasNextPage reports whether the upstream left more records to fetch. A
// Link header is authoritative when present; without one a full page is
// assumed to continue.
func hasNextPage(env *ResponseEnvelope, count, pageSize int) bool {
	if link := env.Header.Get("Link"); link != "" {
		return strings.Contains(link, `rel="next"`)
	}
	return count >= pageSize
}

// executeWithRetry performs one logical request: a transport call plus any
// retries the policy allows. Rate-limit waits come from the tracker and are
// logged before sleeping so the user sees why the run pauses.
func (e *Engine) executeWithRetry(ctx context.Context, spec RequestSpec, headers map[string]string) (*ResponseEnvelope, error) {
	rc := RetryContext{Policy: e.policy}

	for {
		env, err := e.transport.Execute(ctx, spec, headers)
		if err == nil {
			e.tracker.Observe(env)
			if env.StatusCode < 400 {
				return env, nil
			}
			err = classifyResponse(env)
		}

		rc.LastKind = KindOf(err)
		if !rc.ShouldRetry() {
			return nil, err
		}

		var delay time.Duration
		if rc.LastKind == KindRateLimited {
			delay = e.tracker.WaitDuration(rc.LastKind)
		} else {
			delay = rc.NextDelay()
		}

		e.log.Warn("request failed, waiting before retry",
			"path", spec.Path,
			"kind", rc.LastKind.String(),
			"wait", delay,
			"attempt", rc.Attempt+1,
			"max_attempts", rc.Policy.MaxAttempts)
		e.sleep(delay)
		rc.Attempt++
	}
}
