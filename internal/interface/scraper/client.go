package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/santistebanc/motia/internal/domain/entity"
	"github.com/santistebanc/motia/internal/domain/repository"
	"github.com/santistebanc/motia/pkg/logger"
	"github.com/santistebanc/motia/pkg/utils"
)

// Poll response field indexes, reverse-engineered from observed
// traffic. The contract is fixed but unverified upstream, so every
// access is bounds-checked.
const (
	pollFieldDone    = 0
	pollFieldCount   = 1
	pollFieldPayload = 6
	pollFieldMin     = 7
)

const defaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

var searchDataRe = regexp.MustCompile(`(?s)var\s+searchData\s*=\s*(\{.*?\})\s*;`)

// ClientConfig carries the tunables for the fare site client.
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	MaxPolls  int
	PollDelay time.Duration
	Timeout   time.Duration
}

// Client drives the fare site's two-phase search protocol: an initial
// request that opens a session and returns an opaque job payload, then
// a bounded poll loop until the remote job reports completion.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxPolls   int
	pollDelay  time.Duration
	extractor  *Extractor
	logger     logger.Logger
}

// NewClient creates a fare site client
func NewClient(cfg ClientConfig, extractor *Extractor, logger logger.Logger) repository.SearchProvider {
	maxPolls := cfg.MaxPolls
	if maxPolls <= 0 {
		maxPolls = 20
	}
	pollDelay := cfg.PollDelay
	if pollDelay <= 0 {
		pollDelay = time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		maxPolls:   maxPolls,
		pollDelay:  pollDelay,
		extractor:  extractor,
		logger:     logger,
	}
}

// Search runs one search job to completion. Success is false only on a
// transport-level failure; a finished job with no results and a job
// that never reports completion within the poll budget both succeed
// with an empty itinerary list.
func (c *Client) Search(ctx context.Context, params entity.SearchParams) entity.SearchOutcome {
	job, cookies, err := c.initiate(ctx, params)
	if err != nil {
		c.logger.Error("Search initiation failed", "from", params.From, "to", params.To, "error", err)
		return entity.SearchOutcome{Success: false, Message: err.Error()}
	}

	for attempt := 0; attempt < c.maxPolls; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return entity.SearchOutcome{Success: false, Cookies: cookies, Message: ctx.Err().Error()}
			case <-time.After(c.pollDelay):
			}
		}

		body, issued, terminalErr, retryable := c.poll(ctx, job, cookies)
		cookies = mergeCookies(cookies, issued)
		if terminalErr != nil {
			if retryable {
				c.logger.Debug("Non-terminal poll page", "attempt", attempt, "reason", terminalErr.Error())
				continue
			}
			c.logger.Error("Poll transport failure", "attempt", attempt, "error", terminalErr)
			return entity.SearchOutcome{Success: false, Cookies: cookies, Message: terminalErr.Error()}
		}

		fields := strings.Split(body, "|")
		if len(fields) < pollFieldMin {
			c.logger.Warn("Short poll record", "attempt", attempt, "fields", len(fields))
			continue
		}
		if fields[pollFieldDone] != "Y" {
			continue
		}

		count := 0
		if n, err := strconv.Atoi(strings.TrimSpace(fields[pollFieldCount])); err == nil {
			count = n
		}
		c.logger.Info("Search job finished", "items", count, "polls", attempt+1)

		payload := fields[pollFieldPayload]
		if strings.Contains(payload, "%") {
			if decoded, err := url.QueryUnescape(payload); err == nil {
				payload = decoded
			}
		}

		itineraries, err := c.extractor.Extract(payload)
		if err != nil {
			return entity.SearchOutcome{Success: false, Cookies: cookies, Message: err.Error()}
		}
		return entity.SearchOutcome{
			Finished:    true,
			Itineraries: itineraries,
			Cookies:     cookies,
			Success:     true,
		}
	}

	c.logger.Warn("Poll budget exhausted before job finished", "maxPolls", c.maxPolls)
	return entity.SearchOutcome{Finished: false, Cookies: cookies, Success: true}
}

// initiate opens the session and captures the job payload. A payload
// without a job token is fatal for this search; polling without one is
// meaningless.
func (c *Client) initiate(ctx context.Context, params entity.SearchParams) (map[string]string, string, error) {
	query := url.Values{}
	query.Set("from", params.From)
	query.Set("to", params.To)
	query.Set("depart", params.DepartureDate)
	if params.ReturnDate != "" {
		query.Set("return", params.ReturnDate)
	}
	if params.Cabin != "" {
		query.Set("cabin", params.Cabin)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create search request: %w", err)
	}
	c.setBrowserHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to send search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("search request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read search response: %w", err)
	}

	cookies := mergeCookies("", resp.Cookies())

	job, err := parseJobPayload(string(body))
	if err != nil {
		return nil, "", err
	}
	if job["token"] == "" {
		return nil, "", fmt.Errorf("session payload is missing the job token")
	}

	return job, cookies, nil
}

// poll issues one poll request. retryable=true marks the remote's
// timeout/not-found pages, which are non-terminal poll outcomes rather
// than failures.
func (c *Client) poll(ctx context.Context, job map[string]string, cookies string) (body string, issued []*http.Cookie, err error, retryable bool) {
	form := url.Values{}
	for key, value := range job {
		form.Set(key, value)
	}
	// Client-side nonce, regenerated per poll.
	form.Set("_", strconv.FormatInt(time.Now().UnixMilli(), 10))

	req, reqErr := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/poll", strings.NewReader(form.Encode()))
	if reqErr != nil {
		return "", nil, fmt.Errorf("failed to create poll request: %w", reqErr), false
	}
	c.setBrowserHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return "", nil, fmt.Errorf("poll request failed: %w", doErr), false
	}
	defer resp.Body.Close()

	issued = resp.Cookies()

	if resp.StatusCode == http.StatusGatewayTimeout || resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return "", issued, fmt.Errorf("remote returned %d page", resp.StatusCode), true
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", issued, fmt.Errorf("poll returned status %d", resp.StatusCode), false
	}

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return "", issued, fmt.Errorf("failed to read poll response: %w", readErr), false
	}

	return string(raw), issued, nil, false
}

func (c *Client) setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", defaultAccept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

// parseJobPayload locates the inline searchData object. Strict JSON is
// tried first; the site frequently emits a bare JS object literal
// instead, which the permissive parser accepts.
func parseJobPayload(page string) (map[string]string, error) {
	match := searchDataRe.FindStringSubmatch(page)
	if match == nil {
		return nil, fmt.Errorf("no job payload in search response")
	}

	if parsed, ok := parseStrictJSON(match[1]); ok {
		return parsed, nil
	}

	parsed, err := utils.ParseObjectLiteral(match[1])
	if err != nil {
		return nil, fmt.Errorf("unparseable job payload: %w", err)
	}
	return parsed, nil
}

func parseStrictJSON(text string) (map[string]string, bool) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, false
	}

	result := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			result[key] = v
		case float64:
			result[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			result[key] = strconv.FormatBool(v)
		default:
			return nil, false
		}
	}
	return result, true
}

// mergeCookies folds newly issued cookies into the accumulated cookie
// string. New values overwrite same-named old ones; others persist.
func mergeCookies(existing string, issued []*http.Cookie) string {
	if len(issued) == 0 {
		return existing
	}

	var order []string
	values := make(map[string]string)
	for _, pair := range strings.Split(existing, "; ") {
		if pair == "" {
			continue
		}
		name, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		if _, seen := values[name]; !seen {
			order = append(order, name)
		}
		values[name] = value
	}

	for _, cookie := range issued {
		if _, seen := values[cookie.Name]; !seen {
			order = append(order, cookie.Name)
		}
		values[cookie.Name] = cookie.Value
	}

	pairs := make([]string, 0, len(order))
	for _, name := range order {
		pairs = append(pairs, name+"="+values[name])
	}
	return strings.Join(pairs, "; ")
}
