package rowstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const restPrefix = "/rest/v1/"

// REST talks to a PostgREST-compatible endpoint of the hosted backend.
type REST struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
}

// NewREST creates a driver for baseURL authenticated with apiKey. The key
// goes out both as the apikey header and as the bearer token.
func NewREST(baseURL, apiKey string) *REST {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	hc := oauth2.NewClient(context.Background(), src)
	hc.Timeout = 30 * time.Second
	return &REST{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: hc,
		maxRetries: 5,
	}
}

func (r *REST) Select(ctx context.Context, q Query, dest any) error {
	if err := q.Validate(); err != nil {
		return fmt.Errorf("rowstore.Select: %w", err)
	}
	if err := r.doRequest(ctx, http.MethodGet, selectPath(q), nil, nil, dest); err != nil {
		return fmt.Errorf("rowstore.Select %s: %w", q.Table, err)
	}
	return nil
}

func (r *REST) Single(ctx context.Context, q Query, dest any) error {
	var rows []json.RawMessage
	if err := r.Select(ctx, q.Limit(2), &rows); err != nil {
		return err
	}
	return decodeSingle(rows, dest)
}

// Increment performs a read-modify-write guarded by the value it read, so a
// concurrent writer makes the update miss instead of being overwritten.
func (r *REST) Increment(ctx context.Context, table, id, column string) (int, error) {
	if err := From(table).Eq(column, nil).Validate(); err != nil {
		return 0, fmt.Errorf("rowstore.Increment: %w", err)
	}

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		var row map[string]json.RawMessage
		if err := r.Single(ctx, From(table).Eq("id", id), &row); err != nil {
			return 0, fmt.Errorf("rowstore.Increment: %w", err)
		}

		guard := "is.null"
		current := 0
		if raw, ok := row[column]; ok && string(raw) != "null" {
			if err := json.Unmarshal(raw, &current); err != nil {
				return 0, fmt.Errorf("rowstore.Increment: %s is not an integer: %w", column, err)
			}
			guard = "eq." + strconv.Itoa(current)
		}

		params := url.Values{}
		params.Set("id", "eq."+id)
		params.Set(column, guard)
		header := http.Header{}
		header.Set("Prefer", "return=representation")

		var updated []json.RawMessage
		body := map[string]int{column: current + 1}
		if err := r.doRequest(ctx, http.MethodPatch, restPrefix+table+"?"+params.Encode(), body, header, &updated); err != nil {
			return 0, fmt.Errorf("rowstore.Increment: %w", err)
		}
		if len(updated) == 1 {
			return current + 1, nil
		}
	}
	return 0, fmt.Errorf("rowstore.Increment %s/%s: %w", table, id, ErrConflict)
}

func (r *REST) Insert(ctx context.Context, table string, row any) error {
	if err := From(table).Validate(); err != nil {
		return fmt.Errorf("rowstore.Insert: %w", err)
	}
	header := http.Header{}
	header.Set("Prefer", "return=minimal")
	if err := r.doRequest(ctx, http.MethodPost, restPrefix+table, row, header, nil); err != nil {
		return fmt.Errorf("rowstore.Insert %s: %w", table, err)
	}
	return nil
}

func (r *REST) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}

func selectPath(q Query) string {
	params := url.Values{}
	params.Set("select", "*")
	for _, f := range q.Filters {
		params.Add(f.Column, string(f.Op)+"."+formatValue(f.Value))
	}
	if q.OrderBy != nil {
		dir := "desc"
		if q.OrderBy.Ascending {
			dir = "asc"
		}
		params.Set("order", q.OrderBy.Column+"."+dir)
	}
	if q.MaxRows > 0 {
		params.Set("limit", strconv.Itoa(q.MaxRows))
	}
	return restPrefix + q.Table + "?" + params.Encode()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func (r *REST) doRequest(ctx context.Context, method, path string, body any, header http.Header, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
			if apiErr.Error != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeSingle(rows []json.RawMessage, dest any) error {
	switch len(rows) {
	case 0:
		return ErrNoRows
	case 1:
		if err := json.Unmarshal(rows[0], dest); err != nil {
			return fmt.Errorf("decode row: %w", err)
		}
		return nil
	default:
		return ErrMultipleRows
	}
}
