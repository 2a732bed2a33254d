// Package postgrest implements the data gateway over a PostgREST-compatible
// HTTP API such as the one hosted by Supabase.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/target/eventdesk/internal/domain/table"
	apperrors "github.com/target/eventdesk/internal/errors"
	"github.com/target/eventdesk/internal/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

// Config configures the gateway.
type Config struct {
	// BaseURL is the REST root, e.g. https://project.supabase.co/rest/v1.
	BaseURL string
	// APIKey is sent as the apikey header and as a bearer token.
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Gateway implements ports.Gateway against a PostgREST endpoint.
type Gateway struct {
	base   *url.URL
	apiKey string
	client *http.Client
}

var _ ports.Gateway = (*Gateway)(nil)

// New validates cfg and builds a Gateway.
func New(cfg Config) (*Gateway, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("postgrest: base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("postgrest: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("postgrest: unsupported scheme %q", u.Scheme)
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Gateway{base: u, apiKey: cfg.APIKey, client: client}, nil
}

// Select issues GET /{table} with select, filter, order and limit parameters.
func (g *Gateway) Select(ctx context.Context, q table.Query) ([]table.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid query")
	}
	params := url.Values{}
	params.Set("select", selectParam(q))
	addFilters(params, q.Filters)
	if len(q.Order) > 0 {
		parts := make([]string, len(q.Order))
		for i, o := range q.Order {
			dir := "asc"
			if o.Desc {
				dir = "desc"
			}
			parts[i] = o.Column + "." + dir
		}
		params.Set("order", strings.Join(parts, ","))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	rows, err := g.do(ctx, request{method: http.MethodGet, table: q.Table, params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", q.Table, err)
	}
	return rows, nil
}

// Insert issues POST /{table} with a JSON array body.
func (g *Gateway) Insert(ctx context.Context, tbl string, rows ...table.Row) ([]table.Row, error) {
	if !table.ValidIdent(tbl) {
		return nil, apperrors.Validation("invalid table name %q", tbl)
	}
	for _, r := range rows {
		if err := table.ValidateRow(r); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid row")
		}
	}
	out, err := g.do(ctx, request{
		method: http.MethodPost,
		table:  tbl,
		body:   rows,
		prefer: []string{"return=representation"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", tbl, err)
	}
	return out, nil
}

// Upsert issues POST /{table}?on_conflict=... with merge-duplicates resolution.
func (g *Gateway) Upsert(ctx context.Context, tbl string, row table.Row, onConflict []string) (table.Row, error) {
	if err := table.ValidateUpsert(tbl, row, onConflict); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid upsert")
	}
	params := url.Values{}
	params.Set("on_conflict", strings.Join(onConflict, ","))
	out, err := g.do(ctx, request{
		method: http.MethodPost,
		table:  tbl,
		params: params,
		body:   []table.Row{row},
		prefer: []string{"resolution=merge-duplicates", "return=representation"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert into %s: %w", tbl, err)
	}
	if len(out) == 0 {
		return nil, apperrors.Internal("upsert into %s returned no row", tbl)
	}
	return out[0], nil
}

// Update issues PATCH /{table}?filters.
func (g *Gateway) Update(ctx context.Context, tbl string, values table.Row, filters ...table.Filter) (int64, error) {
	if err := table.ValidateMutation(tbl, filters); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid update")
	}
	if err := table.ValidateRow(values); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid update")
	}
	params := url.Values{}
	addFilters(params, filters)
	out, err := g.do(ctx, request{
		method: http.MethodPatch,
		table:  tbl,
		params: params,
		body:   values,
		prefer: []string{"return=representation"},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", tbl, err)
	}
	return int64(len(out)), nil
}

// Delete issues DELETE /{table}?filters.
func (g *Gateway) Delete(ctx context.Context, tbl string, filters ...table.Filter) (int64, error) {
	if err := table.ValidateMutation(tbl, filters); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid delete")
	}
	params := url.Values{}
	addFilters(params, filters)
	out, err := g.do(ctx, request{
		method: http.MethodDelete,
		table:  tbl,
		params: params,
		prefer: []string{"return=representation"},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", tbl, err)
	}
	return int64(len(out)), nil
}

type request struct {
	method string
	table  string
	params url.Values
	body   any
	prefer []string
}

func (g *Gateway) do(ctx context.Context, r request) ([]table.Row, error) {
	u := *g.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + r.table
	if len(r.params) > 0 {
		u.RawQuery = r.params.Encode()
	}

	var body io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "encode request body")
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.apiKey != "" {
		req.Header.Set("apikey", g.apiKey)
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}
	if len(r.prefer) > 0 {
		req.Header.Set("Prefer", strings.Join(r.prefer, ","))
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.MapDBError(ctxErr)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "The data service could not be reached.")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode response")
	}
	out := make([]table.Row, len(raw))
	for i, m := range raw {
		out[i] = table.Row(m)
	}
	return out, nil
}

// apiError is the PostgREST error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e apiError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%s): %s", e.Message, e.Code, e.Details)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func decodeError(resp *http.Response) error {
	var body apiError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err := json.Unmarshal(raw, &body); err != nil || (body.Code == "" && body.Message == "") {
		return apperrors.MapHTTPStatus(resp.StatusCode, "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}
	if isSQLState(body.Code) {
		st := apperrors.MapSQLState(apperrors.SQLState{
			Code:    body.Code,
			Message: body.Message,
			Detail:  body.Details,
		}, body)
		if apperrors.GetCode(st) == apperrors.ErrCodeInternal {
			// Surface the service's own message for errors we cannot classify.
			return &apperrors.AppError{Code: apperrors.ErrCodeInternal, Message: body.Message, Cause: body}
		}
		return st
	}
	if body.Code == "PGRST116" {
		return &apperrors.AppError{Code: apperrors.ErrCodeNotFound, Message: "Record not found", Cause: body}
	}
	return apperrors.MapHTTPStatus(resp.StatusCode, body.Message, body)
}

// isSQLState reports whether code is a five character SQLSTATE rather than a
// PostgREST-specific PGRSTnnn code.
func isSQLState(code string) bool {
	if len(code) != 5 || strings.HasPrefix(code, "PGRST") {
		return false
	}
	for _, r := range code {
		if (r < '0' || r > '9') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func selectParam(q table.Query) string {
	cols := []string{"*"}
	if len(q.Columns) > 0 {
		cols = append([]string(nil), q.Columns...)
	}
	for _, ce := range q.Counts {
		cols = append(cols, ce.Relation+"(count)")
	}
	return strings.Join(cols, ",")
}

func addFilters(params url.Values, filters []table.Filter) {
	for _, f := range filters {
		params.Add(f.Column, filterValue(f.Value))
	}
}

func filterValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "is.null"
	case bool:
		return "is." + strconv.FormatBool(x)
	case time.Time:
		return "eq." + x.UTC().Format(time.RFC3339Nano)
	default:
		return "eq." + fmt.Sprint(x)
	}
}
