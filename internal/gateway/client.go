package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "mindboost/internal/platform/errors"
)

const (
	FallbackLogin   = "Login failed. Please check your credentials."
	FallbackConvert = "Failed to parse PDF"
	FallbackAsk     = "Failed to get answer"
)

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
	tracer  trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New builds a client for baseURL. The default HTTP client has no timeout:
// a hung backend keeps the request open until the context is cancelled.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer("mindboost/gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Authenticate(ctx context.Context, identifier, secret string) (AuthResult, error) {
	form := url.Values{}
	form.Set("username", identifier)
	form.Set("password", secret)

	body, err := c.do(ctx, "authenticate", PathLogin, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), false, FallbackLogin)
	if err != nil {
		return AuthResult{}, err
	}
	out := AuthResult{}
	if err := json.Unmarshal(body, &out); err != nil || out.AccessToken == "" {
		return AuthResult{}, &apperrors.BackendError{Status: http.StatusOK, Detail: "unrecognized login response", Message: FallbackLogin, Err: err}
	}
	return out, nil
}

func (c *Client) ConvertDocument(ctx context.Context, fileName string, content io.Reader) (GraphResult, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return GraphResult{}, &apperrors.BackendError{Message: FallbackConvert, Err: fmt.Errorf("create form file: %w", err)}
	}
	if _, err := io.Copy(part, content); err != nil {
		return GraphResult{}, &apperrors.BackendError{Message: FallbackConvert, Err: fmt.Errorf("read document: %w", err)}
	}
	if err := mw.Close(); err != nil {
		return GraphResult{}, &apperrors.BackendError{Message: FallbackConvert, Err: fmt.Errorf("close multipart: %w", err)}
	}

	body, err := c.do(ctx, "convert_document", PathKnowledgeGraph, mw.FormDataContentType(), buf, true, FallbackConvert)
	if err != nil {
		return GraphResult{}, err
	}
	return decodeGraph(body), nil
}

func (c *Client) AskQuestion(ctx context.Context, question string) (AnswerResult, error) {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return AnswerResult{}, &apperrors.BackendError{Message: FallbackAsk, Err: err}
	}
	body, err := c.do(ctx, "ask_question", PathAsk, "application/json", bytes.NewReader(payload), true, FallbackAsk)
	if err != nil {
		return AnswerResult{}, err
	}
	return decodeAnswer(body), nil
}

func (c *Client) do(ctx context.Context, op, path, contentType string, body io.Reader, authorize bool, fallback string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "gateway."+op, trace.WithAttributes(attribute.String("http.route", path)))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, c.fail(span, op, &apperrors.BackendError{Message: fallback, Err: fmt.Errorf("build request: %w", err)})
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if authorize && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(span, op, &apperrors.BackendError{Message: fallback, Err: err})
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(span, op, &apperrors.BackendError{Status: resp.StatusCode, Message: fallback, Err: fmt.Errorf("read body: %w", err)})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(span, op, &apperrors.BackendError{
			Status:  resp.StatusCode,
			Detail:  extractDetail(raw),
			Message: fallback,
			Err:     fmt.Errorf("%s returned %s", path, resp.Status),
		})
	}
	c.logger.Debug("backend call succeeded", zap.String("op", op), zap.Int("status", resp.StatusCode))
	return raw, nil
}

func (c *Client) fail(span trace.Span, op string, err *apperrors.BackendError) error {
	span.SetStatus(codes.Error, err.Error())
	fields := []zap.Field{zap.String("op", op), zap.Int("status", err.Status)}
	if err.Err != nil {
		fields = append(fields, zap.Error(err.Err))
	}
	if err.Transport() {
		c.logger.Warn("backend unreachable", fields...)
	} else {
		c.logger.Info("backend call failed", fields...)
	}
	return err
}

// extractDetail pulls the "detail" field out of an error body. Structured
// details (FastAPI validation errors) are returned as compact JSON.
func extractDetail(raw []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Detail) == 0 || string(envelope.Detail) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	compact := &bytes.Buffer{}
	if err := json.Compact(compact, envelope.Detail); err != nil {
		return string(envelope.Detail)
	}
	return compact.String()
}

func decodeGraph(raw []byte) GraphResult {
	out := GraphResult{Raw: json.RawMessage(raw)}
	var shape struct {
		Nodes *[]GraphNode `json:"nodes"`
		Links *[]GraphLink `json:"links"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil || shape.Nodes == nil {
		return out
	}
	out.Nodes = *shape.Nodes
	if shape.Links != nil {
		out.Links = *shape.Links
	}
	out.Recognized = true
	return out
}

func decodeAnswer(raw []byte) AnswerResult {
	out := AnswerResult{Raw: json.RawMessage(raw)}
	var shape struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &shape); err == nil && len(shape.Result) > 0 {
		var s string
		if err := json.Unmarshal(shape.Result, &s); err == nil && s != "" {
			out.Text = s
			out.Recognized = true
			return out
		}
	}
	compact := &bytes.Buffer{}
	if err := json.Compact(compact, raw); err == nil {
		out.Text = compact.String()
		return out
	}
	out.Text = strings.TrimSpace(string(raw))
	return out
}

// IsUnauthorized reports whether err is a 401 from the backend, which is how
// an expired or revoked token shows up.
func IsUnauthorized(err error) bool {
	var be *apperrors.BackendError
	return errors.As(err, &be) && be.Status == http.StatusUnauthorized
}
