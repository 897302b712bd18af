package gateway

import "encoding/json"

const (
	PathLogin          = "/login"
	PathKnowledgeGraph = "/knowledge-graph/"
	PathAsk            = "/invoke-bedrock/"
)

// AuthResult is the decoded success payload of /login.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type GraphNode struct {
	ID    json.RawMessage `json:"id"`
	Label string          `json:"label"`
}

type GraphLink struct {
	Source json.RawMessage `json:"source"`
	Target json.RawMessage `json:"target"`
}

// GraphResult is the knowledge graph payload. When the body is not the
// nodes/links shape Recognized is false and only Raw is set.
type GraphResult struct {
	Nodes      []GraphNode
	Links      []GraphLink
	Raw        json.RawMessage
	Recognized bool
}

// AnswerResult is the Q&A payload. Text holds the "result" field when
// present, otherwise the whole body stringified, with Recognized false.
type AnswerResult struct {
	Text       string
	Raw        json.RawMessage
	Recognized bool
}

// TokenSource supplies the bearer credential attached to protected calls.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a func to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }
