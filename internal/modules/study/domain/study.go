package domain

import (
	"fmt"
	"strings"
	"time"
)

const SchemaVersion = 1

type DocumentKind string

const (
	DocumentPDF   DocumentKind = "pdf"
	DocumentWord  DocumentKind = "word"
	DocumentText  DocumentKind = "text"
	DocumentOther DocumentKind = "other"
)

func KindFromExtension(ext string) DocumentKind {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return DocumentPDF
	case "doc", "docx":
		return DocumentWord
	case "txt", "md":
		return DocumentText
	}
	return DocumentOther
}

// UploadSelection is the file picked for conversion. A new pick replaces it
// wholesale.
type UploadSelection struct {
	Path        string
	DisplayName string
	Size        int64
	Kind        DocumentKind
	Pages       int
}

func (s UploadSelection) Ready() bool {
	return s.Path != "" && s.Size > 0
}

type Node struct {
	ID    string
	Label string
}

type Link struct {
	Source string
	Target string
}

// GraphResult is either a recognized nodes/links graph or, when the backend
// answered with another shape, the raw body only.
type GraphResult struct {
	Nodes      []Node
	Links      []Link
	Raw        string
	Recognized bool
}

func (g GraphResult) Summary() string {
	if !g.Recognized {
		return "unrecognized graph payload"
	}
	return fmt.Sprintf("%d nodes, %d links", len(g.Nodes), len(g.Links))
}

type AnswerResult struct {
	Text       string
	Recognized bool
}

type ActivityKind string

const (
	ActivityConvert ActivityKind = "convert"
	ActivityAsk     ActivityKind = "ask"
)

type ActivityOutcome string

const (
	OutcomeSucceeded ActivityOutcome = "succeeded"
	OutcomeFailed    ActivityOutcome = "failed"
)

// Activity is one finished backend call kept in the local history.
type Activity struct {
	ID        string
	Kind      ActivityKind
	Subject   string
	Outcome   ActivityOutcome
	Summary   string
	CreatedAt time.Time
}

// AnswerNote is a question/answer pair saved to the notes directory.
type AnswerNote struct {
	ID       string
	Question string
	Answer   string
	AskedAt  time.Time
}
