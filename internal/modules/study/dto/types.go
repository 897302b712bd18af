package dto

import "time"

type DocumentOutput struct {
	Path        string
	DisplayName string
	Size        int64
	Kind        string
	Pages       int
}

type NodeOutput struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type LinkOutput struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type GraphOutput struct {
	Nodes      []NodeOutput `json:"nodes,omitempty"`
	Links      []LinkOutput `json:"links,omitempty"`
	Raw        string       `json:"raw,omitempty"`
	Recognized bool         `json:"recognized"`
	Summary    string       `json:"summary"`
}

type AskInput struct {
	Question string
}

type AnswerOutput struct {
	Question   string
	Text       string
	Recognized bool
}

type ActivityOutput struct {
	ID        string
	Kind      string
	Subject   string
	Outcome   string
	Summary   string
	CreatedAt time.Time
}

type SaveAnswerInput struct {
	Question string
	Answer   string
}

type SaveAnswerOutput struct {
	Path string
}
