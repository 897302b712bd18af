package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"mindboost/internal/gateway"
	"mindboost/internal/modules/study/domain"
	studyout "mindboost/internal/modules/study/port/out"
	apperrors "mindboost/internal/platform/errors"
)

type GatewayBackend struct {
	client *gateway.Client
}

func NewGatewayBackend(client *gateway.Client) studyout.Backend {
	return &GatewayBackend{client: client}
}

func (b *GatewayBackend) ConvertDocument(ctx context.Context, doc domain.UploadSelection) (domain.GraphResult, error) {
	f, err := os.Open(doc.Path)
	if err != nil {
		return domain.GraphResult{}, &apperrors.BackendError{Message: gateway.FallbackConvert, Err: fmt.Errorf("open document: %w", err)}
	}
	defer f.Close()

	res, err := b.client.ConvertDocument(ctx, doc.DisplayName, f)
	if err != nil {
		return domain.GraphResult{}, err
	}
	out := domain.GraphResult{Raw: string(res.Raw), Recognized: res.Recognized}
	for _, n := range res.Nodes {
		out.Nodes = append(out.Nodes, domain.Node{ID: scalar(n.ID), Label: n.Label})
	}
	for _, l := range res.Links {
		out.Links = append(out.Links, domain.Link{Source: scalar(l.Source), Target: scalar(l.Target)})
	}
	return out, nil
}

func (b *GatewayBackend) AskQuestion(ctx context.Context, question string) (domain.AnswerResult, error) {
	res, err := b.client.AskQuestion(ctx, question)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	return domain.AnswerResult{Text: res.Text, Recognized: res.Recognized}, nil
}

// scalar renders a JSON id (number or string) as plain text.
func scalar(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
