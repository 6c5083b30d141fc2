package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/veaiops/veaiops/internal/agent/llm"
	"github.com/veaiops/veaiops/internal/knowledge"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/id"
)

// Searcher is the retrieval surface the answer agent needs from the
// knowledge base.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]knowledge.Hit, error)
}

const answerSystemPrompt = `You are a support assistant for an operations platform.
Answer the user's question using ONLY the provided knowledge entries.
If the entries don't cover the question, set "answerable" to false.
Reply with JSON only, no prose: {"answerable": bool, "answer": string}.`

type answerVerdict struct {
	Answerable bool   `json:"answerable"`
	Answer     string `json:"answer"`
}

// AnswerAgent answers questions from the knowledge base and emits a
// direct-reply event aimed back at the originating chat.
type AnswerAgent struct {
	model llm.ModelClient
	kb    Searcher
	topK  int
}

// NewAnswerAgent creates an AnswerAgent.
func NewAnswerAgent(model llm.ModelClient, kb Searcher, topK int) *AnswerAgent {
	if topK <= 0 {
		topK = 5
	}
	return &AnswerAgent{model: model, kb: kb, topK: topK}
}

// Answer retrieves knowledge for the question and synthesizes a reply.
// It returns ("", nil) when the knowledge base cannot answer.
func (a *AnswerAgent) Answer(ctx context.Context, question string) (string, error) {
	hits, err := a.kb.Search(ctx, question, a.topK)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("Knowledge entries:\n")
	for i, h := range hits {
		fmt.Fprintf(&sb, "%d. Q: %s\n   A: %s\n", i+1, h.Question, h.Answer)
	}
	fmt.Fprintf(&sb, "\nQuestion: %s\n", question)

	reply, err := a.model.Complete(ctx, answerSystemPrompt, sb.String())
	if err != nil {
		return "", err
	}

	verdict, err := llm.Parse[answerVerdict](reply)
	if err != nil {
		return "", err
	}
	if !verdict.Answerable || verdict.Answer == "" {
		logger.Debugw("Question not answerable from knowledge base", "question", snippetOf(question))
		return "", nil
	}
	return verdict.Answer, nil
}

// ReplyEvent wraps an answer as a reply event targeting the chat the
// question came from.
func (a *AnswerAgent) ReplyEvent(msg *model.ChatMessage, question, answer string) *model.Event {
	now := time.Now().UTC()
	return &model.Event{
		ID:        id.NewULID(),
		AgentType: model.AgentTypeReply,
		Status:    model.EventStatusInitial,
		RawData: toRawData(model.ReplyPayload{
			Channel:         msg.Channel,
			BotID:           msg.BotID,
			ChatID:          msg.ChatID,
			ParentMessageID: msg.MessageID,
			Question:        question,
			Answer:          answer,
		}),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func snippetOf(s string) string {
	if len(s) <= 80 {
		return s
	}
	return s[:80] + "..."
}
