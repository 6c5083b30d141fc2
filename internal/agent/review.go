package agent

import (
	"context"
	"fmt"

	"github.com/veaiops/veaiops/internal/agent/llm"
)

const reviewSystemPrompt = `You review question/answer pairs before they enter an operations knowledge base.
Approve a pair when the answer is correct, complete and self-contained; refine its wording when approving.
Reject pairs that are wrong, dangerous or too vague to be useful.
Reply with JSON only, no prose: {"approved": bool, "refined_answer": string, "comment": string}.
"refined_answer" must be empty when approved is false.`

// ReviewVerdict is the review agent's decision for one QA pair.
type ReviewVerdict struct {
	Approved      bool   `json:"approved"`
	RefinedAnswer string `json:"refined_answer"`
	Comment       string `json:"comment"`
}

// ReviewAgent reviews and refines QA pairs before knowledge-base upsert.
type ReviewAgent struct {
	model llm.ModelClient
}

// NewReviewAgent creates a ReviewAgent.
func NewReviewAgent(model llm.ModelClient) *ReviewAgent {
	return &ReviewAgent{model: model}
}

// Review evaluates one QA pair. An approved verdict always carries a
// non-empty refined answer; the caller stores it in place of the draft.
func (a *ReviewAgent) Review(ctx context.Context, question, answer string) (*ReviewVerdict, error) {
	prompt := fmt.Sprintf("Question:\n%s\n\nAnswer:\n%s\n", question, answer)

	reply, err := a.model.Complete(ctx, reviewSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	verdict, err := llm.Parse[ReviewVerdict](reply)
	if err != nil {
		return nil, err
	}
	if verdict.Approved && verdict.RefinedAnswer == "" {
		verdict.RefinedAnswer = answer
	}
	return &verdict, nil
}
