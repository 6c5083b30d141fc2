package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veaiops/veaiops/internal/agent"
	"github.com/veaiops/veaiops/internal/model"
)

type fakeReviewer struct {
	verdict *agent.ReviewVerdict
	err     error
}

func (r *fakeReviewer) Review(context.Context, string, string) (*agent.ReviewVerdict, error) {
	return r.verdict, r.err
}

type fakeKnowledge struct {
	nextVectorID int64
	upserted     []string
	deleted      []int64
	upsertErr    error
}

func (k *fakeKnowledge) Upsert(_ context.Context, qapairID, _, _ string, _ int64) (int64, error) {
	if k.upsertErr != nil {
		return 0, k.upsertErr
	}
	k.upserted = append(k.upserted, qapairID)
	k.nextVectorID++
	return k.nextVectorID, nil
}

func (k *fakeKnowledge) Delete(_ context.Context, vectorID int64) error {
	k.deleted = append(k.deleted, vectorID)
	return nil
}

func createDraftPair(t *testing.T, svc *QAPairService) *model.QAPair {
	t.Helper()
	pair := &model.QAPair{
		Question: "How do I rotate an access key?",
		Answer:   "Call the rotate endpoint.",
		Source:   "manual",
	}
	require.NoError(t, svc.Create(context.Background(), pair))
	require.Equal(t, model.QAPairStatusDraft, pair.Status)
	return pair
}

func TestQAPairReviewApprovalUpsertsKnowledge(t *testing.T) {
	factory := newFakeFactory()
	kb := &fakeKnowledge{}
	svc := NewQAPairService(factory, &fakeReviewer{verdict: &agent.ReviewVerdict{
		Approved:      true,
		RefinedAnswer: "Call POST /api/v1/keys/rotate with the key ID.",
		Comment:       "tightened wording",
	}}, kb)

	pair := createDraftPair(t, svc)
	reviewed, err := svc.Review(context.Background(), pair.ID)
	require.NoError(t, err)

	assert.Equal(t, model.QAPairStatusApproved, reviewed.Status)
	assert.Equal(t, "Call POST /api/v1/keys/rotate with the key ID.", reviewed.Answer)
	assert.Equal(t, "tightened wording", reviewed.ReviewComment)
	assert.Equal(t, int64(1), reviewed.VectorID)
	assert.Equal(t, []string{pair.ID}, kb.upserted)
}

func TestQAPairReviewRejectionKeepsAnswer(t *testing.T) {
	factory := newFakeFactory()
	kb := &fakeKnowledge{}
	svc := NewQAPairService(factory, &fakeReviewer{verdict: &agent.ReviewVerdict{
		Approved: false,
		Comment:  "answer is outdated",
	}}, kb)

	pair := createDraftPair(t, svc)
	reviewed, err := svc.Review(context.Background(), pair.ID)
	require.NoError(t, err)

	assert.Equal(t, model.QAPairStatusRejected, reviewed.Status)
	assert.Equal(t, "Call the rotate endpoint.", reviewed.Answer)
	assert.Equal(t, "answer is outdated", reviewed.ReviewComment)
	assert.Empty(t, kb.upserted)
}

func TestQAPairReviewWithoutReviewerFails(t *testing.T) {
	factory := newFakeFactory()
	svc := NewQAPairService(factory, nil, nil)

	pair := createDraftPair(t, svc)
	_, err := svc.Review(context.Background(), pair.ID)
	require.Error(t, err)
}

func TestQAPairUpdateResetsToDraft(t *testing.T) {
	factory := newFakeFactory()
	kb := &fakeKnowledge{}
	svc := NewQAPairService(factory, &fakeReviewer{verdict: &agent.ReviewVerdict{
		Approved: true, RefinedAnswer: "refined",
	}}, kb)

	pair := createDraftPair(t, svc)
	_, err := svc.Review(context.Background(), pair.ID)
	require.NoError(t, err)

	updated := &model.QAPair{
		ID:       pair.ID,
		Question: pair.Question,
		Answer:   "A better answer.",
	}
	require.NoError(t, svc.Update(context.Background(), updated))

	assert.Equal(t, model.QAPairStatusDraft, updated.Status)
	assert.Empty(t, updated.ReviewComment)
	// The stale vector ID is kept so re-approval can replace it.
	assert.Equal(t, int64(1), updated.VectorID)
}

func TestQAPairDeleteRemovesVector(t *testing.T) {
	factory := newFakeFactory()
	kb := &fakeKnowledge{}
	svc := NewQAPairService(factory, &fakeReviewer{verdict: &agent.ReviewVerdict{
		Approved: true, RefinedAnswer: "refined",
	}}, kb)

	pair := createDraftPair(t, svc)
	_, err := svc.Review(context.Background(), pair.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), pair.ID))
	assert.Equal(t, []int64{1}, kb.deleted)

	_, err = svc.Get(context.Background(), pair.ID)
	require.Error(t, err)
}
