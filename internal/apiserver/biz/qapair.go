package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"

	"github.com/veaiops/veaiops/internal/agent"
	"github.com/veaiops/veaiops/internal/apiserver/store"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/id"
)

// Reviewer is the review agent surface the QA pair flow needs.
type Reviewer interface {
	Review(ctx context.Context, question, answer string) (*agent.ReviewVerdict, error)
}

// KnowledgeWriter is the vector-store surface the QA pair flow needs.
type KnowledgeWriter interface {
	Upsert(ctx context.Context, qapairID, question, answer string, oldVectorID int64) (int64, error)
	Delete(ctx context.Context, vectorID int64) error
}

// QAPairService handles QA pair business logic, including agent review
// and knowledge-base upsert of approved pairs.
type QAPairService struct {
	store     store.Factory
	reviewer  Reviewer
	knowledge KnowledgeWriter
}

// NewQAPairService creates a new QAPairService. Reviewer and knowledge
// may be nil, disabling review and vector upsert respectively.
func NewQAPairService(factory store.Factory, reviewer Reviewer, knowledge KnowledgeWriter) *QAPairService {
	return &QAPairService{store: factory, reviewer: reviewer, knowledge: knowledge}
}

// Create persists a new DRAFT pair.
func (s *QAPairService) Create(ctx context.Context, pair *model.QAPair) error {
	now := time.Now().UTC()
	pair.ID = id.NewULID()
	pair.Status = model.QAPairStatusDraft
	pair.CreatedAt = now
	pair.UpdatedAt = now
	return s.store.QAPairs().Create(ctx, pair)
}

// Update replaces a pair's question/answer and resets it to DRAFT so it
// goes through review again.
func (s *QAPairService) Update(ctx context.Context, pair *model.QAPair) error {
	existing, err := s.store.QAPairs().Get(ctx, pair.ID)
	if err != nil {
		return err
	}
	pair.Status = model.QAPairStatusDraft
	pair.ReviewComment = ""
	pair.VectorID = existing.VectorID
	pair.CreatedAt = existing.CreatedAt
	pair.UpdatedAt = time.Now().UTC()
	return s.store.QAPairs().Update(ctx, pair)
}

// Delete removes a pair and its stored vector.
func (s *QAPairService) Delete(ctx context.Context, pairID string) error {
	pair, err := s.store.QAPairs().Get(ctx, pairID)
	if err != nil {
		return err
	}
	if s.knowledge != nil && pair.VectorID != 0 {
		if err := s.knowledge.Delete(ctx, pair.VectorID); err != nil {
			logger.Warnw("Failed to delete QA pair vector", "qapair_id", pairID, "error", err)
		}
	}
	return s.store.QAPairs().Delete(ctx, pairID)
}

// Get retrieves a pair.
func (s *QAPairService) Get(ctx context.Context, pairID string) (*model.QAPair, error) {
	return s.store.QAPairs().Get(ctx, pairID)
}

// List lists pairs.
func (s *QAPairService) List(ctx context.Context, offset, limit int64) (int64, []*model.QAPair, error) {
	return s.store.QAPairs().List(ctx, store.ListOptions{Offset: offset, Limit: limit})
}

// Review runs the review agent on a pair. Approval stores the refined
// answer and upserts the pair into the knowledge base; rejection records
// the verdict comment.
func (s *QAPairService) Review(ctx context.Context, pairID string) (*model.QAPair, error) {
	if s.reviewer == nil {
		return nil, errors.ErrModelCall.WithMessage("review agent is not configured")
	}

	pair, err := s.store.QAPairs().Get(ctx, pairID)
	if err != nil {
		return nil, err
	}

	verdict, err := s.reviewer.Review(ctx, pair.Question, pair.Answer)
	if err != nil {
		return nil, err
	}

	pair.ReviewComment = verdict.Comment
	pair.UpdatedAt = time.Now().UTC()
	if !verdict.Approved {
		pair.Status = model.QAPairStatusRejected
		if err := s.store.QAPairs().Update(ctx, pair); err != nil {
			return nil, err
		}
		return pair, nil
	}

	pair.Status = model.QAPairStatusApproved
	pair.Answer = verdict.RefinedAnswer

	if s.knowledge != nil {
		vectorID, err := s.knowledge.Upsert(ctx, pair.ID, pair.Question, pair.Answer, pair.VectorID)
		if err != nil {
			return nil, err
		}
		pair.VectorID = vectorID
	}

	if err := s.store.QAPairs().Update(ctx, pair); err != nil {
		return nil, err
	}
	return pair, nil
}
