package model

import "time"

// QAPairStatus tracks a knowledge QA pair through review.
type QAPairStatus string

const (
	QAPairStatusDraft    QAPairStatus = "DRAFT"
	QAPairStatusApproved QAPairStatus = "APPROVED"
	QAPairStatusRejected QAPairStatus = "REJECTED"
)

// QAPair is one question/answer entry of the knowledge base. Approved
// pairs are embedded and upserted into the vector store.
type QAPair struct {
	ID       string       `bson:"_id" json:"id"`
	Question string       `bson:"question" json:"question"`
	Answer   string       `bson:"answer" json:"answer"`
	Source   string       `bson:"source,omitempty" json:"source,omitempty"`
	Status   QAPairStatus `bson:"status" json:"status"`

	// ReviewComment carries the reviewing agent's verdict explanation.
	ReviewComment string `bson:"review_comment,omitempty" json:"review_comment,omitempty"`
	// VectorID links to the stored embedding once upserted.
	VectorID int64 `bson:"vector_id,omitempty" json:"vector_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
