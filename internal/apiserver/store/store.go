package store

import (
	"context"

	"github.com/veaiops/veaiops/internal/model"
)

// ListOptions carries pagination for list queries.
type ListOptions struct {
	Offset int64
	Limit  int64
}

// Factory defines the factory interface for creating stores.
type Factory interface {
	Events() EventStore
	Notices() NoticeStore
	Subscribes() SubscribeStore
	Strategies() StrategyStore
	Bots() BotStore
	Datasources() DatasourceStore
	Tasks() TaskStore
	QAPairs() QAPairStore
	Messages() MessageStore
	Close() error
}

// EventStore defines event storage.
type EventStore interface {
	Create(ctx context.Context, event *model.Event) error
	Update(ctx context.Context, event *model.Event) error
	Get(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, opts ListOptions) (int64, []*model.Event, error)
}

// NoticeStore defines event notice detail storage.
type NoticeStore interface {
	CreateMany(ctx context.Context, details []*model.EventNoticeDetail) error
	Update(ctx context.Context, detail *model.EventNoticeDetail) error
	ListByEvent(ctx context.Context, eventID string) ([]*model.EventNoticeDetail, error)
}

// SubscribeStore defines subscription storage.
type SubscribeStore interface {
	Create(ctx context.Context, sub *model.Subscribe) error
	Update(ctx context.Context, sub *model.Subscribe) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Subscribe, error)
	List(ctx context.Context, opts ListOptions) (int64, []*model.Subscribe, error)
	ListEnabledByAgentType(ctx context.Context, agentType model.AgentType) ([]*model.Subscribe, error)
}

// StrategyStore defines inform strategy storage.
type StrategyStore interface {
	Create(ctx context.Context, strategy *model.InformStrategy) error
	Update(ctx context.Context, strategy *model.InformStrategy) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.InformStrategy, error)
	List(ctx context.Context, opts ListOptions) (int64, []*model.InformStrategy, error)
}

// BotStore defines bot credential storage.
type BotStore interface {
	Create(ctx context.Context, bot *model.Bot) error
	Update(ctx context.Context, bot *model.Bot) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Bot, error)
	List(ctx context.Context, opts ListOptions) (int64, []*model.Bot, error)
}

// DatasourceStore defines datasource storage.
type DatasourceStore interface {
	Create(ctx context.Context, ds *model.Datasource) error
	Update(ctx context.Context, ds *model.Datasource) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Datasource, error)
	List(ctx context.Context, opts ListOptions) (int64, []*model.Datasource, error)
}

// TaskStore defines threshold task storage.
type TaskStore interface {
	Create(ctx context.Context, task *model.ThresholdTask) error
	Update(ctx context.Context, task *model.ThresholdTask) error
	Get(ctx context.Context, id string) (*model.ThresholdTask, error)
	List(ctx context.Context, opts ListOptions) (int64, []*model.ThresholdTask, error)
	// Claim flips a PENDING task to RUNNING; false means another worker
	// won the task or it already left PENDING.
	Claim(ctx context.Context, id string) (bool, error)
	ListNonTerminal(ctx context.Context) ([]*model.ThresholdTask, error)
}

// QAPairStore defines QA pair storage.
type QAPairStore interface {
	Create(ctx context.Context, pair *model.QAPair) error
	Update(ctx context.Context, pair *model.QAPair) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.QAPair, error)
	List(ctx context.Context, opts ListOptions) (int64, []*model.QAPair, error)
}

// MessageStore defines inbound chat message storage.
type MessageStore interface {
	Create(ctx context.Context, msg *model.ChatMessage) error
	List(ctx context.Context, opts ListOptions) (int64, []*model.ChatMessage, error)
}
