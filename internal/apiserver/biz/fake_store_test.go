package biz

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/veaiops/veaiops/internal/apiserver/store"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/errors"
)

// fakeFactory is an in-memory store.Factory for service tests. Notice
// updates happen concurrently during fan-out, so everything locks.
type fakeFactory struct {
	mu sync.Mutex

	events      map[string]*model.Event
	notices     map[string]*model.EventNoticeDetail
	noticeOrder []string
	subscribes  map[string]*model.Subscribe
	strategies  map[string]*model.InformStrategy
	bots        map[string]*model.Bot
	datasources map[string]*model.Datasource
	tasks       map[string]*model.ThresholdTask
	qapairs     map[string]*model.QAPair
	messages    []*model.ChatMessage
}

func defaultListOpts() store.ListOptions {
	return store.ListOptions{Limit: 100}
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		events:      map[string]*model.Event{},
		notices:     map[string]*model.EventNoticeDetail{},
		subscribes:  map[string]*model.Subscribe{},
		strategies:  map[string]*model.InformStrategy{},
		bots:        map[string]*model.Bot{},
		datasources: map[string]*model.Datasource{},
		tasks:       map[string]*model.ThresholdTask{},
		qapairs:     map[string]*model.QAPair{},
	}
}

func (f *fakeFactory) Events() store.EventStore           { return (*fakeEvents)(f) }
func (f *fakeFactory) Notices() store.NoticeStore         { return (*fakeNotices)(f) }
func (f *fakeFactory) Subscribes() store.SubscribeStore   { return (*fakeSubscribes)(f) }
func (f *fakeFactory) Strategies() store.StrategyStore    { return (*fakeStrategies)(f) }
func (f *fakeFactory) Bots() store.BotStore               { return (*fakeBots)(f) }
func (f *fakeFactory) Datasources() store.DatasourceStore { return (*fakeDatasources)(f) }
func (f *fakeFactory) Tasks() store.TaskStore             { return (*fakeTasks)(f) }
func (f *fakeFactory) QAPairs() store.QAPairStore         { return (*fakeQAPairs)(f) }
func (f *fakeFactory) Messages() store.MessageStore       { return (*fakeMessages)(f) }
func (f *fakeFactory) Close() error                       { return nil }

type fakeEvents fakeFactory

func (s *fakeEvents) Create(_ context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; ok {
		return errors.ErrAlreadyExists
	}
	cp := *event
	s.events[event.ID] = &cp
	return nil
}

func (s *fakeEvents) Update(_ context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; !ok {
		return errors.ErrNotFound
	}
	cp := *event
	s.events[event.ID] = &cp
	return nil
}

func (s *fakeEvents) Get(_ context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *event
	return &cp, nil
}

func (s *fakeEvents) List(_ context.Context, _ store.ListOptions) (int64, []*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*model.Event, 0, len(s.events))
	for _, e := range s.events {
		cp := *e
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return int64(len(list)), list, nil
}

type fakeNotices fakeFactory

func (s *fakeNotices) CreateMany(_ context.Context, details []*model.EventNoticeDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range details {
		cp := *d
		s.notices[d.ID] = &cp
		s.noticeOrder = append(s.noticeOrder, d.ID)
	}
	return nil
}

func (s *fakeNotices) Update(_ context.Context, detail *model.EventNoticeDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notices[detail.ID]; !ok {
		return errors.ErrNotFound
	}
	cp := *detail
	s.notices[detail.ID] = &cp
	return nil
}

func (s *fakeNotices) ListByEvent(_ context.Context, eventID string) ([]*model.EventNoticeDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*model.EventNoticeDetail
	for _, id := range s.noticeOrder {
		if d := s.notices[id]; d.EventID == eventID {
			cp := *d
			list = append(list, &cp)
		}
	}
	return list, nil
}

type fakeSubscribes fakeFactory

func (s *fakeSubscribes) Create(_ context.Context, sub *model.Subscribe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	s.subscribes[sub.ID] = &cp
	return nil
}

func (s *fakeSubscribes) Update(_ context.Context, sub *model.Subscribe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribes[sub.ID]; !ok {
		return errors.ErrNotFound
	}
	cp := *sub
	s.subscribes[sub.ID] = &cp
	return nil
}

func (s *fakeSubscribes) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribes, id)
	return nil
}

func (s *fakeSubscribes) Get(_ context.Context, id string) (*model.Subscribe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscribes[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (s *fakeSubscribes) List(_ context.Context, _ store.ListOptions) (int64, []*model.Subscribe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*model.Subscribe, 0, len(s.subscribes))
	for _, sub := range s.subscribes {
		cp := *sub
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return int64(len(list)), list, nil
}

func (s *fakeSubscribes) ListEnabledByAgentType(_ context.Context, agentType model.AgentType) ([]*model.Subscribe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*model.Subscribe
	for _, sub := range s.subscribes {
		if sub.Enabled && sub.AgentType == agentType {
			cp := *sub
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

type fakeStrategies fakeFactory

func (s *fakeStrategies) Create(_ context.Context, strategy *model.InformStrategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *strategy
	s.strategies[strategy.ID] = &cp
	return nil
}

func (s *fakeStrategies) Update(_ context.Context, strategy *model.InformStrategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.strategies[strategy.ID]; !ok {
		return errors.ErrNotFound
	}
	cp := *strategy
	s.strategies[strategy.ID] = &cp
	return nil
}

func (s *fakeStrategies) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.strategies, id)
	return nil
}

func (s *fakeStrategies) Get(_ context.Context, id string) (*model.InformStrategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	strategy, ok := s.strategies[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *strategy
	return &cp, nil
}

func (s *fakeStrategies) List(_ context.Context, _ store.ListOptions) (int64, []*model.InformStrategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*model.InformStrategy, 0, len(s.strategies))
	for _, strategy := range s.strategies {
		cp := *strategy
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return int64(len(list)), list, nil
}

type fakeBots fakeFactory

func (s *fakeBots) Create(_ context.Context, bot *model.Bot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *bot
	s.bots[bot.ID] = &cp
	return nil
}

func (s *fakeBots) Update(_ context.Context, bot *model.Bot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bots[bot.ID]; !ok {
		return errors.ErrNotFound
	}
	cp := *bot
	s.bots[bot.ID] = &cp
	return nil
}

func (s *fakeBots) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bots, id)
	return nil
}

func (s *fakeBots) Get(_ context.Context, id string) (*model.Bot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bot, ok := s.bots[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *bot
	return &cp, nil
}

func (s *fakeBots) List(_ context.Context, _ store.ListOptions) (int64, []*model.Bot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*model.Bot, 0, len(s.bots))
	for _, bot := range s.bots {
		cp := *bot
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return int64(len(list)), list, nil
}

type fakeDatasources fakeFactory

func (s *fakeDatasources) Create(_ context.Context, ds *model.Datasource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ds
	s.datasources[ds.ID] = &cp
	return nil
}

func (s *fakeDatasources) Update(_ context.Context, ds *model.Datasource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasources[ds.ID]; !ok {
		return errors.ErrNotFound
	}
	cp := *ds
	s.datasources[ds.ID] = &cp
	return nil
}

func (s *fakeDatasources) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.datasources, id)
	return nil
}

func (s *fakeDatasources) Get(_ context.Context, id string) (*model.Datasource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datasources[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *ds
	return &cp, nil
}

func (s *fakeDatasources) List(_ context.Context, _ store.ListOptions) (int64, []*model.Datasource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*model.Datasource, 0, len(s.datasources))
	for _, ds := range s.datasources {
		cp := *ds
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return int64(len(list)), list, nil
}

type fakeTasks fakeFactory

func (s *fakeTasks) Create(_ context.Context, task *model.ThresholdTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *task
	s.tasks[task.ID] = &cp
	return nil
}

func (s *fakeTasks) Update(_ context.Context, task *model.ThresholdTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return errors.ErrNotFound
	}
	cp := *task
	s.tasks[task.ID] = &cp
	return nil
}

func (s *fakeTasks) Get(_ context.Context, id string) (*model.ThresholdTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *task
	return &cp, nil
}

func (s *fakeTasks) List(_ context.Context, _ store.ListOptions) (int64, []*model.ThresholdTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*model.ThresholdTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		cp := *task
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return int64(len(list)), list, nil
}

func (s *fakeTasks) Claim(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return false, errors.ErrNotFound
	}
	if task.Status != model.TaskStatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	task.Status = model.TaskStatusRunning
	task.StartedAt = &now
	return true, nil
}

func (s *fakeTasks) ListNonTerminal(_ context.Context) ([]*model.ThresholdTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*model.ThresholdTask
	for _, task := range s.tasks {
		if task.Status == model.TaskStatusPending || task.Status == model.TaskStatusRunning {
			cp := *task
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

type fakeQAPairs fakeFactory

func (s *fakeQAPairs) Create(_ context.Context, pair *model.QAPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *pair
	s.qapairs[pair.ID] = &cp
	return nil
}

func (s *fakeQAPairs) Update(_ context.Context, pair *model.QAPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.qapairs[pair.ID]; !ok {
		return errors.ErrNotFound
	}
	cp := *pair
	s.qapairs[pair.ID] = &cp
	return nil
}

func (s *fakeQAPairs) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.qapairs, id)
	return nil
}

func (s *fakeQAPairs) Get(_ context.Context, id string) (*model.QAPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair, ok := s.qapairs[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *pair
	return &cp, nil
}

func (s *fakeQAPairs) List(_ context.Context, _ store.ListOptions) (int64, []*model.QAPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*model.QAPair, 0, len(s.qapairs))
	for _, pair := range s.qapairs {
		cp := *pair
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return int64(len(list)), list, nil
}

type fakeMessages fakeFactory

func (s *fakeMessages) Create(_ context.Context, msg *model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *msg
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *fakeMessages) List(_ context.Context, _ store.ListOptions) (int64, []*model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*model.ChatMessage, 0, len(s.messages))
	for _, msg := range s.messages {
		cp := *msg
		list = append(list, &cp)
	}
	return int64(len(list)), list, nil
}
