package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"

	"github.com/veaiops/veaiops/internal/apiserver/store"
	"github.com/veaiops/veaiops/internal/datasource"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/id"
)

// defaultRunningDeadline is how long a RUNNING task may live before the
// sweeper declares it stuck and fails it.
const defaultRunningDeadline = 10 * time.Minute

// TaskService handles threshold recommendation tasks. Tasks are created
// PENDING and executed asynchronously; completed tasks emit a threshold
// event into the dispatch pipeline.
type TaskService struct {
	store  store.Factory
	events *EventService

	// newDriver is swappable in tests.
	newDriver func(ds *model.Datasource) (datasource.Driver, error)

	runningDeadline time.Duration
}

// NewTaskService creates a new TaskService.
func NewTaskService(factory store.Factory, events *EventService) *TaskService {
	return &TaskService{
		store:           factory,
		events:          events,
		newDriver:       datasource.New,
		runningDeadline: defaultRunningDeadline,
	}
}

// Create persists a PENDING task and kicks its execution in the
// background. The sweeper re-drives it if the process dies first.
func (s *TaskService) Create(ctx context.Context, task *model.ThresholdTask) error {
	if _, err := s.store.Datasources().Get(ctx, task.DatasourceID); err != nil {
		return err
	}
	if task.Window <= 0 {
		task.Window = 24 * time.Hour
	}

	now := time.Now().UTC()
	task.ID = id.NewULID()
	task.Status = model.TaskStatusPending
	task.Result = nil
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.store.Tasks().Create(ctx, task); err != nil {
		return err
	}

	taskID := task.ID
	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), s.runningDeadline)
		defer cancel()
		s.Execute(runCtx, taskID)
	}()
	return nil
}

// Get retrieves a task.
func (s *TaskService) Get(ctx context.Context, taskID string) (*model.ThresholdTask, error) {
	return s.store.Tasks().Get(ctx, taskID)
}

// List lists tasks.
func (s *TaskService) List(ctx context.Context, offset, limit int64) (int64, []*model.ThresholdTask, error) {
	return s.store.Tasks().List(ctx, store.ListOptions{Offset: offset, Limit: limit})
}

// Execute claims a PENDING task and runs it to SUCCESS or FAILED. A lost
// claim is not an error: someone else is running it.
func (s *TaskService) Execute(ctx context.Context, taskID string) {
	claimed, err := s.store.Tasks().Claim(ctx, taskID)
	if err != nil {
		logger.Errorw("Failed to claim threshold task", "task_id", taskID, "error", err)
		return
	}
	if !claimed {
		return
	}

	task, err := s.store.Tasks().Get(ctx, taskID)
	if err != nil {
		logger.Errorw("Failed to load claimed task", "task_id", taskID, "error", err)
		return
	}

	result, runErr := s.run(ctx, task)
	if runErr != nil {
		s.finish(ctx, task, nil, runErr)
		return
	}
	s.finish(ctx, task, result, nil)
}

// run computes the recommendation for a claimed task.
func (s *TaskService) run(ctx context.Context, task *model.ThresholdTask) (*model.ThresholdResult, error) {
	ds, err := s.store.Datasources().Get(ctx, task.DatasourceID)
	if err != nil {
		return nil, err
	}
	driver, err := s.newDriver(ds)
	if err != nil {
		return nil, err
	}
	points, err := driver.QuerySeries(ctx, task.Metric, task.Instance, task.Window)
	if err != nil {
		return nil, err
	}
	return datasource.RecommendThreshold(points, task.Sensitivity)
}

// finish writes the terminal status and, on success, emits a threshold
// event. Event emission is best-effort: the task result stands on its own.
func (s *TaskService) finish(ctx context.Context, task *model.ThresholdTask, result *model.ThresholdResult, runErr error) {
	task.UpdatedAt = time.Now().UTC()
	if runErr != nil {
		task.Status = model.TaskStatusFailed
		task.FailReason = runErr.Error()
		logger.Errorw("Threshold task failed", "task_id", task.ID, "error", runErr)
	} else {
		task.Status = model.TaskStatusSuccess
		task.Result = result
		task.FailReason = ""
		logger.Infow("Threshold task completed",
			"task_id", task.ID, "metric", task.Metric, "upper", result.Upper, "lower", result.Lower)
	}

	if err := s.store.Tasks().Update(ctx, task); err != nil {
		logger.Errorw("Failed to persist task result", "task_id", task.ID, "error", err)
		return
	}

	if runErr == nil && s.events != nil {
		s.emitEvent(ctx, task, result)
	}
}

func (s *TaskService) emitEvent(ctx context.Context, task *model.ThresholdTask, result *model.ThresholdResult) {
	ds, err := s.store.Datasources().Get(ctx, task.DatasourceID)
	if err != nil {
		logger.Errorw("Failed to load datasource for threshold event", "task_id", task.ID, "error", err)
		return
	}

	event := &model.Event{
		AgentType: model.AgentTypeThreshold,
		RawData: toRawData(model.ThresholdPayload{
			TaskID:     task.ID,
			Datasource: ds.Name,
			Metric:     task.Metric,
			Upper:      result.Upper,
			Lower:      result.Lower,
		}),
	}
	if err := s.events.Create(ctx, event); err != nil {
		logger.Errorw("Failed to emit threshold event", "task_id", task.ID, "error", err)
	}
}

// Sweep re-drives PENDING tasks and fails tasks stuck in RUNNING past
// the deadline. Called periodically by the refresher.
func (s *TaskService) Sweep(ctx context.Context) {
	tasksList, err := s.store.Tasks().ListNonTerminal(ctx)
	if err != nil {
		logger.Errorw("Task sweep failed to list tasks", "error", err)
		return
	}

	now := time.Now().UTC()
	for _, task := range tasksList {
		switch task.Status {
		case model.TaskStatusPending:
			s.Execute(ctx, task.ID)
		case model.TaskStatusRunning:
			if task.StartedAt != nil && now.Sub(*task.StartedAt) > s.runningDeadline {
				task.Status = model.TaskStatusFailed
				task.FailReason = "task exceeded running deadline"
				task.UpdatedAt = now
				if err := s.store.Tasks().Update(ctx, task); err != nil {
					logger.Errorw("Failed to fail stuck task", "task_id", task.ID, "error", err)
				} else {
					logger.Warnw("Stuck threshold task failed by sweeper", "task_id", task.ID)
				}
			}
		}
	}
}
