package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veaiops/veaiops/internal/datasource"
	"github.com/veaiops/veaiops/internal/model"
)

// fakeDriver serves a canned series.
type fakeDriver struct {
	points []datasource.Point
	err    error
}

func (d *fakeDriver) Ping(context.Context) error { return d.err }

func (d *fakeDriver) QuerySeries(context.Context, string, string, time.Duration) ([]datasource.Point, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.points, nil
}

func steadySeries(n int, base float64) []datasource.Point {
	points := make([]datasource.Point, n)
	start := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := range points {
		v := base
		if i%2 == 0 {
			v += 1
		}
		points[i] = datasource.Point{Timestamp: start.Add(time.Duration(i) * time.Minute), Value: v}
	}
	return points
}

func newTestTaskService(t *testing.T, factory *fakeFactory, driver datasource.Driver) *TaskService {
	t.Helper()
	events := newTestEventService(t, factory, &fakeAdapter{typ: model.ChannelLark})
	svc := NewTaskService(factory, events)
	svc.newDriver = func(*model.Datasource) (datasource.Driver, error) { return driver, nil }
	return svc
}

func seedTask(t *testing.T, factory *fakeFactory) *model.ThresholdTask {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, factory.Datasources().Create(ctx, &model.Datasource{
		ID: "ds-1", Name: "prod-zabbix", Type: model.DatasourceZabbix,
	}))
	task := &model.ThresholdTask{
		ID:           "task-1",
		DatasourceID: "ds-1",
		Metric:       "system.cpu.util",
		Window:       24 * time.Hour,
		Status:       model.TaskStatusPending,
	}
	require.NoError(t, factory.Tasks().Create(ctx, task))
	return task
}

func TestTaskExecuteComputesThresholdAndEmitsEvent(t *testing.T) {
	factory := newFakeFactory()
	task := seedTask(t, factory)
	svc := newTestTaskService(t, factory, &fakeDriver{points: steadySeries(120, 50)})

	svc.Execute(context.Background(), task.ID)

	done, err := factory.Tasks().Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusSuccess, done.Status)
	require.NotNil(t, done.Result)
	assert.Greater(t, done.Result.Upper, done.Result.Lower)
	assert.Equal(t, 120, done.Result.SampleCount)

	// A threshold event entered the pipeline; with nobody subscribed it
	// terminates as NONE_DISPATCH.
	_, events, err := factory.Events().List(context.Background(), defaultListOpts())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.AgentTypeThreshold, events[0].AgentType)
	assert.Equal(t, model.EventStatusNoneDispatch, events[0].Status)
	assert.Equal(t, "prod-zabbix", events[0].RawData["datasource"])
}

func TestTaskExecuteRecordsFailure(t *testing.T) {
	factory := newFakeFactory()
	task := seedTask(t, factory)
	svc := newTestTaskService(t, factory, &fakeDriver{err: assert.AnError})

	svc.Execute(context.Background(), task.ID)

	done, err := factory.Tasks().Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusFailed, done.Status)
	assert.NotEmpty(t, done.FailReason)
	assert.Nil(t, done.Result)

	_, events, err := factory.Events().List(context.Background(), defaultListOpts())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestTaskExecuteLostClaimIsNoop(t *testing.T) {
	factory := newFakeFactory()
	task := seedTask(t, factory)
	ctx := context.Background()

	claimed, err := factory.Tasks().Claim(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	svc := newTestTaskService(t, factory, &fakeDriver{points: steadySeries(120, 50)})
	svc.Execute(ctx, task.ID)

	stored, err := factory.Tasks().Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusRunning, stored.Status)
}

func TestTaskCreateRequiresDatasource(t *testing.T) {
	factory := newFakeFactory()
	svc := newTestTaskService(t, factory, &fakeDriver{})

	err := svc.Create(context.Background(), &model.ThresholdTask{
		DatasourceID: "missing", Metric: "cpu",
	})
	require.Error(t, err)
}

func TestSweepRedrivesPendingAndFailsStuck(t *testing.T) {
	factory := newFakeFactory()
	ctx := context.Background()
	require.NoError(t, factory.Datasources().Create(ctx, &model.Datasource{
		ID: "ds-1", Name: "prod-zabbix", Type: model.DatasourceZabbix,
	}))

	pending := &model.ThresholdTask{
		ID: "pending-1", DatasourceID: "ds-1", Metric: "cpu",
		Window: time.Hour, Status: model.TaskStatusPending,
	}
	require.NoError(t, factory.Tasks().Create(ctx, pending))

	stuckStart := time.Now().UTC().Add(-time.Hour)
	stuck := &model.ThresholdTask{
		ID: "stuck-1", DatasourceID: "ds-1", Metric: "mem",
		Window: time.Hour, Status: model.TaskStatusRunning, StartedAt: &stuckStart,
	}
	require.NoError(t, factory.Tasks().Create(ctx, stuck))

	svc := newTestTaskService(t, factory, &fakeDriver{points: steadySeries(60, 10)})
	svc.Sweep(ctx)

	redriven, err := factory.Tasks().Get(ctx, "pending-1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusSuccess, redriven.Status)

	failed, err := factory.Tasks().Get(ctx, "stuck-1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusFailed, failed.Status)
	assert.Equal(t, "task exceeded running deadline", failed.FailReason)
}
