package model

import "time"

// TaskStatus tracks a threshold recommendation task.
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "PENDING"
	TaskStatusRunning TaskStatus = "RUNNING"
	TaskStatusSuccess TaskStatus = "SUCCESS"
	TaskStatusFailed  TaskStatus = "FAILED"
)

// ThresholdTask asks for recommended alarm thresholds for one metric on
// one datasource. Tasks are created PENDING and completed asynchronously.
type ThresholdTask struct {
	ID           string `bson:"_id" json:"id"`
	DatasourceID string `bson:"datasource_id" json:"datasource_id"`

	Metric string `bson:"metric" json:"metric"`
	// Instance narrows the metric to one host/resource (Zabbix item host,
	// Aliyun instanceId).
	Instance string `bson:"instance,omitempty" json:"instance,omitempty"`
	// Window is how far back the series is sampled.
	Window time.Duration `bson:"window" json:"window"`
	// Sensitivity scales how tight the recommended band is; higher means
	// wider thresholds (fewer alarms).
	Sensitivity float64 `bson:"sensitivity" json:"sensitivity"`

	Status     TaskStatus       `bson:"status" json:"status"`
	Result     *ThresholdResult `bson:"result,omitempty" json:"result,omitempty"`
	FailReason string           `bson:"fail_reason,omitempty" json:"fail_reason,omitempty"`

	StartedAt *time.Time `bson:"started_at,omitempty" json:"started_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// ThresholdResult is the recommendation produced for a task.
type ThresholdResult struct {
	Upper       float64 `bson:"upper" json:"upper"`
	Lower       float64 `bson:"lower" json:"lower"`
	Mean        float64 `bson:"mean" json:"mean"`
	StdDev      float64 `bson:"std_dev" json:"std_dev"`
	SampleCount int     `bson:"sample_count" json:"sample_count"`
}
