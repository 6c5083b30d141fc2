// Package datasource provides drivers for the supported metrics
// backends: Zabbix (JSON-RPC), Aliyun CloudMonitor and Volcengine
// CloudMonitor (signed REST).
package datasource

import (
	"context"
	"time"

	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/utils/httpclient"
)

const requestTimeout = 30 * time.Second

// Point is one sample of a metric series.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Driver queries one metrics backend.
type Driver interface {
	// Ping verifies connectivity and credentials.
	Ping(ctx context.Context) error
	// QuerySeries returns samples of the metric for the instance over
	// the trailing window, oldest first.
	QuerySeries(ctx context.Context, metric, instance string, window time.Duration) ([]Point, error)
}

// New constructs the driver for a datasource document.
func New(ds *model.Datasource) (Driver, error) {
	httpc := httpclient.New(requestTimeout, httpclient.DefaultMaxAttempts)
	switch ds.Type {
	case model.DatasourceZabbix:
		return newZabbix(ds, httpc), nil
	case model.DatasourceAliyun:
		return newAliyun(ds, httpc), nil
	case model.DatasourceVolcengine:
		return newVolcengine(ds, httpc), nil
	default:
		return nil, errors.ErrUnsupportedDatasource.WithMessagef("datasource type %q", ds.Type)
	}
}
