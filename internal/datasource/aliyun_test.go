package datasource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/utils/httpclient"
)

func TestPercentEncode(t *testing.T) {
	assert.Equal(t, "a%20b", percentEncode("a b"))
	assert.Equal(t, "%2A", percentEncode("*"))
	assert.Equal(t, "~", percentEncode("~"))
	assert.Equal(t, "a%2Fb%3Dc%26d", percentEncode("a/b=c&d"))
}

func newTestAliyun(url string) *aliyun {
	return newAliyun(&model.Datasource{
		Type: model.DatasourceAliyun, Endpoint: url,
		AccessKey: "testkey", SecretKey: "testsecret",
	}, httpclient.New(5*time.Second, 1))
}

func TestAliyunSignedQueryCarriesRequiredParams(t *testing.T) {
	a := newTestAliyun("")
	signed := a.sign("DescribeMetricList", map[string]string{"Namespace": "acs_ecs_dashboard"})

	values, err := url.ParseQuery(signed)
	require.NoError(t, err)
	assert.Equal(t, "DescribeMetricList", values.Get("Action"))
	assert.Equal(t, "testkey", values.Get("AccessKeyId"))
	assert.Equal(t, "HMAC-SHA1", values.Get("SignatureMethod"))
	assert.Equal(t, "acs_ecs_dashboard", values.Get("Namespace"))
	assert.NotEmpty(t, values.Get("Signature"))
	assert.NotEmpty(t, values.Get("SignatureNonce"))
}

func TestAliyunQuerySeriesParsesDatapoints(t *testing.T) {
	datapoints := `[{"timestamp": 1700000000000, "Average": 42.5, "instanceId": "i-x"},
		{"timestamp": 1700000060000, "Value": 43.0},
		{"timestamp": 1700000120000, "note": "no numeric field"}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "DescribeMetricList", r.URL.Query().Get("Action"))
		assert.NotEmpty(t, r.URL.Query().Get("Signature"))

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{"Success": true, "Code": "200", "Datapoints": datapoints}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	a := newTestAliyun(srv.URL)
	points, err := a.QuerySeries(context.Background(), "acs_ecs_dashboard/CPUUtilization", "i-x", time.Hour)
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), points[0].Timestamp)
	assert.Equal(t, 42.5, points[0].Value)
	assert.Equal(t, 43.0, points[1].Value)
}

func TestAliyunQuerySeriesRequiresNamespacedMetric(t *testing.T) {
	a := newTestAliyun("")
	_, err := a.QuerySeries(context.Background(), "CPUUtilization", "", time.Hour)
	require.Error(t, err)
}

func TestAliyunSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Success": false, "Code": "InvalidAccessKeyId.NotFound", "Message": "Specified access key is not found."}`))
	}))
	defer srv.Close()

	a := newTestAliyun(srv.URL)
	_, err := a.QuerySeries(context.Background(), "acs_ecs_dashboard/CPUUtilization", "", time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidAccessKeyId.NotFound")
}
