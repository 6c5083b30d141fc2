package datasource

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/utils/httpclient"
	"github.com/veaiops/veaiops/pkg/utils/json"
)

// aliyun queries Aliyun CloudMonitor (CMS) via its RPC-style REST API
// with HMAC-SHA1 request signing.
type aliyun struct {
	ds   *model.Datasource
	http *httpclient.Client
}

func newAliyun(ds *model.Datasource, httpc *httpclient.Client) *aliyun {
	return &aliyun{ds: ds, http: httpc}
}

const (
	aliyunDefaultEndpoint = "https://metrics.aliyuncs.com"
	aliyunAPIVersion      = "2019-01-01"
	aliyunTimeLayout      = "2006-01-02T15:04:05Z"
)

func (a *aliyun) endpoint() string {
	if a.ds.Endpoint != "" {
		return strings.TrimRight(a.ds.Endpoint, "/")
	}
	return aliyunDefaultEndpoint
}

// percentEncode implements Aliyun's stricter RFC 3986 variant of URL
// encoding used in the signature base string.
func percentEncode(s string) string {
	encoded := url.QueryEscape(s)
	encoded = strings.ReplaceAll(encoded, "+", "%20")
	encoded = strings.ReplaceAll(encoded, "*", "%2A")
	encoded = strings.ReplaceAll(encoded, "%7E", "~")
	return encoded
}

// sign builds the complete signed query string for an action.
func (a *aliyun) sign(action string, params map[string]string) string {
	all := map[string]string{
		"Action":           action,
		"Format":           "JSON",
		"Version":          aliyunAPIVersion,
		"AccessKeyId":      a.ds.AccessKey,
		"SignatureMethod":  "HMAC-SHA1",
		"SignatureVersion": "1.0",
		"SignatureNonce":   uuid.NewString(),
		"Timestamp":        time.Now().UTC().Format(aliyunTimeLayout),
	}
	for k, v := range params {
		all[k] = v
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(all[k]))
	}
	canonical := strings.Join(pairs, "&")

	stringToSign := "GET&%2F&" + percentEncode(canonical)
	mac := hmac.New(sha1.New, []byte(a.ds.SecretKey+"&"))
	mac.Write([]byte(stringToSign))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return canonical + "&Signature=" + percentEncode(signature)
}

// call performs one signed GET and decodes the JSON response.
func (a *aliyun) call(ctx context.Context, action string, params map[string]string, result interface{}) error {
	reqURL := a.endpoint() + "/?" + a.sign(action, params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	if err := a.http.DoJSON(req, result); err != nil {
		return errors.ErrDatasourceUnreachable.WithCause(err)
	}
	return nil
}

type aliyunResponse struct {
	Success    bool   `json:"Success"`
	Code       string `json:"Code"`
	Message    string `json:"Message"`
	Datapoints string `json:"Datapoints"`
}

// Ping lists metric metadata with the smallest possible page to verify
// credentials and reachability.
func (a *aliyun) Ping(ctx context.Context) error {
	var resp aliyunResponse
	if err := a.call(ctx, "DescribeMetricMetaList", map[string]string{"PageSize": "1"}, &resp); err != nil {
		return err
	}
	if !resp.Success && resp.Code != "" {
		return errors.ErrDatasourceUnreachable.WithMessagef("aliyun cms: %s %s", resp.Code, resp.Message)
	}
	return nil
}

// QuerySeries fetches datapoints via DescribeMetricList. The metric is
// given as "Namespace/MetricName"; instance narrows by instanceId.
func (a *aliyun) QuerySeries(ctx context.Context, metric, instance string, window time.Duration) ([]Point, error) {
	namespace, metricName, ok := strings.Cut(metric, "/")
	if !ok {
		return nil, errors.ErrInvalidParam.WithMessagef("aliyun metric must be Namespace/MetricName, got %q", metric)
	}

	now := time.Now().UTC()
	params := map[string]string{
		"Namespace":  namespace,
		"MetricName": metricName,
		"StartTime":  now.Add(-window).Format(aliyunTimeLayout),
		"EndTime":    now.Format(aliyunTimeLayout),
		"Length":     "1000",
	}
	if instance != "" {
		params["Dimensions"] = json.MustMarshalString(map[string]string{"instanceId": instance})
	}

	var resp aliyunResponse
	if err := a.call(ctx, "DescribeMetricList", params, &resp); err != nil {
		return nil, err
	}
	if !resp.Success && resp.Code != "" && resp.Code != "200" {
		return nil, errors.ErrDatasourceUnreachable.WithMessagef("aliyun cms: %s %s", resp.Code, resp.Message)
	}
	if resp.Datapoints == "" {
		return nil, nil
	}

	// Datapoints is a JSON array encoded as a string.
	var raw []map[string]interface{}
	if err := json.Unmarshal([]byte(resp.Datapoints), &raw); err != nil {
		return nil, errors.ErrDatasourceUnreachable.WithCause(err)
	}

	points := make([]Point, 0, len(raw))
	for _, dp := range raw {
		ts, ok := dp["timestamp"].(float64)
		if !ok {
			continue
		}
		value, ok := firstNumber(dp, "Average", "Value", "Maximum")
		if !ok {
			continue
		}
		points = append(points, Point{Timestamp: time.UnixMilli(int64(ts)).UTC(), Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	return points, nil
}

func firstNumber(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k].(float64); ok {
			return v, true
		}
	}
	return 0, false
}
