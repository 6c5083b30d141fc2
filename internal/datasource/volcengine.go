package datasource

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/utils/httpclient"
	"github.com/veaiops/veaiops/pkg/utils/json"
)

// volcengine queries Volcengine CloudMonitor via its top-level API with
// the platform's HMAC-SHA256 request signature.
type volcengine struct {
	ds   *model.Datasource
	http *httpclient.Client
}

func newVolcengine(ds *model.Datasource, httpc *httpclient.Client) *volcengine {
	return &volcengine{ds: ds, http: httpc}
}

const (
	volcDefaultEndpoint = "https://open.volcengineapi.com"
	volcService         = "Volc_Observe"
	volcAPIVersion      = "2018-01-01"
	volcDefaultRegion   = "cn-beijing"
)

func (v *volcengine) endpoint() string {
	if v.ds.Endpoint != "" {
		return strings.TrimRight(v.ds.Endpoint, "/")
	}
	return volcDefaultEndpoint
}

func (v *volcengine) region() string {
	if v.ds.Region != "" {
		return v.ds.Region
	}
	return volcDefaultRegion
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func hexSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// signRequest applies the Volcengine HMAC-SHA256 signature to the
// request, following the platform's canonical-request scheme.
func (v *volcengine) signRequest(req *http.Request, body []byte) {
	now := time.Now().UTC()
	xDate := now.Format("20060102T150405Z")
	shortDate := now.Format("20060102")

	payloadHash := hexSHA256(body)
	req.Header.Set("Host", req.URL.Host)
	req.Header.Set("X-Date", xDate)
	req.Header.Set("X-Content-Sha256", payloadHash)
	req.Header.Set("Content-Type", "application/json")

	signedHeaders := []string{"content-type", "host", "x-content-sha256", "x-date"}
	var canonicalHeaders strings.Builder
	for _, h := range signedHeaders {
		value := req.Header.Get(h)
		if h == "host" {
			value = req.URL.Host
		}
		canonicalHeaders.WriteString(h + ":" + strings.TrimSpace(value) + "\n")
	}

	query := req.URL.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(query.Get(k)))
	}
	canonicalQuery := strings.Join(pairs, "&")

	canonicalRequest := strings.Join([]string{
		req.Method,
		"/",
		canonicalQuery,
		canonicalHeaders.String(),
		strings.Join(signedHeaders, ";"),
		payloadHash,
	}, "\n")

	scope := fmt.Sprintf("%s/%s/%s/request", shortDate, v.region(), volcService)
	stringToSign := strings.Join([]string{
		"HMAC-SHA256",
		xDate,
		scope,
		hexSHA256([]byte(canonicalRequest)),
	}, "\n")

	kDate := hmacSHA256([]byte(v.ds.SecretKey), []byte(shortDate))
	kRegion := hmacSHA256(kDate, []byte(v.region()))
	kService := hmacSHA256(kRegion, []byte(volcService))
	kSigning := hmacSHA256(kService, []byte("request"))
	signature := hex.EncodeToString(hmacSHA256(kSigning, []byte(stringToSign)))

	req.Header.Set("Authorization", fmt.Sprintf(
		"HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		v.ds.AccessKey, scope, strings.Join(signedHeaders, ";"), signature))
}

// call POSTs one signed action to the top-level API.
func (v *volcengine) call(ctx context.Context, action string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf("%s/?Action=%s&Version=%s", v.endpoint(), action, volcAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	v.signRequest(req, body)

	if err := v.http.DoJSON(req, result); err != nil {
		return errors.ErrDatasourceUnreachable.WithCause(err)
	}
	return nil
}

type volcDimension struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type volcInstance struct {
	Dimensions []volcDimension `json:"Dimensions"`
}

type volcQuery struct {
	Namespace    string         `json:"Namespace"`
	SubNamespace string         `json:"SubNamespace,omitempty"`
	MetricName   string         `json:"MetricName"`
	StartTime    int64          `json:"StartTime"`
	EndTime      int64          `json:"EndTime"`
	Period       string         `json:"Period"`
	Instances    []volcInstance `json:"Instances,omitempty"`
}

type volcDataPoint struct {
	Timestamp int64   `json:"Timestamp"`
	Value     float64 `json:"Value"`
}

type volcQueryResponse struct {
	ResponseMetadata struct {
		Error *struct {
			Code    string `json:"Code"`
			Message string `json:"Message"`
		} `json:"Error,omitempty"`
	} `json:"ResponseMetadata"`
	Result struct {
		Data struct {
			MetricDataResults []struct {
				DataPoints []volcDataPoint `json:"DataPoints"`
			} `json:"MetricDataResults"`
		} `json:"Data"`
	} `json:"Result"`
}

// Ping issues a minimal GetMetricData call; an auth or transport error
// fails it, an empty result does not.
func (v *volcengine) Ping(ctx context.Context) error {
	now := time.Now().Unix()
	var resp volcQueryResponse
	if err := v.call(ctx, "GetMetricData", volcQuery{
		Namespace:  "VCM_ECS",
		MetricName: "CpuTotal",
		StartTime:  now - 60,
		EndTime:    now,
		Period:     "60s",
	}, &resp); err != nil {
		return err
	}
	if e := resp.ResponseMetadata.Error; e != nil {
		return errors.ErrDatasourceUnreachable.WithMessagef("volcengine: %s %s", e.Code, e.Message)
	}
	return nil
}

// QuerySeries fetches datapoints via GetMetricData. The metric is given
// as "Namespace/MetricName" (optionally "Namespace/SubNamespace/MetricName");
// instance narrows by ResourceID.
func (v *volcengine) QuerySeries(ctx context.Context, metric, instance string, window time.Duration) ([]Point, error) {
	parts := strings.Split(metric, "/")
	if len(parts) < 2 {
		return nil, errors.ErrInvalidParam.WithMessagef("volcengine metric must be Namespace/MetricName, got %q", metric)
	}

	now := time.Now()
	query := volcQuery{
		Namespace:  parts[0],
		MetricName: parts[len(parts)-1],
		StartTime:  now.Add(-window).Unix(),
		EndTime:    now.Unix(),
		Period:     "60s",
	}
	if len(parts) == 3 {
		query.SubNamespace = parts[1]
	}
	if instance != "" {
		query.Instances = []volcInstance{{
			Dimensions: []volcDimension{{Name: "ResourceID", Value: instance}},
		}}
	}

	var resp volcQueryResponse
	if err := v.call(ctx, "GetMetricData", query, &resp); err != nil {
		return nil, err
	}
	if e := resp.ResponseMetadata.Error; e != nil {
		return nil, errors.ErrDatasourceUnreachable.WithMessagef("volcengine: %s %s", e.Code, e.Message)
	}

	var points []Point
	for _, r := range resp.Result.Data.MetricDataResults {
		for _, dp := range r.DataPoints {
			points = append(points, Point{Timestamp: time.Unix(dp.Timestamp, 0).UTC(), Value: dp.Value})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	return points, nil
}
