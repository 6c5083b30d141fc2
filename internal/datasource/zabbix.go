package datasource

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/utils/httpclient"
	"github.com/veaiops/veaiops/pkg/utils/json"
)

// zabbix speaks the Zabbix JSON-RPC 2.0 API. The auth token is obtained
// lazily on first authenticated call and reused until it expires.
type zabbix struct {
	ds   *model.Datasource
	http *httpclient.Client

	mu    sync.Mutex
	token string
}

func newZabbix(ds *model.Datasource, httpc *httpclient.Client) *zabbix {
	return &zabbix{ds: ds, http: httpc}
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	Auth    string      `json:"auth,omitempty"`
	ID      int         `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (z *zabbix) endpoint() string {
	base := strings.TrimRight(z.ds.Endpoint, "/")
	if strings.HasSuffix(base, "api_jsonrpc.php") {
		return base
	}
	return base + "/api_jsonrpc.php"
}

// call runs one JSON-RPC method and decodes its result field.
func (z *zabbix) call(ctx context.Context, method string, params interface{}, auth string, result interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		Auth:    auth,
		ID:      1,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.endpoint(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json-rpc")

	var resp rpcResponse
	if err := z.http.DoJSON(req, &resp); err != nil {
		return errors.ErrDatasourceUnreachable.WithCause(err)
	}
	if resp.Error != nil {
		return errors.ErrDatasourceUnreachable.WithMessagef(
			"zabbix %s failed: %s %s", method, resp.Error.Message, resp.Error.Data)
	}
	if result != nil {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return errors.ErrDatasourceUnreachable.WithCause(err)
		}
	}
	return nil
}

// login fetches and caches the auth token.
func (z *zabbix) login(ctx context.Context) (string, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.token != "" {
		return z.token, nil
	}

	var token string
	err := z.call(ctx, "user.login", map[string]string{
		"username": z.ds.Username,
		"password": z.ds.Password,
	}, "", &token)
	if err != nil {
		return "", err
	}
	z.token = token
	return token, nil
}

// Ping checks the API version endpoint, which needs no auth.
func (z *zabbix) Ping(ctx context.Context) error {
	var version string
	return z.call(ctx, "apiinfo.version", []string{}, "", &version)
}

type zabbixItem struct {
	ItemID    string `json:"itemid"`
	ValueType string `json:"value_type"`
}

type zabbixHistory struct {
	Clock string `json:"clock"`
	Value string `json:"value"`
}

// QuerySeries resolves the item by key on the instance host, then pulls
// its history for the window.
func (z *zabbix) QuerySeries(ctx context.Context, metric, instance string, window time.Duration) ([]Point, error) {
	token, err := z.login(ctx)
	if err != nil {
		return nil, err
	}

	itemParams := map[string]interface{}{
		"output": []string{"itemid", "value_type"},
		"search": map[string]string{"key_": metric},
	}
	if instance != "" {
		itemParams["host"] = instance
	}

	var items []zabbixItem
	if err := z.call(ctx, "item.get", itemParams, token, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.ErrNotFound.WithMessagef("zabbix item %q not found on host %q", metric, instance)
	}
	item := items[0]

	var history []zabbixHistory
	if err := z.call(ctx, "history.get", map[string]interface{}{
		"output":    "extend",
		"itemids":   item.ItemID,
		"history":   item.ValueType,
		"time_from": time.Now().Add(-window).Unix(),
		"sortfield": "clock",
		"sortorder": "ASC",
	}, token, &history); err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(history))
	for _, h := range history {
		clock, err := strconv.ParseInt(h.Clock, 10, 64)
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(h.Value, 64)
		if err != nil {
			continue
		}
		points = append(points, Point{Timestamp: time.Unix(clock, 0).UTC(), Value: value})
	}
	return points, nil
}
