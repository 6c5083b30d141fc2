package datasource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/utils/httpclient"
)

// zabbixStub answers JSON-RPC calls from canned results keyed by method.
func zabbixStub(t *testing.T, calls *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api_jsonrpc.php", r.URL.Path)

		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
			Auth   string          `json:"auth"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*calls = append(*calls, req.Method)

		var result interface{}
		switch req.Method {
		case "apiinfo.version":
			result = "7.0.0"
		case "user.login":
			result = "tok-123"
		case "item.get":
			assert.Equal(t, "tok-123", req.Auth)
			result = []map[string]string{{"itemid": "42", "value_type": "0"}}
		case "history.get":
			assert.Equal(t, "tok-123", req.Auth)
			result = []map[string]string{
				{"clock": "1700000000", "value": "12.5"},
				{"clock": "1700000060", "value": "13.0"},
				{"clock": "1700000120", "value": "not-a-number"},
			}
		default:
			t.Fatalf("unexpected zabbix method %s", req.Method)
		}

		resp := map[string]interface{}{"jsonrpc": "2.0", "result": result, "id": 1}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestZabbix(url string) *zabbix {
	return newZabbix(&model.Datasource{
		Type: model.DatasourceZabbix, Endpoint: url,
		Username: "api", Password: "secret",
	}, httpclient.New(5*time.Second, 1))
}

func TestZabbixQuerySeries(t *testing.T) {
	var calls []string
	srv := zabbixStub(t, &calls)
	defer srv.Close()

	z := newTestZabbix(srv.URL)
	points, err := z.QuerySeries(context.Background(), "system.cpu.util", "web-01", time.Hour)
	require.NoError(t, err)

	// The unparseable sample is skipped.
	require.Len(t, points, 2)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), points[0].Timestamp)
	assert.Equal(t, 12.5, points[0].Value)
	assert.Equal(t, 13.0, points[1].Value)
	assert.Equal(t, []string{"user.login", "item.get", "history.get"}, calls)
}

func TestZabbixReusesAuthToken(t *testing.T) {
	var calls []string
	srv := zabbixStub(t, &calls)
	defer srv.Close()

	z := newTestZabbix(srv.URL)
	_, err := z.QuerySeries(context.Background(), "system.cpu.util", "", time.Hour)
	require.NoError(t, err)
	_, err = z.QuerySeries(context.Background(), "system.cpu.util", "", time.Hour)
	require.NoError(t, err)

	logins := 0
	for _, m := range calls {
		if m == "user.login" {
			logins++
		}
	}
	assert.Equal(t, 1, logins)
}

func TestZabbixPing(t *testing.T) {
	var calls []string
	srv := zabbixStub(t, &calls)
	defer srv.Close()

	require.NoError(t, newTestZabbix(srv.URL).Ping(context.Background()))
	assert.Equal(t, []string{"apiinfo.version"}, calls)
}

func TestZabbixSurfacesRPCErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32602,"message":"Invalid params.","data":"Login name or password is incorrect."},"id":1}`))
	}))
	defer srv.Close()

	z := newTestZabbix(srv.URL)
	_, err := z.QuerySeries(context.Background(), "system.cpu.util", "", time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Login name or password is incorrect")
}
