package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/engine"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/signer"
)

const (
	alice = "thor1quyqjzstpsxsurcszyfpx9q4zct3sxg6w4ldy7"
	bob   = "thor1pc83qygjzv2p29shrqv35xcur50p7gppcsz8vv"
)

type stubSession struct {
	resp *signer.BroadcastResponse
	err  error
}

func (s *stubSession) Address() string { return alice }
func (s *stubSession) Account(context.Context, string) (signer.Account, error) {
	return signer.Account{Address: alice, Sequence: 1}, nil
}
func (s *stubSession) Simulate(context.Context, []signer.Msg, string) (uint64, error) {
	return 1000, nil
}
func (s *stubSession) SignAndBroadcast(context.Context, []signer.Msg, signer.Fee, string) (*signer.BroadcastResponse, error) {
	return s.resp, s.err
}
func (s *stubSession) Close() error { return nil }

type stubConnector struct {
	resp *signer.BroadcastResponse
	err  error
}

func (c *stubConnector) Connect(context.Context, signer.SessionParams) (signer.Session, error) {
	return &stubSession{resp: c.resp, err: c.err}, nil
}

func newTestRouter(t *testing.T, conn signer.Connector) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(node.Close)

	e, err := engine.New(engine.Config{
		Networks: map[networks.Mode]networks.Config{
			networks.Mainnet:  {RestURL: node.URL, RPCURL: node.URL, AddressPrefix: "thor", ChainID: "thorchain-1"},
			networks.Stagenet: {RestURL: node.URL, RPCURL: node.URL, AddressPrefix: "sthor", ChainID: "thorchain-stagenet-2"},
		},
		DefaultNetwork: networks.Mainnet,
		HTTPClient:     node.Client(),
	})
	require.NoError(t, err)
	return NewRouter(NewHandler(e, conn), nil)
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthAndRequestID(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestNormalizeEndpoint(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := do(t, r, http.MethodPost, "/api/normalize", normalizeReq{Asset: "eth-usdc-0xA0b8"})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "ETH-USDC-0xA0b8", out["canonicalId"])
	assert.Equal(t, "secured", out["kind"])

	rec = do(t, r, http.MethodPost, "/api/normalize", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvertEndpoints(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := do(t, r, http.MethodPost, "/api/convert/to-wire", convertReq{Amount: "0.123456789"})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "12345678", out["wire"])
	assert.Equal(t, "0.12345678", out["display"])
	assert.Nil(t, out["dust"])

	rec = do(t, r, http.MethodPost, "/api/convert/to-wire", convertReq{Amount: "0.000000009"})
	require.Equal(t, http.StatusOK, rec.Code)
	out = decode(t, rec)
	assert.Equal(t, "0", out["wire"])
	assert.Equal(t, true, out["dust"])

	rec = do(t, r, http.MethodPost, "/api/convert/to-display", convertReq{Amount: "150000000"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.5", decode(t, rec)["display"])

	rec = do(t, r, http.MethodPost, "/api/convert/to-wire", convertReq{Amount: "-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decode(t, rec)["kind"])
}

func TestPrepareEndpoint(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := do(t, r, http.MethodPost, "/api/tx/prepare", map[string]any{
		"from": alice, "asset": "THOR.RUNE", "amount": "0.0001", "destination": bob,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "send", out["kind"])
	coin := out["coin"].(map[string]any)
	assert.Equal(t, "10000", coin["amount"])
	assert.Equal(t, "rune", coin["denom"])

	rec = do(t, r, http.MethodPost, "/api/tx/prepare", map[string]any{
		"from": alice, "asset": "BTC.BTC", "amount": "0", "deposit": true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "missing memo")
}

func TestBroadcastDuplicateIsWarning(t *testing.T) {
	conn := &stubConnector{resp: &signer.BroadcastResponse{Code: 19, Codespace: "sdk", RawLog: "tx already exists in cache"}}
	r := newTestRouter(t, conn)

	rec := do(t, r, http.MethodPost, "/api/tx/broadcast", map[string]any{"asset": "RUNE", "amount": "1", "destination": bob})
	require.Equal(t, http.StatusConflict, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "already_submitted", out["kind"])
	assert.NotEmpty(t, out["warning"])
}

func TestBroadcastUnknownOutcomeIsWarning(t *testing.T) {
	conn := &stubConnector{err: errors.New("read tcp: connection reset by peer")}
	r := newTestRouter(t, conn)

	rec := do(t, r, http.MethodPost, "/api/tx/broadcast", map[string]any{"asset": "RUNE", "amount": "1", "destination": bob})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "outcome_unknown", out["kind"])
	assert.Contains(t, out["error"], "check your history")
	assert.NotEmpty(t, out["warning"])
}

func TestBroadcastRejected(t *testing.T) {
	conn := &stubConnector{resp: &signer.BroadcastResponse{Code: 5, Codespace: "sdk", RawLog: "insufficient funds"}}
	r := newTestRouter(t, conn)

	rec := do(t, r, http.MethodPost, "/api/tx/broadcast", map[string]any{"asset": "RUNE", "amount": "1", "destination": bob})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "insufficient funds", decode(t, rec)["raw_log"])
}

func TestBroadcastAcceptedAndGas(t *testing.T) {
	conn := &stubConnector{resp: &signer.BroadcastResponse{TxHash: "ABCD"}}
	r := newTestRouter(t, conn)

	rec := do(t, r, http.MethodPost, "/api/tx/broadcast", map[string]any{"asset": "RUNE", "amount": "1", "destination": bob})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "ABCD", out["txhash"])
	assert.EqualValues(t, 1, out["attempts"])

	rec = do(t, r, http.MethodPost, "/api/tx/estimate-gas", map[string]any{"asset": "RUNE", "amount": "1", "destination": bob})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1100", decode(t, rec)["gas"])
}

func TestBroadcastWithoutSigner(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := do(t, r, http.MethodPost, "/api/tx/broadcast", map[string]any{"asset": "RUNE", "amount": "1", "destination": bob})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusEndpoint(t *testing.T) {
	r := newTestRouter(t, nil)
	hash := strings.Repeat("ab", 32)

	rec := do(t, r, http.MethodGet, "/api/tx/"+hash+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "pending", out["status"])
	assert.Nil(t, out["basic_info"])
	assert.Nil(t, out["error"])

	rec = do(t, r, http.MethodGet, "/api/tx/"+hash+"/status?poll=1&attempts=1&interval_ms=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/tx/nothex/status", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/tx/"+hash, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["basic_info"])
}

func TestNetworkEndpoints(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := do(t, r, http.MethodGet, "/api/network", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mainnet", decode(t, rec)["mode"])

	rec = do(t, r, http.MethodPost, "/api/network", networkReq{Mode: "Stagenet"})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "stagenet", out["mode"])
	assert.Equal(t, "sthor", out["address_prefix"])

	rec = do(t, r, http.MethodPost, "/api/network", networkReq{Mode: "testnet"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `thortx_network_switches_total{network="stagenet"} 1`)
}

func TestNewServerLoopbackOnly(t *testing.T) {
	_, err := NewServer("0.0.0.0", "8080", http.NotFoundHandler())
	assert.Error(t, err)

	s, err := NewServer("127.0.0.1", "8080", http.NotFoundHandler())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", s.Addr())

	_, err = NewServer("localhost", "8080", http.NotFoundHandler())
	assert.NoError(t, err)
}
