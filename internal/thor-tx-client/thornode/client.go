package thornode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/quantumauth-io/quantum-go-utils/retry"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"
)

const (
	maxResponseBytes = 8 << 20
	lookupMaxDelay   = 2 * time.Second
)

// Client talks to THORNode's REST and RPC endpoints. Every call names the network snapshot
// it targets.
type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.HTTPTimeout}
	}
	return &Client{httpClient: httpClient}
}

// Account returns the on-chain account number and sequence for addr on cfg's network.
func (c *Client) Account(ctx context.Context, cfg *networks.Config, addr string) (Account, error) {
	var out accountResponse
	if err := c.getJSON(ctx, cfg.RestURL+"/cosmos/auth/v1beta1/accounts/"+url.PathEscape(addr), &out); err != nil {
		return Account{}, errors.Wrapf(err, "account %s", addr)
	}
	if out.Account.Address == "" {
		out.Account.Address = addr
	}
	return out.Account, nil
}

// ModuleAddress resolves a module account's address on cfg's network, retrying transient
// failures until the lookup budget runs out.
func (c *Client) ModuleAddress(ctx context.Context, cfg *networks.Config, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.LookupTimeout)
	defer cancel()

	rcfg := retry.DefaultConfig()
	rcfg.MaxDelayBeforeRetrying = lookupMaxDelay
	rcfg.InitialDelayBeforeRetrying = lookupMaxDelay / 10

	var out moduleAccountResponse
	_, err := retry.Retry(ctx, rcfg,
		func(ctx context.Context) ([]interface{}, error) {
			return nil, c.getJSON(ctx, cfg.RestURL+"/cosmos/auth/v1beta1/module_accounts/"+url.PathEscape(name), &out)
		},
		nil,
		"get module account "+name)
	if err != nil {
		return "", errors.Wrapf(err, "module account %s on %s", name, cfg.Mode)
	}

	addr := strings.TrimSpace(out.Account.BaseAccount.Address)
	if addr == "" {
		return "", errors.Newf("module account %s on %s has no address", name, cfg.Mode)
	}
	return addr, nil
}

// Tx looks up a committed transaction. A transaction the node has not indexed yet yields
// txerr.ErrLookupIncomplete.
func (c *Client) Tx(ctx context.Context, cfg *networks.Config, hash string) (*TxResponse, error) {
	var out TxResponse
	if err := c.getJSON(ctx, cfg.RestURL+"/cosmos/tx/v1beta1/txs/"+url.PathEscape(hash), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TxStages returns the settlement pipeline stages for an inbound hash.
func (c *Client) TxStages(ctx context.Context, cfg *networks.Config, hash string) (*TxStatus, error) {
	var out TxStatus
	if err := c.getJSON(ctx, cfg.RestURL+"/thorchain/tx/status/"+url.PathEscape(hash), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NodeNetwork reads the chain id a node reports on its RPC status endpoint.
func (c *Client) NodeNetwork(ctx context.Context, cfg *networks.Config) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.LookupTimeout)
	defer cancel()

	rcfg := retry.DefaultConfig()
	rcfg.MaxDelayBeforeRetrying = lookupMaxDelay
	rcfg.InitialDelayBeforeRetrying = lookupMaxDelay / 10

	var out nodeStatusResponse
	_, err := retry.Retry(ctx, rcfg,
		func(ctx context.Context) ([]interface{}, error) {
			return nil, c.getJSON(ctx, cfg.RPCURL+"/status", &out)
		},
		nil,
		"get node status")
	if err != nil {
		return "", errors.Wrapf(err, "node status on %s", cfg.Mode)
	}

	network := strings.TrimSpace(out.Result.NodeInfo.Network)
	if network == "" {
		return "", errors.Newf("node status on %s reports no network", cfg.Mode)
	}
	return network, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "GET %s", endpoint), txerr.ErrEndpointUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "read %s", endpoint), txerr.ErrEndpointUnavailable)
	}

	if resp.StatusCode != http.StatusOK {
		if isNotFound(resp.StatusCode, body) {
			return errors.Wrapf(txerr.ErrLookupIncomplete, "GET %s", endpoint)
		}
		err := fmt.Errorf("GET %s: status %d: %s", endpoint, resp.StatusCode, truncate(string(body)))
		if resp.StatusCode >= http.StatusInternalServerError {
			return errors.Mark(err, txerr.ErrEndpointUnavailable)
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.Warn("thornode decode failed", "endpoint", endpoint, "error", err)
		return errors.Wrapf(err, "decode %s", endpoint)
	}
	return nil
}

// isNotFound covers both plain 404s and the grpc-gateway NotFound (code 5) error bodies
// some nodes return with a 400 or 500 status.
func isNotFound(status int, body []byte) bool {
	if status == http.StatusNotFound {
		return true
	}
	var gw struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &gw); err == nil {
		if gw.Code == 5 {
			return true
		}
		return strings.Contains(strings.ToLower(gw.Message), "not found")
	}
	return false
}

func truncate(s string) string {
	const max = 256
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
