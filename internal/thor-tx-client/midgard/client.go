package midgard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"
)

const (
	StatusPending = "pending"
	StatusSuccess = "success"
)

type Coin struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

type Transfer struct {
	Address string `json:"address"`
	TxID    string `json:"txID"`
	Coins   []Coin `json:"coins"`
}

// Action is one indexed action as Midgard reports it.
type Action struct {
	Type   string     `json:"type"`
	Status string     `json:"status"`
	Date   string     `json:"date"`
	Height string     `json:"height"`
	In     []Transfer `json:"in"`
	Out    []Transfer `json:"out"`
}

func (a *Action) Pending() bool {
	return a == nil || a.Status != StatusSuccess
}

type actionsResponse struct {
	Actions []Action `json:"actions"`
	Count   string   `json:"count"`
}

// Client reads the indexer configured for a network.
type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.HTTPTimeout}
	}
	return &Client{httpClient: httpClient}
}

// Action returns the newest action touching txid on cfg's indexer, or nil if the indexer
// has none yet or cfg has no indexer.
func (c *Client) Action(ctx context.Context, cfg *networks.Config, txid string) (*Action, error) {
	if cfg.IndexerURL == "" {
		return nil, nil
	}

	endpoint := cfg.IndexerURL + "/v2/actions?txid=" + url.QueryEscape(txid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "GET %s", endpoint), txerr.ErrEndpointUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read %s", endpoint), txerr.ErrEndpointUnavailable)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, errors.Mark(fmt.Errorf("GET %s: status %d", endpoint, resp.StatusCode), txerr.ErrEndpointUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GET %s: status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out actionsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrapf(err, "decode %s", endpoint)
	}
	if len(out.Actions) == 0 {
		return nil, nil
	}
	return &out.Actions[0], nil
}
