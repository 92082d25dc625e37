package signer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"
)

const SessionHeader = "X-Signer-Session"

// RemoteConnector talks to an external signing daemon holding the wallet keys.
type RemoteConnector struct {
	baseURL    string
	httpClient *http.Client
}

func NewRemoteConnector(baseURL string, httpClient *http.Client) *RemoteConnector {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.SubmitTimeout}
	}
	return &RemoteConnector{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

type openSessionRequest struct {
	Network       string `json:"network"`
	ChainID       string `json:"chain_id"`
	RPCURL        string `json:"rpc_url"`
	AddressPrefix string `json:"address_prefix"`
}

type openSessionResponse struct {
	Address string `json:"address"`
}

func (c *RemoteConnector) Connect(ctx context.Context, params SessionParams) (Session, error) {
	if c == nil || c.baseURL == "" {
		return nil, txerr.ErrSignerNotConfigured
	}

	s := &remoteSession{conn: c, id: uuid.NewString()}

	var out openSessionResponse
	err := s.post(ctx, "/session", openSessionRequest{
		Network:       string(params.Network),
		ChainID:       params.ChainID,
		RPCURL:        params.RPCURL,
		AddressPrefix: params.AddressPrefix,
	}, &out)
	if err != nil {
		return nil, errors.Wrap(err, "open signer session")
	}
	if out.Address == "" {
		return nil, errors.New("signer returned no address")
	}
	s.address = out.Address

	log.Info("signer session opened", "session", s.id, "network", params.Network, "address", s.address)
	return s, nil
}

type remoteSession struct {
	conn    *RemoteConnector
	id      string
	address string
	closed  atomic.Bool
}

func (s *remoteSession) Address() string { return s.address }

type accountRequest struct {
	Address string `json:"address"`
}

func (s *remoteSession) Account(ctx context.Context, address string) (Account, error) {
	var out Account
	if err := s.post(ctx, "/account", accountRequest{Address: address}, &out); err != nil {
		return Account{}, errors.Wrapf(err, "account %s", address)
	}
	return out, nil
}

type simulateRequest struct {
	Messages []Msg  `json:"messages"`
	Memo     string `json:"memo"`
}

type simulateResponse struct {
	GasUsed uint64 `json:"gas_used,string"`
}

func (s *remoteSession) Simulate(ctx context.Context, msgs []Msg, memo string) (uint64, error) {
	var out simulateResponse
	if err := s.post(ctx, "/simulate", simulateRequest{Messages: msgs, Memo: memo}, &out); err != nil {
		return 0, errors.Wrap(err, "simulate")
	}
	return out.GasUsed, nil
}

type signAndBroadcastRequest struct {
	Messages []Msg  `json:"messages"`
	Fee      Fee    `json:"fee"`
	Memo     string `json:"memo"`
}

func (s *remoteSession) SignAndBroadcast(ctx context.Context, msgs []Msg, fee Fee, memo string) (*BroadcastResponse, error) {
	var out BroadcastResponse
	if err := s.post(ctx, "/sign_and_broadcast", signAndBroadcastRequest{Messages: msgs, Fee: fee, Memo: memo}, &out); err != nil {
		return nil, errors.Wrap(err, "sign and broadcast")
	}
	return &out, nil
}

func (s *remoteSession) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), constants.HTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.conn.baseURL+"/session", nil)
	if err != nil {
		return err
	}
	req.Header.Set(SessionHeader, s.id)

	resp, err := s.conn.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "close signer session")
	}
	_ = resp.Body.Close()
	return nil
}

func (s *remoteSession) post(ctx context.Context, path string, in, out any) error {
	if s.closed.Load() {
		return errors.Newf("signer session %s is closed", s.id)
	}

	b, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}

	url := s.conn.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SessionHeader, s.id)

	resp, err := s.conn.httpClient.Do(req)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "POST %s", url), txerr.ErrEndpointUnavailable)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
