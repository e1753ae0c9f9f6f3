package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jask/watchdeck/internal/watchlist"
)

// Wire format of the watchlist service. Fields mirror the documented JSON;
// optional fields are omitted when empty.

type wireEntry struct {
	Token  string `json:"token"`
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
}

type wireWatchlist struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Entries []wireEntry `json:"entries"`
}

type watchlistsResponse struct {
	Watchlists []wireWatchlist `json:"watchlists"`
}

type rearrangeRequest struct {
	Tokens []string `json:"tokens"`
	Caller string   `json:"caller,omitempty"`
}

type removeRequest struct {
	Tokens []string `json:"tokens"`
	Caller string   `json:"caller,omitempty"`
}

type addEntryRequest struct {
	Token  string `json:"token,omitempty"`
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
	Caller string `json:"caller,omitempty"`
}

type symbolsResponse struct {
	Symbols []SymbolInfo `json:"symbols"`
}

// HTTPService talks to a remote watchlist service over JSON. Auth is a
// bearer token; requests share one client with a hard timeout so a stuck
// backend cannot wedge the UI's async commands.
type HTTPService struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewHTTPService(baseURL, token string) (*HTTPService, error) {
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	return &HTTPService{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 8 * time.Second},
	}, nil
}

func (s *HTTPService) Watchlists(ctx context.Context) ([]watchlist.List, error) {
	var resp watchlistsResponse
	if err := s.doJSON(ctx, http.MethodGet, "/v1/watchlists", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]watchlist.List, 0, len(resp.Watchlists))
	for _, w := range resp.Watchlists {
		items := make([]watchlist.Item, 0, len(w.Entries))
		for _, e := range w.Entries {
			items = append(items, watchlist.Item{Token: e.Token, Symbol: e.Symbol, Name: e.Name})
		}
		out = append(out, watchlist.List{ID: w.ID, Name: w.Name, Items: items})
	}
	return out, nil
}

func (s *HTTPService) Rearrange(ctx context.Context, watchlistID string, tokens []string, caller string) error {
	path := fmt.Sprintf("/v1/watchlists/%s/rearrange", watchlistID)
	return s.doJSON(ctx, http.MethodPost, path, rearrangeRequest{Tokens: tokens, Caller: caller}, nil)
}

func (s *HTTPService) BulkDelete(ctx context.Context, watchlistID string, tokens []string, caller string) error {
	path := fmt.Sprintf("/v1/watchlists/%s/remove", watchlistID)
	return s.doJSON(ctx, http.MethodPost, path, removeRequest{Tokens: tokens, Caller: caller}, nil)
}

func (s *HTTPService) AddEntry(ctx context.Context, watchlistID string, item watchlist.Item, caller string) error {
	path := fmt.Sprintf("/v1/watchlists/%s/entries", watchlistID)
	req := addEntryRequest{Token: item.Token, Symbol: item.Symbol, Name: item.Name, Caller: caller}
	return s.doJSON(ctx, http.MethodPost, path, req, nil)
}

func (s *HTTPService) Symbols(ctx context.Context) ([]SymbolInfo, error) {
	var resp symbolsResponse
	if err := s.doJSON(ctx, http.MethodGet, "/v1/symbols", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Symbols, nil
}

func (s *HTTPService) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var apiErr map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("backend: http %d: %v", resp.StatusCode, apiErr)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
