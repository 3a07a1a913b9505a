// Package client talks to a running dfind service over its HTTP API.
// Commands try the service first and fall back to opening the store
// directly when it is not running.
package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AvengeMedia/dankfind/internal/api"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for addr, which may be a bare ":port" or
// "host:port" as found in the config's listen_addr.
func New(addr string) *Client {
	base := addr
	if strings.HasPrefix(base, ":") {
		base = "localhost" + base
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Search(rawQuery string, limit int) (*api.SearchResultBody, error) {
	params := url.Values{}
	params.Set("q", rawQuery)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var out api.SearchResultBody
	if err := c.get("/search?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reindex() (string, error) {
	return c.postStatus("/reindex")
}

func (c *Client) Stats() (*api.StatsBody, error) {
	var out api.StatsBody
	if err := c.get("/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) WatchStart() (string, error) {
	return c.postStatus("/watch/start")
}

func (c *Client) WatchStop() (string, error) {
	return c.postStatus("/watch/stop")
}

func (c *Client) WatchStatus() (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.get("/watch/status", &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) get(path string, out any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("service not running")
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func (c *Client) postStatus(path string) (string, error) {
	resp, err := c.http.Post(c.baseURL+path, "application/json", nil)
	if err != nil {
		return "", fmt.Errorf("service not running")
	}
	defer resp.Body.Close()

	var out struct {
		Status string `json:"status"`
	}
	if err := decode(resp, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func decode(resp *http.Response, out any) error {
	if resp.StatusCode >= 400 {
		// Error responses carry the huma problem shape.
		var problem struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&problem); err == nil && problem.Title != "" {
			if problem.Detail != "" {
				return fmt.Errorf("%s: %s", problem.Title, problem.Detail)
			}
			return fmt.Errorf("%s", problem.Title)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
