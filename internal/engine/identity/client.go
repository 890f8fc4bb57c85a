// Copyright 2025 Orgsync Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

const identityPagePath = "/open-api/member/identity/page"

// Source holds identity center connection settings.
type Source struct {
	BaseURL  string `mapstructure:"baseUrl"`
	Token    string `mapstructure:"token"`
	Timeout  int    `mapstructure:"timeout"`  // request timeout in seconds
	PageSize int    `mapstructure:"pageSize"` // page size for unscoped pagination
}

// Client queries the identity center over HTTP.
type Client struct {
	http *resty.Client
}

// NewClient builds an identity center client from cfg.
func NewClient(cfg Source) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		c.SetAuthToken(cfg.Token)
	}

	return &Client{http: c}
}

type pageResponse struct {
	Code int       `json:"code"`
	Msg  string    `json:"msg"`
	Data *PageData `json:"data"`
}

// IdentityPage issues one paged identity query. A nil-data response is
// normalized to an empty page so callers can treat "no data" uniformly.
func (c *Client) IdentityPage(ctx context.Context, req PageRequest) (*PageData, error) {
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal identity page request: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(identityPagePath)
	if err != nil {
		return nil, fmt.Errorf("identity page query %s (page=%d): %w", identityPagePath, req.Current, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("identity page query %s (page=%d): status %d", identityPagePath, req.Current, resp.StatusCode())
	}

	var pr pageResponse
	if err := sonic.Unmarshal(resp.Body(), &pr); err != nil {
		return nil, fmt.Errorf("decode identity page response (page=%d): %w", req.Current, err)
	}
	if pr.Code != 0 && pr.Code != 200 {
		return nil, fmt.Errorf("identity page query (page=%d): upstream code %d: %s", req.Current, pr.Code, pr.Msg)
	}
	if pr.Data == nil {
		return &PageData{}, nil
	}
	return pr.Data, nil
}
