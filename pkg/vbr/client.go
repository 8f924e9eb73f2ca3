// Package vbr is a small client for the Veeam Backup & Replication REST API.
package vbr

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort       = 9419
	DefaultAPIVersion = "1.2-rev0"

	tokenPath = "/api/oauth2/token"
)

// Options configures a Client.
type Options struct {
	Port       int
	APIVersion string

	// InsecureSkipVerify disables certificate verification. VBR servers often
	// run with self-signed certificates, but this must be asked for.
	InsecureSkipVerify bool

	// Timeout bounds each request. Zero means no timeout beyond the context.
	Timeout time.Duration

	// HTTPClient replaces the client built from the options above.
	HTTPClient *http.Client
}

// Client talks to one VBR REST endpoint layout. The host and token are given
// per call since they belong to the caller's session.
type Client struct {
	http       *http.Client
	port       int
	apiVersion string
}

// New returns a client configured by opts.
func New(opts Options) *Client {
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}

	if opts.APIVersion == "" {
		opts.APIVersion = DefaultAPIVersion
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if opts.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in
		}

		httpClient = &http.Client{Transport: transport, Timeout: opts.Timeout}
	}

	return &Client{
		http:       httpClient,
		port:       opts.Port,
		apiVersion: opts.APIVersion,
	}
}

// URL builds the absolute URL of path on host.
func (c *Client) URL(host, path string, query url.Values) string {
	u := url.URL{
		Scheme:   "https",
		Host:     net.JoinHostPort(host, strconv.Itoa(c.port)),
		Path:     path,
		RawQuery: query.Encode(),
	}

	return u.String()
}

// Token exchanges a username and password for an access token.
func (c *Client) Token(ctx context.Context, host, username, password string) (string, error) {
	const what = "access token"

	body := strings.Join([]string{
		"grant_type=password",
		"username=" + url.QueryEscape(username),
		"password=" + url.QueryEscape(password),
		"refresh_token=",
		"code=",
		"use_short_term_refresh=",
		"vbr_token=",
	}, "&")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(host, tokenPath, nil), strings.NewReader(body))
	if err != nil {
		return "", transportError(what, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token TokenResponse
	if err := c.do(req, what, &token); err != nil {
		return "", err
	}

	if token.AccessToken == "" {
		return "", DecodeError(what, errors.New("response carries no access_token"))
	}

	return token.AccessToken, nil
}

// Get fetches path on host with the bearer token and decodes the JSON body
// into out. what names the resource in error messages.
func (c *Client) Get(ctx context.Context, host, token, what, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(host, path, query), nil)
	if err != nil {
		return transportError(what, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)

	return c.do(req, what, out)
}

// GetRaw is Get without decoding. The body must still be valid JSON.
func (c *Client) GetRaw(ctx context.Context, host, token, what, path string) (json.RawMessage, error) {
	var raw json.RawMessage

	if err := c.Get(ctx, host, token, what, path, nil, &raw); err != nil {
		return nil, err
	}

	return raw, nil
}

// List fetches one page of a paginated collection.
func List[T any](ctx context.Context, c *Client, host, token, what, path string, query url.Values) (*Page[T], error) {
	var page Page[T]

	if err := c.Get(ctx, host, token, what, path, query, &page); err != nil {
		return nil, err
	}

	if page.Pagination == nil {
		return nil, DecodeError(what, errors.New("response carries no pagination"))
	}

	return &page, nil
}

func (c *Client) do(req *http.Request, what string, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-version", c.apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return upstreamError(what, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return DecodeError(what, err)
	}

	return nil
}
