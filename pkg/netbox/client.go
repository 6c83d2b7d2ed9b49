// Package netbox is a read-only client for the NetBox DCIM API, the
// source of truth side of the comparison.
package netbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vlansync/vlansync/pkg/config"
	"github.com/vlansync/vlansync/pkg/store"
	"github.com/vlansync/vlansync/pkg/util"
)

// pageLimit is the NetBox page size used for list endpoints.
const pageLimit = 1000

// Client talks to one NetBox instance.
type Client struct {
	baseURL      string
	token        string
	translations map[string]string
	http         *http.Client
	cache        store.Cache
	useCache     bool
}

// Option configures a Client.
type Option func(*Client)

// WithCache attaches an API response cache. Responses are always
// stored; they are only read back when useCache is set.
func WithCache(cache store.Cache, useCache bool) Option {
	return func(c *Client) {
		c.cache = cache
		c.useCache = useCache
	}
}

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a NetBox client from the validated configuration.
func New(cfg config.NetBoxConfig, translations map[string]string, opts ...Option) *Client {
	c := &Client{
		baseURL:      cfg.URL,
		token:        cfg.APIToken,
		translations: translations,
		http:         &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	util.Debugf("netbox GET %s", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s for %s", resp.Status, path)
	}
	return io.ReadAll(resp.Body)
}

// listPage is one page of a paginated NetBox list response.
type listPage struct {
	Count   int               `json:"count"`
	Next    *string           `json:"next"`
	Results []json.RawMessage `json:"results"`
}

// listAll follows offset pagination until the API reports no next page.
func (c *Client) listAll(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	var results []json.RawMessage
	offset := 0
	for {
		page := url.Values{}
		for k, v := range params {
			page[k] = v
		}
		page.Set("limit", strconv.Itoa(pageLimit))
		page.Set("offset", strconv.Itoa(offset))

		body, err := c.get(ctx, path, page)
		if err != nil {
			return nil, err
		}
		var parsed listPage
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("parsing %s response: %w", path, err)
		}
		results = append(results, parsed.Results...)

		if parsed.Next == nil || *parsed.Next == "" {
			return results, nil
		}
		offset += pageLimit
	}
}

// device is the subset of a NetBox device record the tool needs.
type device struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// deviceByName looks up a device by exact name. Absence is reported as
// util.ErrNotFound; multiple matches use the first and warn, since
// device names are assumed unique.
func (c *Client) deviceByName(ctx context.Context, name string) (*device, error) {
	params := url.Values{}
	params.Set("name", name)
	body, err := c.get(ctx, "/api/dcim/devices/", params)
	if err != nil {
		return nil, util.NewFetchError("netbox", name, "", err)
	}

	var parsed struct {
		Results []device `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, util.NewFetchError("netbox", name, "", fmt.Errorf("parsing response: %w", err))
	}

	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("device %q: %w", name, util.ErrNotFound)
	}
	if len(parsed.Results) > 1 {
		util.Warnf("multiple NetBox devices named %q; using the first", name)
	}
	return &parsed.Results[0], nil
}

// deviceInterfaces fetches all interfaces of a device, going through
// the API cache when one is configured.
func (c *Client) deviceInterfaces(ctx context.Context, deviceID int) ([]rawInterface, error) {
	cacheKey := fmt.Sprintf("netbox_device_%d_interfaces", deviceID)

	if c.cache != nil && c.useCache {
		data, ok, err := c.cache.Get(ctx, cacheKey)
		if err != nil {
			return nil, err
		}
		if ok {
			util.Debugf("using cached NetBox interfaces for device %d", deviceID)
			var cached []rawInterface
			if err := json.Unmarshal(data, &cached); err != nil {
				return nil, fmt.Errorf("parsing cached interfaces: %w", err)
			}
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("device_id", strconv.Itoa(deviceID))
	raw, err := c.listAll(ctx, "/api/dcim/interfaces/", params)
	if err != nil {
		return nil, err
	}

	interfaces := make([]rawInterface, 0, len(raw))
	for _, msg := range raw {
		var iface rawInterface
		if err := json.Unmarshal(msg, &iface); err != nil {
			return nil, fmt.Errorf("parsing interface record: %w", err)
		}
		interfaces = append(interfaces, iface)
	}

	if c.cache != nil {
		if data, err := json.Marshal(interfaces); err == nil {
			if err := c.cache.Set(ctx, cacheKey, data); err != nil {
				util.Warnf("caching NetBox interfaces: %v", err)
			}
		}
	}
	return interfaces, nil
}
