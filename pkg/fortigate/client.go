// Package fortigate fetches managed-switch data from the FortiGate
// switch-controller monitor API and converts it into the canonical
// model.
package fortigate

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vlansync/vlansync/pkg/config"
	"github.com/vlansync/vlansync/pkg/store"
	"github.com/vlansync/vlansync/pkg/util"
)

const managedSwitchPath = "/api/v2/monitor/switch-controller/managed-switch/select"

// Client talks to one FortiGate controller.
type Client struct {
	name         string
	host         string
	baseURL      string
	token        string
	translations map[string]string
	http         *http.Client
	cache        store.Cache
	useCache     bool
	log          *logrus.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithCache attaches an API response cache. Responses are always stored;
// they are only read back when useCache is set.
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

// New creates a client for one configured FortiGate device.
func New(dev config.FortiGateDevice, translations map[string]string, opts ...Option) *Client {
	transport := http.DefaultTransport
	if !dev.VerifyTLS() {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	c := &Client{
		name:         dev.Name,
		host:         dev.Host,
		baseURL:      "https://" + dev.Host,
		token:        dev.APIToken,
		translations: translations,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		log: util.WithDevice(dev.Name).WithField("host", dev.Host),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the configured device name.
func (c *Client) Name() string {
	return c.name
}

// cacheKey identifies this device's managed-switch payload in the cache.
func (c *Client) cacheKey() string {
	return "fortigate_" + c.host + "_managed_switches"
}

// rawSwitches returns the raw managed-switch records, consulting the
// cache first when cached data is enabled and populating it after a
// live fetch.
func (c *Client) rawSwitches(ctx context.Context) ([]rawSwitch, error) {
	if c.cache != nil && c.useCache {
		data, ok, err := c.cache.Get(ctx, c.cacheKey())
		if err != nil {
			return nil, err
		}
		if ok {
			c.log.Info("using cached FortiSwitch data")
			var cached []rawSwitch
			if err := json.Unmarshal(data, &cached); err != nil {
				return nil, fmt.Errorf("parsing cached FortiSwitch data: %w", err)
			}
			return cached, nil
		}
	}

	c.log.Info("fetching FortiSwitch data")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+managedSwitchPath, nil)
	if err != nil {
		return nil, util.NewFetchError("fortigate", c.name, c.host, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, util.NewFetchError("fortigate", c.name, c.host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %s", resp.Status)
		return nil, util.NewFetchError("fortigate", c.name, c.host, err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, util.NewFetchError("fortigate", c.name, c.host, err)
	}

	var payload managedSwitchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, util.NewFetchError("fortigate", c.name, c.host,
			fmt.Errorf("parsing response: %w", err))
	}

	if c.cache != nil {
		data, err := json.Marshal(payload.Results)
		if err == nil {
			if err := c.cache.Set(ctx, c.cacheKey(), data); err != nil {
				c.log.Warnf("caching FortiSwitch data: %v", err)
			}
		}
	}
	return payload.Results, nil
}
