package ganeti

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/semaphore"
)

const DefaultPort = 5080

// Client is the typed facade over one cluster's RAPI. Every method is a single
// request: nothing blocks waiting on a job.
type Client interface {
	ListNodes(ctx context.Context, bulk bool) (*NodeList, error)
	GetNode(ctx context.Context, name string) (*NodeRecord, error)
	ListInstances(ctx context.Context, bulk bool) (*InstanceList, error)
	GetInstance(ctx context.Context, name string) (*InstanceRecord, error)
	GetInfo(ctx context.Context) (*ClusterInfo, error)
	ListOperatingSystems(ctx context.Context) ([]string, error)
	SubmitJob(ctx context.Context, op string, params map[string]interface{}) (string, error)
	PollJob(ctx context.Context, id string) (*JobRecord, error)
}

type Config struct {
	Host               string
	Port               int
	Username           string
	Password           string
	Timeout            time.Duration
	InsecureSkipVerify bool
	// Scheme defaults to https.
	Scheme string
}

type RapiClient struct {
	baseUrl    *url.URL
	httpClient *http.Client
	username   string
	password   string
	timeout    time.Duration
	limiter    *semaphore.Weighted
}

var _ Client = (*RapiClient)(nil)

type Option func(c *RapiClient)

// WithLimiter bounds concurrent requests. The same semaphore may be shared by many clients.
func WithLimiter(sem *semaphore.Weighted) Option {
	return func(c *RapiClient) {
		c.limiter = sem
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *RapiClient) {
		c.httpClient = hc
	}
}

func NewClient(cfg Config, opts ...Option) (*RapiClient, error) {
	if cfg.Host == "" {
		return nil, errors.New("ganeti: empty host")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "https"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	baseUrl, err := url.Parse(fmt.Sprintf("%s://%s:%d", cfg.Scheme, cfg.Host, cfg.Port))
	if err != nil {
		return nil, err
	}
	c := &RapiClient{
		baseUrl:  baseUrl,
		username: cfg.Username,
		password: cfg.Password,
		timeout:  cfg.Timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClientFromURL is used by tests that point the client at an httptest server.
func NewClientFromURL(rawURL, username, password string, opts ...Option) (*RapiClient, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	port, _ := strconv.Atoi(u.Port())
	return NewClient(Config{
		Host:     u.Hostname(),
		Port:     port,
		Username: username,
		Password: password,
		Scheme:   u.Scheme,
	}, opts...)
}

// Request performs one RAPI call and decodes the JSON answer into result.
func (c *RapiClient) Request(ctx context.Context, method, path string, query url.Values, body, result interface{}) error {
	// the timeout covers the wait for a limiter slot too
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrRpcUnavailable, method, path, err)
		}
		defer c.limiter.Release(1)
	}

	endpoint := c.baseUrl.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrRpcUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s %s: reading body: %v", ErrRpcUnavailable, method, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrRpcUnavailable, method, path, resp.StatusCode, bytes.TrimSpace(data))
	case resp.StatusCode >= 400:
		apiErr := &APIError{}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = string(bytes.TrimSpace(data))
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if result == nil {
		return nil
	}
	if raw, ok := result.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformed, method, path, err)
	}
	return nil
}

func (c *RapiClient) Get(ctx context.Context, path string, query url.Values, result interface{}) error {
	return c.Request(ctx, http.MethodGet, path, query, nil, result)
}

func bulkQuery(bulk bool) url.Values {
	if !bulk {
		return nil
	}
	return url.Values{"bulk": []string{"1"}}
}

func (c *RapiClient) ListNodes(ctx context.Context, bulk bool) (*NodeList, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/2/nodes", bulkQuery(bulk), &raw); err != nil {
		return nil, err
	}
	return ParseNodeList(raw, bulk)
}

func (c *RapiClient) GetNode(ctx context.Context, name string) (*NodeRecord, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/2/nodes/"+url.PathEscape(name), nil, &raw); err != nil {
		return nil, err
	}
	return ParseNode(raw)
}

func (c *RapiClient) ListInstances(ctx context.Context, bulk bool) (*InstanceList, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/2/instances", bulkQuery(bulk), &raw); err != nil {
		return nil, err
	}
	return ParseInstanceList(raw, bulk)
}

func (c *RapiClient) GetInstance(ctx context.Context, name string) (*InstanceRecord, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/2/instances/"+url.PathEscape(name), nil, &raw); err != nil {
		return nil, err
	}
	return ParseInstance(raw)
}

func (c *RapiClient) GetInfo(ctx context.Context) (*ClusterInfo, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/2/info", nil, &raw); err != nil {
		return nil, err
	}
	return ParseClusterInfo(raw)
}

func (c *RapiClient) ListOperatingSystems(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.Get(ctx, "/2/os", nil, &names); err != nil {
		return nil, err
	}
	return nonNil(names), nil
}

// SubmitJob sends the opcode and returns the job id as soon as the master has queued it.
func (c *RapiClient) SubmitJob(ctx context.Context, op string, params map[string]interface{}) (string, error) {
	jr, err := buildJobRequest(op, params)
	if err != nil {
		return "", err
	}
	var raw json.RawMessage
	if err := c.Request(ctx, jr.method, jr.path, jr.query, jr.body, &raw); err != nil {
		return "", err
	}
	id, err := parseJobID(raw)
	if err != nil || id == "" {
		return "", fmt.Errorf("%w: %s: job id %q", ErrMalformed, op, string(raw))
	}
	return id, nil
}

func (c *RapiClient) PollJob(ctx context.Context, id string) (*JobRecord, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/2/jobs/"+url.PathEscape(id), nil, &raw); err != nil {
		return nil, err
	}
	return ParseJob(raw)
}
