package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/tanpawarit/tool-enhanced-reasoning/agent/contract"
)

var ErrReportNotFound = errors.New("report not found")

const (
	defaultRunKeyPrefix  = "ter:run:"
	defaultRunTTL        = 24 * time.Hour
	maxResponseSizeBytes = 2 << 20
)

var _ contractx.ReportSink = (*UpstashSink)(nil)

// UpstashOption customizes UpstashSink.
type UpstashOption func(*UpstashSink)

func WithKeyPrefix(prefix string) UpstashOption {
	return func(s *UpstashSink) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) UpstashOption {
	return func(s *UpstashSink) {
		s.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) UpstashOption {
	return func(s *UpstashSink) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashSink keeps recent reports in Upstash Redis, keyed by run id, so a
// run can be looked up after the response file has been overwritten.
type UpstashSink struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
	ttl        time.Duration
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// UpstashRedisConfig is loaded with the UPSTASH_REDIS prefix.
type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	TTL     time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
}

func NewUpstashSink(cfg UpstashRedisConfig, opts ...UpstashOption) (*UpstashSink, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultRunTTL
	}

	sink := &UpstashSink{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		keyPrefix: defaultRunKeyPrefix,
		ttl:       ttl,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sink)
		}
	}

	if sink.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}

	return sink, nil
}

func (s *UpstashSink) Name() string {
	return "upstash"
}

func (s *UpstashSink) Deliver(ctx context.Context, rep contractx.Report) error {
	key, err := s.redisKey(rep.RunID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	cmd := []any{"SET", key, string(payload)}
	if s.ttl > 0 {
		cmd = append(cmd, "EX", ttlSeconds(s.ttl))
	}

	_, err = s.exec(ctx, cmd)
	return err
}

// Load fetches a stored report. Numbers in Result, Trace and Variables come
// back as float64.
func (s *UpstashSink) Load(ctx context.Context, runID string) (contractx.Report, error) {
	key, err := s.redisKey(runID)
	if err != nil {
		return contractx.Report{}, err
	}

	resp, err := s.exec(ctx, []any{"GET", key})
	if err != nil {
		return contractx.Report{}, err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return contractx.Report{}, ErrReportNotFound
	}

	var encoded string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return contractx.Report{}, fmt.Errorf("decode report payload: %w", err)
	}

	var rep contractx.Report
	if err := json.Unmarshal([]byte(encoded), &rep); err != nil {
		return contractx.Report{}, fmt.Errorf("unmarshal report: %w", err)
	}
	return rep, nil
}

func (s *UpstashSink) redisKey(runID string) (string, error) {
	if strings.TrimSpace(runID) == "" {
		return "", errors.New("run id is empty")
	}
	return s.keyPrefix + runID, nil
}

func (s *UpstashSink) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}

func ttlSeconds(ttl time.Duration) int64 {
	seconds := ttl / time.Second
	if seconds <= 0 {
		return 1
	}
	if ttl%time.Second != 0 {
		seconds++
	}
	return int64(seconds)
}
