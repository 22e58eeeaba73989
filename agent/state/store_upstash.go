package state

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

	"github.com/bytedance/sonic"
)

const (
	defaultSessionKeyPrefix = "slotfill:session:"
	defaultRedisTimeout     = 10 * time.Second
	maxRedisReplyBytes      = 2 << 20
)

type UpstashRedisConfig struct {
	URL       string        `envconfig:"URL" split_words:"true" required:"true"`
	Token     string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout   time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" split_words:"true"`
}

// StoreOption customizes UpstashRedisStore.
type StoreOption func(*UpstashRedisStore)

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *UpstashRedisStore) {
		if p := strings.TrimSpace(prefix); p != "" {
			s.prefix = p
		}
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(s *UpstashRedisStore) { s.ttl = ttl }
}

func WithHTTPClient(client *http.Client) StoreOption {
	return func(s *UpstashRedisStore) {
		if client != nil {
			s.client = client
		}
	}
}

// UpstashRedisStore keeps one JSON document per session in Upstash Redis,
// talking to its REST endpoint. Expiry is left to Redis via SET ... EX.
type UpstashRedisStore struct {
	endpoint string
	auth     string
	client   *http.Client
	prefix   string
	ttl      time.Duration
}

// redisReply is the envelope of every Upstash REST response.
type redisReply struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func NewUpstashRedisStore(cfg UpstashRedisConfig, opts ...StoreOption) (*UpstashRedisStore, error) {
	endpoint, err := restEndpoint(cfg.URL)
	if err != nil {
		return nil, err
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}

	store := &UpstashRedisStore{
		endpoint: endpoint,
		auth:     "Bearer " + token,
		client:   &http.Client{Timeout: timeout},
		prefix:   defaultSessionKeyPrefix,
		ttl:      defaultStoreTTL,
	}
	WithKeyPrefix(cfg.KeyPrefix)(store)
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	if store.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}
	return store, nil
}

func restEndpoint(raw string) (string, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(raw), "/")
	if endpoint == "" {
		return "", errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return "", fmt.Errorf("invalid redis rest url: %w", err)
	}
	return endpoint, nil
}

func (s *UpstashRedisStore) Load(ctx context.Context, key Key) (*Session, error) {
	redisKey, err := s.redisKey(key)
	if err != nil {
		return nil, err
	}

	result, err := s.command(ctx, "GET", redisKey)
	if err != nil {
		return nil, err
	}
	if result = bytes.TrimSpace(result); len(result) == 0 || string(result) == "null" {
		return nil, ErrStateNotFound
	}

	var doc string
	if err := sonic.Unmarshal(result, &doc); err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}
	return decodeSession(doc, key)
}

func decodeSession(doc string, key Key) (*Session, error) {
	st := &Session{}
	if err := sonic.UnmarshalString(doc, st); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if st.Slots == nil {
		st.Slots = map[string]string{}
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session loaded from store: %w", err)
	}
	if st.Key() != key {
		return nil, fmt.Errorf("invalid session loaded from store: key=%s holds %s", key, st.Key())
	}
	return st, nil
}

func (s *UpstashRedisStore) Save(ctx context.Context, st *Session) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now()
	}
	st.UpdatedAt = st.UpdatedAt.UTC()

	redisKey, err := s.redisKey(st.Key())
	if err != nil {
		return err
	}
	doc, err := sonic.MarshalString(st)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	args := []any{"SET", redisKey, doc}
	if s.ttl > 0 {
		args = append(args, "EX", expirySeconds(s.ttl))
	}
	_, err = s.command(ctx, args...)
	return err
}

func (s *UpstashRedisStore) Delete(ctx context.Context, key Key) error {
	redisKey, err := s.redisKey(key)
	if err != nil {
		return err
	}
	_, err = s.command(ctx, "DEL", redisKey)
	return err
}

func (s *UpstashRedisStore) redisKey(key Key) (string, error) {
	if err := key.validate(); err != nil {
		return "", err
	}
	prefix := s.prefix
	if prefix == "" {
		prefix = defaultSessionKeyPrefix
	}
	return prefix + key.String(), nil
}

// command posts one Redis command as a JSON array and returns its result.
func (s *UpstashRedisStore) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	if len(args) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := sonic.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", s.auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("redis %v: %w", args[0], err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRedisReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, raw)
	}

	var reply redisReply
	if err := sonic.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if reply.Error != "" {
		return nil, errors.New(reply.Error)
	}
	return reply.Result, nil
}

// expirySeconds rounds ttl up to whole seconds, never below one.
func expirySeconds(ttl time.Duration) int64 {
	secs := int64((ttl + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
