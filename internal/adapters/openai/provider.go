package openai

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	"github.com/bnema/helpdesk-assistant/internal/ports"
	goopenai "github.com/sashabaranov/go-openai"
)

// CredentialSecretKey is where `hd credential set` stores the API key.
const CredentialSecretKey = "openai/api_key"

const defaultRequestTimeout = 60 * time.Second

type Options struct {
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration
	// VerifyTLS is off by default so the client works behind corporate
	// proxies that re-sign TLS traffic.
	VerifyTLS bool
}

// Provider builds the API client on first use and hands out the same
// client afterwards. A failed build is not remembered, so a credential
// stored later is picked up on the next call.
type Provider struct {
	opts    Options
	secrets ports.SecretStore

	mu     sync.Mutex
	client *goopenai.Client
}

func NewProvider(opts Options, secrets ports.SecretStore) *Provider {
	return &Provider{opts: opts, secrets: secrets}
}

func (p *Provider) Client(ctx context.Context) (*goopenai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	apiKey := p.resolveAPIKey(ctx)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set and no stored credential was found", domain.ErrConfiguration)
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(p.opts.BaseURL); baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = p.httpClient()

	p.client = goopenai.NewClientWithConfig(cfg)
	return p.client, nil
}

func (p *Provider) resolveAPIKey(ctx context.Context) string {
	if apiKey := strings.TrimSpace(p.opts.APIKey); apiKey != "" {
		return apiKey
	}
	if p.secrets == nil {
		return ""
	}

	stored, err := p.secrets.Get(ctx, CredentialSecretKey)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(stored)
}

func (p *Provider) httpClient() *http.Client {
	timeout := p.opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !p.opts.VerifyTLS, //nolint:gosec // opt-in via HTTPX_VERIFY
	}

	return &http.Client{Timeout: timeout, Transport: transport}
}
