package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hive-corporation/f2b-notifier/internal/core/domain"
	"github.com/hive-corporation/f2b-notifier/internal/logger"
)

const ipinfoURL = "https://ipinfo.io"

type IPInfoProvider struct {
	client  *http.Client
	baseURL string
	token   string
	timeout time.Duration
}

// NewIPInfoProvider builds a lookup against ipinfo.io (or a compatible mirror at baseURL).
// Each lookup is bounded by timeout, independently of the parent context.
func NewIPInfoProvider(client *http.Client, baseURL, token string, timeout time.Duration) *IPInfoProvider {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if baseURL == "" {
		baseURL = ipinfoURL
	}
	return &IPInfoProvider{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		timeout: timeout,
	}
}

func (p *IPInfoProvider) Name() string {
	return "ipinfo"
}

type ipinfoResponse struct {
	IP      string `json:"ip"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"` // ISO 3166-1 alpha-2, ex: US
	Org     string `json:"org"`
}

// Locate asks ipinfo for the country of ip. Transport and decode errors are returned inside
// the result; a non-2xx answer or a body without a country is skipped quietly.
func (p *IPInfoProvider) Locate(ctx context.Context, ip string) domain.Enrichment {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/%s/json", p.baseURL, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		err = fmt.Errorf("failed to create ipinfo request: %w", err)
		return domain.Unenrich(err)
	}
	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to query ipinfo for %s: %w", ip, err)
		return domain.Unenrich(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug("ipinfo returned status %d for %s, skipping enrichment", resp.StatusCode, ip)
		return domain.Unenrich(nil)
	}

	var data ipinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		err = fmt.Errorf("failed to decode ipinfo json: %w", err)
		return domain.Unenrich(err)
	}

	code := strings.ToLower(strings.TrimSpace(data.Country))
	if code == "" {
		logger.Debug("ipinfo has no country for %s", ip)
		return domain.Unenrich(nil)
	}

	name, ok := CountryName(code)
	if !ok {
		logger.Debug("country code %q for %s not in dataset", code, ip)
	}

	return domain.Enrichment{
		Outcome:     domain.Enriched,
		CountryCode: code,
		CountryName: name,
	}
}
