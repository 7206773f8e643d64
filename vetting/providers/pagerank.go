package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"linkscout/vetting"
)

const openPageRankBaseURL = "https://openpagerank.com/api/v1.0/getPageRank"

// PageRank queries Open PageRank for domain authority
type PageRank struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewPageRank creates an Open PageRank client
func NewPageRank(apiKey string, timeout time.Duration) *PageRank {
	return &PageRank{
		apiKey:  apiKey,
		baseURL: openPageRankBaseURL,
		client:  newHTTPClient(timeout),
	}
}

type pageRankResponse struct {
	Response []struct {
		PageRankDecimal *float64        `json:"page_rank_decimal"`
		PageRankInteger *int            `json:"page_rank_integer"`
		Rank            json.RawMessage `json:"rank"`
	} `json:"response"`
}

func (p *PageRank) LookupPageRank(ctx context.Context, domain string) (*vetting.PageRankRecord, error) {
	if p.apiKey == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("domains[]", domain)
	req, err := http.NewRequest(http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("API-OPR", p.apiKey)

	var data pageRankResponse
	if err := doJSON(ctx, p.client, req, &data); err != nil {
		return nil, fmt.Errorf("pagerank %s: %w", domain, err)
	}
	if len(data.Response) == 0 {
		return nil, ErrNoData
	}

	row := data.Response[0]
	return &vetting.PageRankRecord{
		PageRankDecimal: row.PageRankDecimal,
		PageRankInteger: row.PageRankInteger,
		Rank:            rawText(row.Rank),
	}, nil
}

// rawText keeps a string or number as text; null and absent stay nil
func rawText(raw json.RawMessage) *string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return &str
	}
	return &s
}
