package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/ihome_import/config"
	"github.com/mmdatafocus/ihome_import/utils"
)

func init() {
	// The system of record expects money and quantity fields as bare JSON
	// numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type apiClient struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
	limiter   <-chan time.Time
}

func newAPIClient(baseURL string) *apiClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = config.GetAPIBaseURL()
	}

	var limiter <-chan time.Time
	if perMin := config.GetRateLimitPerMin(); perMin > 0 {
		limiter = time.Tick(time.Minute / time.Duration(perMin))
	}

	return &apiClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    config.GetAPIKey(),
		apiKeyHdr: config.GetAPIKeyHeader(),
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   limiter,
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body any, out any) error {
	if c.limiter != nil {
		<-c.limiter
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(c.apiKeyHdr, c.apiKey)
	}
	if cid, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		req.Header.Set("X-Correlation-Id", cid)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return fmt.Errorf("api error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *apiClient) listEntities(ctx context.Context, path string) ([]remoteEntity, error) {
	var entities []remoteEntity
	if err := c.do(ctx, http.MethodGet, path, nil, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

func (c *apiClient) createEntity(ctx context.Context, path string, payload any) (remoteEntity, error) {
	var created remoteEntity
	if err := c.do(ctx, http.MethodPost, path, payload, &created); err != nil {
		return remoteEntity{}, err
	}
	if strings.TrimSpace(created.ID) == "" {
		return remoteEntity{}, fmt.Errorf("create %s returned no id", path)
	}
	return created, nil
}

func (c *apiClient) createDocument(ctx context.Context, path string, payload any) (string, error) {
	var created remoteDocument
	if err := c.do(ctx, http.MethodPost, path, payload, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// listInvoiceNumbers fetches the invoice numbers already present at path.
// Used by the replay guard to avoid doubling documents on a re-run.
func (c *apiClient) listInvoiceNumbers(ctx context.Context, path string) (map[string]bool, error) {
	var docs []remoteDocument
	if err := c.do(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if n := strings.TrimSpace(doc.InvoiceNumber); n != "" {
			seen[n] = true
		}
	}
	return seen, nil
}
