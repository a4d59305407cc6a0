package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tourbackend/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DistanceResult is what the external routing service returns for a leg.
type DistanceResult struct {
	DistanceKm float64 `json:"distance_km"`
	BasePrice  float64 `json:"base_price"`
}

// DistanceLookup resolves a route into distance and base price. Failures are
// surfaced as ProviderUnavailableError so callers can report a retryable
// pricing error instead of crashing.
type DistanceLookup interface {
	Lookup(ctx context.Context, origin, destination, vehicleType string, passengers int) (DistanceResult, error)
}

// HTTPDistanceClient calls the routing service over HTTP with a bounded
// timeout. Identical in-flight lookups are collapsed via singleflight, and
// results are cached best-effort in Redis when a client is configured.
type HTTPDistanceClient struct {
	BaseURL string
	Client  *http.Client
	Cache   *redis.Client

	group singleflight.Group
}

const distanceCacheTTL = 10 * time.Minute

func NewHTTPDistanceClient(baseURL string, timeout time.Duration, cache *redis.Client) *HTTPDistanceClient {
	return &HTTPDistanceClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
		Cache:   cache,
	}
}

func (c *HTTPDistanceClient) Lookup(ctx context.Context, origin, destination, vehicleType string, passengers int) (DistanceResult, error) {
	key := fmt.Sprintf("dist:%s|%s|%s|%d", origin, destination, vehicleType, passengers)

	if c.Cache != nil {
		if raw, err := c.Cache.Get(ctx, key).Bytes(); err == nil {
			var cached DistanceResult
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.fetch(ctx, origin, destination, vehicleType, passengers)
	})
	if err != nil {
		return DistanceResult{}, err
	}
	res := v.(DistanceResult)

	if c.Cache != nil {
		if raw, err := json.Marshal(res); err == nil {
			_ = c.Cache.Set(ctx, key, raw, distanceCacheTTL).Err()
		}
	}
	return res, nil
}

func (c *HTTPDistanceClient) fetch(ctx context.Context, origin, destination, vehicleType string, passengers int) (DistanceResult, error) {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("vehicle_type", vehicleType)
	q.Set("passengers", strconv.Itoa(passengers))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return DistanceResult{}, domain.InternalError{Msg: "build distance request", Err: err}
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return DistanceResult{}, domain.ProviderUnavailableError{Provider: "distance lookup", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DistanceResult{}, domain.ProviderUnavailableError{
			Provider: "distance lookup",
			Err:      fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var out DistanceResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return DistanceResult{}, domain.ProviderUnavailableError{Provider: "distance lookup", Err: err}
	}
	if out.BasePrice < 0 || out.DistanceKm < 0 {
		return DistanceResult{}, domain.ProviderUnavailableError{
			Provider: "distance lookup",
			Err:      fmt.Errorf("negative result"),
		}
	}
	return out, nil
}
