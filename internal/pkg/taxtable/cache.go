package taxtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "payroll:withholding:v1:"

// CachedLookup memoizes an inner lookup in redis. Concurrent misses for the same
// key share one inner call. Redis failures fall through to the inner lookup.
type CachedLookup struct {
	inner  payroll.WithholdingLookup
	rdb    redis.Cmdable
	sf     *singleflight.Group
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedLookup(inner payroll.WithholdingLookup, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedLookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedLookup{
		inner:  inner,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		ttl:    ttl,
		logger: logger,
	}
}

type cachedAmounts struct {
	Federal         decimal.Decimal `json:"federal"`
	State           decimal.Decimal `json:"state"`
	SocialSecurity  decimal.Decimal `json:"social_security"`
	Medicare        decimal.Decimal `json:"medicare"`
	OtherDeductions decimal.Decimal `json:"other_deductions"`
}

// CacheKey upper-cases the jurisdiction, matching how the tables resolve state codes.
func CacheKey(req payroll.WithholdingRequest) string {
	return fmt.Sprintf("%s%d:%s:%d:%s:%d:%d",
		cacheKeyPrefix, req.TaxYear, req.FilingStatus, req.Allowances, strings.ToUpper(req.Jurisdiction),
		req.PeriodsPerYear, int64(req.GrossPay))
}

func (c *CachedLookup) Lookup(ctx context.Context, req payroll.WithholdingRequest) (payroll.WithholdingAmounts, error) {
	key := CacheKey(req)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var amounts cachedAmounts
		if json.Unmarshal([]byte(cached), &amounts) == nil {
			metrics.TaxLookupCache.WithLabelValues("hit").Inc()
			return payroll.WithholdingAmounts(amounts), nil
		}
	case !errors.Is(err, redis.Nil):
		metrics.TaxLookupCache.WithLabelValues("error").Inc()
		c.logger.Warn("withholding cache read failed", "key", key, "error", err)
	}

	metrics.TaxLookupCache.WithLabelValues("miss").Inc()
	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		amounts, err := c.inner.Lookup(ctx, req)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(cachedAmounts(amounts)); err == nil {
			if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
				c.logger.Warn("withholding cache write failed", "key", key, "error", err)
			}
		}
		return amounts, nil
	})
	if err != nil {
		return payroll.WithholdingAmounts{}, err
	}
	return v.(payroll.WithholdingAmounts), nil
}
