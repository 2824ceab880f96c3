package usecases

import (
	"context"
	"time"

	"mindcare/internal/entities"
	"mindcare/internal/interfaces"
	"mindcare/internal/logging"
	"mindcare/internal/metrics"

	log "github.com/sirupsen/logrus"
)

// DefaultVendorTimeout bounds one vendor call when no timeout is configured.
const DefaultVendorTimeout = 12 * time.Second

// Static replies used when no vendor produced text.
const (
	MessageNoServicesConfigured = "Hello! I'm here to support you. While I'm experiencing some technical difficulties with my AI services, I want you to know that you're taking a positive step by reaching out. How are you feeling today?"
	MessageServicesUnavailable  = "I understand you're reaching out for support, and that takes courage. I'm having some connectivity issues right now, but I'm here to listen. What's on your mind today?"
)

// FallbackReason explains why a static reply was used.
type FallbackReason string

const (
	ReasonNone           FallbackReason = ""
	ReasonNoneConfigured FallbackReason = "none_configured"
	ReasonAllFailed      FallbackReason = "all_failed"
)

// CompletionResult is the terminal state of the chain.
type CompletionResult struct {
	Text     string
	Service  entities.Service
	Reason   FallbackReason
	Attempts []entities.VendorAttempt
}

// CompletionChain asks the primary vendor, then the secondary, then falls back
// to a static reply. Vendors are tried one at a time and at most once each.
type CompletionChain struct {
	vendors []interfaces.CompletionVendor
	timeout time.Duration
	metrics *metrics.Collector
}

// NewCompletionChain builds a chain over primary then secondary. Either may be nil.
func NewCompletionChain(primary, secondary interfaces.CompletionVendor, timeout time.Duration, m *metrics.Collector) *CompletionChain {
	if timeout <= 0 {
		timeout = DefaultVendorTimeout
	}
	var vendors []interfaces.CompletionVendor
	for _, v := range []interfaces.CompletionVendor{primary, secondary} {
		if v != nil {
			vendors = append(vendors, v)
		}
	}
	return &CompletionChain{vendors: vendors, timeout: timeout, metrics: m}
}

// Configured lists the vendors that have credentials, in call order.
func (c *CompletionChain) Configured() []entities.Service {
	var names []entities.Service
	for _, v := range c.vendors {
		if v.Configured() {
			names = append(names, v.Name())
		}
	}
	return names
}

// Complete never fails: vendor failures are logged and the next stage is tried.
func (c *CompletionChain) Complete(ctx context.Context, message string) CompletionResult {
	logger := logging.FromContext(ctx)
	var result CompletionResult
	configured := false

	for _, vendor := range c.vendors {
		if !vendor.Configured() {
			logger.WithField("vendor", vendor.Name()).Debug("vendor not configured, skipping")
			continue
		}
		configured = true

		attempt := c.attempt(ctx, logger, vendor, message)
		result.Attempts = append(result.Attempts, attempt)
		if attempt.Result.OK() {
			result.Text = attempt.Result.Text
			result.Service = vendor.Name()
			return result
		}
	}

	result.Service = entities.ServiceFallback
	if !configured {
		logger.Error("no API keys configured for AI services")
		result.Reason = ReasonNoneConfigured
		result.Text = MessageNoServicesConfigured
		return result
	}
	logger.Error("all configured AI services are currently unavailable")
	result.Reason = ReasonAllFailed
	result.Text = MessageServicesUnavailable
	return result
}

func (c *CompletionChain) attempt(ctx context.Context, logger *log.Entry, vendor interfaces.CompletionVendor, message string) entities.VendorAttempt {
	name := vendor.Name()
	if err := ctx.Err(); err != nil {
		res := entities.Failed(entities.FailureCanceled, 0, err.Error())
		c.metrics.RecordVendor(string(name), string(res.Failure))
		logger.WithField("vendor", name).Info("request abandoned before vendor call")
		return entities.VendorAttempt{Vendor: name, Result: res}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	res := vendor.Complete(callCtx, message)
	fields := log.Fields{
		"vendor":  name,
		"latency": time.Since(start).Round(time.Millisecond),
	}

	if res.OK() {
		c.metrics.RecordVendor(string(name), "ok")
		logger.WithFields(fields).Info("vendor response successful")
	} else {
		c.metrics.RecordVendor(string(name), string(res.Failure))
		fields["kind"] = res.Failure
		if res.StatusCode != 0 {
			fields["status"] = res.StatusCode
		}
		logger.WithFields(fields).Warnf("vendor attempt failed: %s", res.Detail)
	}
	return entities.VendorAttempt{Vendor: name, Result: res}
}
