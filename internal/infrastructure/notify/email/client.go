package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/time/rate"

	"github.com/baselinehq/tennis-league/internal/platform/logging"
	"github.com/baselinehq/tennis-league/internal/platform/resilience"
	"github.com/baselinehq/tennis-league/internal/usecase"
)

// Config wires the result-email endpoint. The breaker protects the rest of
// the request path from a flapping mail gateway; a rate limit keeps bulk
// migrations from flooding it.
type Config struct {
	Endpoint       string
	APIKey         string
	Timeout        time.Duration
	RatePerSecond  float64
	Burst          int
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	limiter    *rate.Limiter
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
}

func NewClient(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	var breaker *resilience.CircuitBreaker
	if cfg.CircuitBreaker.Enabled {
		bc := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
		breaker = resilience.NewCircuitBreaker(bc.FailureThreshold, bc.OpenTimeout, bc.HalfOpenMaxReq)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimSpace(cfg.Endpoint),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		limiter:    rate.NewLimiter(rate.Limit(perSecond), burst),
		breaker:    breaker,
		logger:     logger,
	}
}

type resultPayload struct {
	RecipientEmail string `json:"recipientEmail"`
	RecipientName  string `json:"recipientName"`
	SenderTeam     string `json:"senderTeam"`
	RecipientTeam  string `json:"recipientTeam"`
	MatchScores    string `json:"matchScores"`
	MatchDate      string `json:"matchDate"`
	MatchLevel     string `json:"matchLevel"`
	EmailType      string `json:"emailType"`
}

// SendResult posts the notification to the email side-channel. Callers
// treat any returned error as non-fatal.
func (c *Client) SendResult(ctx context.Context, notice usecase.ResultNotification) error {
	if c.endpoint == "" {
		return errors.New("email endpoint is not configured")
	}
	if strings.TrimSpace(notice.RecipientEmail) == "" {
		return errors.New("recipient email is required")
	}

	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return fmt.Errorf("%w: email gateway circuit open", usecase.ErrDependencyUnavailable)
		}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "wait for email rate limit")
	}

	payload := resultPayload{
		RecipientEmail: notice.RecipientEmail,
		RecipientName:  notice.RecipientName,
		SenderTeam:     notice.SenderTeam,
		RecipientTeam:  notice.RecipientTeam,
		MatchScores:    notice.MatchScores,
		MatchDate:      notice.MatchDate,
		MatchLevel:     formatLevel(notice.MatchLevel),
		EmailType:      notice.EmailType,
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal email payload")
	}
	_, _ = buf.Write(encoded)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf.B))
	if err != nil {
		return errors.Wrap(err, "create email request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure()
		return errors.Wrap(err, "post email request")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode != http.StatusOK {
		c.recordFailure()
		return errors.Newf("email gateway returned status %d", resp.StatusCode)
	}

	if c.breaker != nil {
		c.breaker.RecordSuccess()
	}
	c.logger.DebugContext(ctx, "result email accepted",
		"recipient", notice.RecipientEmail,
		"email_type", notice.EmailType,
	)
	return nil
}

func (c *Client) recordFailure() {
	if c.breaker != nil {
		c.breaker.RecordFailure()
	}
}

func formatLevel(level float64) string {
	if level == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", level), "0"), ".")
}
