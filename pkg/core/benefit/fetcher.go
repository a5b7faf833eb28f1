// Package benefit acquires manufacturer pre-order benefits and operator plan
// line-ups. Pages are fetched for provenance only; the records themselves
// are fixed placeholders until real page parsing exists.
package benefit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/logger"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

const (
	SamsungBenefitsURL = "https://www.samsungsvc.co.kr/solution/3195073"
	AppleBenefitsURL   = "https://offers.applemusic.apple/six-month-offer-devices"
	TWorldPlansURL     = "https://www.tworld.co.kr/web/product/callplan/NA00008719"

	// DataSourceHardcoded marks records that come from the built-in table
	// rather than from the fetched page.
	DataSourceHardcoded = "hardcoded_mvp"

	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "rateplan-sim/1.0"

	// pages larger than this are truncated before title extraction
	maxPageBytes = 4 << 20
)

// Fetch statuses besides http_<code> and error_<kind>.
const (
	StatusOK      = "ok"
	StatusTimeout = "timeout"
)

// ErrUnknownManufacturer is returned for a manufacturer without benefit data.
var ErrUnknownManufacturer = errors.New("unknown manufacturer")

// Fetcher fetches benefit and plan pages.
type Fetcher struct {
	Client    *http.Client
	UserAgent string
	Logger    *zap.Logger

	// Source URLs, overridable for tests.
	SamsungURL string
	AppleURL   string
	TWorldURL  string

	now func() time.Time
}

// NewFetcher returns a Fetcher with the given timeout (DefaultTimeout when
// zero). Redirects are followed.
func NewFetcher(timeout time.Duration, userAgent string, log *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{
		Client:     &http.Client{Timeout: timeout},
		UserAgent:  userAgent,
		Logger:     logger.OrNop(log),
		SamsungURL: SamsungBenefitsURL,
		AppleURL:   AppleBenefitsURL,
		TWorldURL:  TWorldPlansURL,
		now:        time.Now,
	}
}

// Samsung returns the Galaxy pre-order benefits.
func (f *Fetcher) Samsung(ctx context.Context) []models.BenefitRecord {
	prov := f.provenance(ctx, f.SamsungURL)
	return []models.BenefitRecord{
		{
			Benefit: models.Benefit{
				Manufacturer: "Samsung",
				Name:         "Google One AI Premium",
				FreeMonths:   6,
				MonthlyPrice: 29000,
				Notes:        "Gemini Advanced + 2TB 포함",
			},
			Provenance: prov,
		},
	}
}

// Apple returns the iPhone pre-order benefits.
func (f *Fetcher) Apple(ctx context.Context) []models.BenefitRecord {
	prov := f.provenance(ctx, f.AppleURL)
	return []models.BenefitRecord{
		{
			Benefit: models.Benefit{
				Manufacturer: "Apple",
				Name:         "Apple Music (Personal)",
				FreeMonths:   6,
				MonthlyPrice: 10900,
				Notes:        "개인 요금제 기준",
			},
			Provenance: prov,
		},
		{
			Benefit: models.Benefit{
				Manufacturer: "Apple",
				Name:         "Apple Music (Family)",
				FreeMonths:   6,
				MonthlyPrice: 16900,
				Notes:        "가족 결합 추가 혜택",
			},
			Provenance: prov,
		},
	}
}

// Benefits returns the benefits of every manufacturer, or of one when
// manufacturer is set (case-insensitive). Unknown names yield an error.
func (f *Fetcher) Benefits(ctx context.Context, manufacturer string) ([]models.BenefitRecord, error) {
	switch strings.ToLower(strings.TrimSpace(manufacturer)) {
	case "":
		return append(f.Samsung(ctx), f.Apple(ctx)...), nil
	case "samsung":
		return f.Samsung(ctx), nil
	case "apple":
		return f.Apple(ctx), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownManufacturer, manufacturer)
	}
}

// TWorldPlans returns the operator's current 5GX bundle plans. A fee of 0
// means the fee is not yet known.
func (f *Fetcher) TWorldPlans(ctx context.Context) []models.PlanRecord {
	prov := f.provenance(ctx, f.TWorldURL)
	plan := func(name string, fee int64, benefit, notes string) models.PlanRecord {
		return models.PlanRecord{
			RatePlan: models.RatePlan{
				Name:             name,
				MonthlyFee:       fee,
				IncludedBenefits: []string{benefit},
				Notes:            notes,
			},
			Provenance: prov,
		}
	}
	return []models.PlanRecord{
		plan("5GX 플래티넘(넷플릭스)", 93750, "Netflix Premium", "선택약정 기준"),
		plan("5GX 프라임플러스(넷플릭스)", 0, "Netflix Standard", "월정액 미정"),
		plan("5GX 프라임(넷플릭스)", 0, "Netflix Standard", "월정액 미정"),
		plan("5GX 프리미엄(넷플릭스)", 0, "Netflix Premium", "월정액 미정"),
	}
}

func (f *Fetcher) provenance(ctx context.Context, url string) models.Provenance {
	title, status := f.fetchTitle(ctx, url)
	if status != StatusOK {
		f.Logger.Warn("benefit page fetch failed", zap.String("url", url), zap.String("status", status))
	}
	return models.Provenance{
		SourceURL:   url,
		SourceTitle: title,
		FetchStatus: status,
		DataSource:  DataSourceHardcoded,
		FetchedAt:   f.now().UTC(),
	}
}

// fetchTitle downloads url and returns its <title> and a fetch status.
func (f *Fetcher) fetchTitle(ctx context.Context, url string) (string, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "error_request"
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Sprintf("http_%d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", classify(err)
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), StatusOK
}

// classify maps a transport error to a fetch status.
func classify(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return StatusTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return StatusTimeout
	case errors.Is(err, context.Canceled):
		return "error_canceled"
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	switch {
	case errors.As(err, &dnsErr):
		return "error_dns"
	case errors.As(err, &opErr):
		return "error_connection"
	default:
		return "error_request"
	}
}
