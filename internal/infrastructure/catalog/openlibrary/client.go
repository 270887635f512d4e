// Package openlibrary Open Library书目检索
package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/circuitbreaker"
	"github.com/xiebiao/bookmarket/pkg/metrics"
)

const (
	DefaultBaseURL = "https://openlibrary.org"
	coverURLFormat = "https://covers.openlibrary.org/b/id/%d-M.jpg"
	searchFields   = "key,title,author_name,cover_i,subject,first_sentence,isbn,language,number_of_pages_median,first_publish_year"
)

// errClientStatus 查询本身被拒绝（4xx），不计入熔断
var errClientStatus = errors.New("openlibrary rejected query")

// Client search.json客户端
type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
}

// New timeout为0时使用5秒
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: circuitbreaker.New("openlibrary", circuitbreaker.Config{
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c circuitbreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, errClientStatus) || errors.Is(err, context.Canceled)
			},
		}),
	}
}

type searchResponse struct {
	NumFound int64 `json:"numFound"`
	Docs     []doc `json:"docs"`
}

type doc struct {
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	AuthorName    []string `json:"author_name"`
	CoverID       int64    `json:"cover_i"`
	Subject       []string `json:"subject"`
	FirstSentence []string `json:"first_sentence"`
	ISBN          []string `json:"isbn"`
	Language      []string `json:"language"`
	Pages         int      `json:"number_of_pages_median"`
	PublishedYear int      `json:"first_publish_year"`
}

// Search 实现book.ExternalCatalog
func (c *Client) Search(ctx context.Context, query string, page, limit int) ([]*book.ExternalListing, int64, error) {
	if strings.TrimSpace(query) == "" {
		query = "books"
	}
	if page < 1 {
		page = 1
	}

	var result searchResponse
	err := c.breaker.Execute(func() error {
		return c.fetch(ctx, query, page, limit, &result)
	})
	if err != nil {
		label := "failure"
		if errors.Is(err, circuitbreaker.ErrOpenState) {
			label = "rejected"
		}
		metrics.IncCounterVec(metrics.ExternalCatalogRequests, label)
		return nil, 0, apperrors.Upstream(err, "外部书目检索失败")
	}
	metrics.IncCounterVec(metrics.ExternalCatalogRequests, "success")

	listings := make([]*book.ExternalListing, 0, len(result.Docs))
	for _, d := range result.Docs {
		if d.Key == "" {
			continue
		}
		listings = append(listings, toListing(d))
	}
	if len(listings) > limit {
		listings = listings[:limit]
	}
	return listings, result.NumFound, nil
}

func (c *Client) fetch(ctx context.Context, query string, page, limit int, out *searchResponse) error {
	q := url.Values{}
	q.Set("q", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("fields", searchFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return fmt.Errorf("%w %d", errClientStatus, resp.StatusCode)
	default:
		return fmt.Errorf("openlibrary status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func toListing(d doc) *book.ExternalListing {
	key := strings.TrimPrefix(d.Key, "/works/")
	h := hashKey(key)

	// 外部条目没有价格与库存，按key派生稳定的值
	price := decimal.NewFromInt(500 + int64(h%2000)).Shift(-2)
	original := price.Add(decimal.NewFromInt(500 + int64((h>>16)%1500)).Shift(-2))

	cover := book.PlaceholderCover
	if d.CoverID > 0 {
		cover = fmt.Sprintf(coverURLFormat, d.CoverID)
	}

	b := book.Book{
		Title:         d.Title,
		Author:        first(d.AuthorName, "Unknown Author"),
		Price:         price,
		OriginalPrice: original,
		Condition:     book.Conditions[int(h>>8)%len(book.Conditions)],
		Category:      first(d.Subject, "Fiction"),
		Description:   first(d.FirstSentence, "No description available."),
		CoverImage:    cover,
		Seller:        book.Seller{Name: book.ExternalSellerName},
		Quantity:      1 + int((h>>24)%10),
		ISBN:          first(d.ISBN, "Unknown ISBN"),
		Language:      first(d.Language, "English"),
		Pages:         d.Pages,
		PublishedYear: d.PublishedYear,
	}
	if b.Pages == 0 {
		b.Pages = 200
	}
	if b.PublishedYear == 0 {
		b.PublishedYear = 2000
	}
	return &book.ExternalListing{Key: key, Book: b}
}

func hashKey(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32()
}

func first(vals []string, fallback string) string {
	if len(vals) > 0 && vals[0] != "" {
		return vals[0]
	}
	return fallback
}
