// Package client bookmarket API的HTTP客户端，供命令行与脚本使用
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	appbook "github.com/xiebiao/bookmarket/internal/application/book"
	apporder "github.com/xiebiao/bookmarket/internal/application/order"
	"github.com/xiebiao/bookmarket/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// Client API客户端
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New baseURL为服务地址（如http://localhost:8080），token可以为空
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// GetBook GET /api/v1/books/:id
func (c *Client) GetBook(ctx context.Context, id uint) (*appbook.BookResponse, error) {
	var out appbook.BookResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/books/"+strconv.FormatUint(uint64(id), 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BookPage 图书列表分页结果
type BookPage struct {
	List       []appbook.BookResponse `json:"list"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
}

// ListBooks GET /api/v1/books
func (c *Client) ListBooks(ctx context.Context, query url.Values) (*BookPage, error) {
	path := "/api/v1/books"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var out BookPage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Checkout POST /api/v1/checkout，需要token
func (c *Client) Checkout(ctx context.Context, req dto.CheckoutRequest) (*apporder.CheckoutResponse, error) {
	var out apporder.CheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/checkout", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do 发送请求并解包response.Response，code非0时返回*apperrors.AppError
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("编码请求失败: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("请求%s失败: %w", path, err)
	}
	defer resp.Body.Close()

	var envelope struct {
		response.Response
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("解析响应失败（HTTP %d）: %w", resp.StatusCode, err)
	}
	if envelope.Code != 0 {
		return apperrors.New(envelope.Code, envelope.Message)
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}
