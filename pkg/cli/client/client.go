// Package client Job Executor HTTP API客户端
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/LENAX/job-executor/pkg/api/dto"
)

// Client HTTP API客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建客户端
// 不设置整体超时，wait类请求可能长时间阻塞，由调用方的ctx控制
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// ========== Jobs API ==========

// Status 查询执行器状态
func (c *Client) Status(ctx context.Context) (*dto.JobsStatus, error) {
	var resp dto.APIResponse[dto.JobsStatus]
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Execute 启动count个Job，wait为true时等待本批次完成
func (c *Client) Execute(ctx context.Context, count int, wait bool) (*dto.ExecuteResponse, error) {
	req := dto.ExecuteRequest{Count: &count, Wait: wait}
	var resp dto.APIResponse[dto.ExecuteResponse]
	if err := c.do(ctx, http.MethodPost, "/api/v1/jobs/execute", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Terminate 终止count个Job，count为nil时终止全部
func (c *Client) Terminate(ctx context.Context, count *int) (*dto.TerminateResponse, error) {
	req := dto.TerminateRequest{Count: count}
	var resp dto.APIResponse[dto.TerminateResponse]
	if err := c.do(ctx, http.MethodPost, "/api/v1/jobs/terminate", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Wait 等待注册表清空
func (c *Client) Wait(ctx context.Context) (*dto.WaitResponse, error) {
	var resp dto.APIResponse[dto.WaitResponse]
	if err := c.do(ctx, http.MethodPost, "/api/v1/jobs/wait", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ========== Health API ==========

// Health 健康检查
func (c *Client) Health(ctx context.Context) (*dto.HealthResponse, error) {
	var resp dto.APIResponse[dto.HealthResponse]
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ========== HTTP Methods ==========

func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	return parseResponse(resp, result)
}

func parseResponse(resp *http.Response, result any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应体失败: %w", err)
	}

	var envelope dto.APIResponse[json.RawMessage]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("解析响应失败: %w, body: %s", err, string(body))
	}
	if envelope.Code != 0 {
		return &APIError{StatusCode: resp.StatusCode, Code: envelope.Code, Message: envelope.Message}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("解析响应失败: %w, body: %s", err, string(body))
	}
	return nil
}

// APIError 服务端返回的错误
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// IsBadRequest 是否为参数错误
func IsBadRequest(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest
}
