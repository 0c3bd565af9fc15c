// Package client is the Go API client used by the interactive shell. It
// authenticates with a bearer token obtained from login.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/storeit-dev/storeit/pkg/httputil"
	"github.com/storeit-dev/storeit/pkg/schemas"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (c *Client) Register(ctx context.Context, in *schemas.Register) (*schemas.UserOut, error) {
	var out schemas.UserOut
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogIn authenticates and keeps the returned token for subsequent calls.
func (c *Client) LogIn(ctx context.Context, email, password string) (*schemas.AuthOut, error) {
	var out schemas.AuthOut
	err := c.do(ctx, http.MethodPost, "/api/auth/login", &schemas.Login{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

func (c *Client) Session(ctx context.Context) (*schemas.UserOut, error) {
	var out schemas.UserOut
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) ListFiles(ctx context.Context, query *schemas.FileQuery) (*schemas.FileList, error) {
	values := url.Values{}
	if query != nil {
		if query.Type != "" {
			values.Set("type", query.Type)
		}
		if query.Search != "" {
			values.Set("search", query.Search)
		}
		if query.Sort != "" {
			values.Set("sort", query.Sort)
		}
		if query.Order != "" {
			values.Set("order", query.Order)
		}
		if query.Limit > 0 {
			values.Set("limit", strconv.Itoa(query.Limit))
		}
	}

	endpoint := "/api/files"
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	var out schemas.FileList
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetFile(ctx context.Context, fileID string) (*schemas.FileOut, error) {
	var out schemas.FileOut
	if err := c.do(ctx, http.MethodGet, "/api/files/"+url.PathEscape(fileID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RenameFile(ctx context.Context, fileID string, in *schemas.RenameFile) (*schemas.FileOut, error) {
	var out schemas.FileOut
	err := c.do(ctx, http.MethodPatch, "/api/files/"+url.PathEscape(fileID)+"/name", in, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateFileUsers(ctx context.Context, fileID string, in *schemas.UpdateFileUsers) (*schemas.FileOut, error) {
	var out schemas.FileOut
	err := c.do(ctx, http.MethodPatch, "/api/files/"+url.PathEscape(fileID)+"/users", in, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteFile(ctx context.Context, fileID, viewPath string) error {
	endpoint := "/api/files/" + url.PathEscape(fileID)
	if viewPath != "" {
		endpoint += "?path=" + url.QueryEscape(viewPath)
	}
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// DownloadFile streams the file content. The caller closes the reader.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/files/"+url.PathEscape(fileID)+"/download", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp.Body, nil
}

// UploadFile sends the file as multipart form data.
func (c *Client) UploadFile(ctx context.Context, name string, content io.Reader, viewPath string) (*schemas.FileOut, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", path.Base(name))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if viewPath != "" {
		if err := writer.WriteField("path", viewPath); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/files", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeError(resp)
	}

	var out schemas.FileOut
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func decodeError(resp *http.Response) error {
	var httpErr httputil.HTTPError
	if err := json.NewDecoder(resp.Body).Decode(&httpErr); err != nil || httpErr.Message == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: httpErr.Message}
}
