package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gravitrone/datafiles/internal/errs"
)

type tokenResponse struct {
	Token string `json:"token"`
}

func decodeToken(data []byte) (string, error) {
	resp, err := decodeOne[tokenResponse](data)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("decode response: empty token")
	}
	return resp.Token, nil
}

// UploadToken requests a write-scoped token for one column of one row.
func (c *Client) UploadToken(ctx context.Context, table string, id RowID, column string) (string, error) {
	path := fmt.Sprintf("%s/files/token/table/%s/id/%s/column/%s?access=write",
		apiPrefix, url.PathEscape(table), url.PathEscape(id.String()), url.PathEscape(column))
	data, err := c.get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrTokenRequest, err)
	}
	token, err := decodeToken(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrTokenRequest, err)
	}
	return token, nil
}

// StorageToken requests a read token for attachment download URLs.
func (c *Client) StorageToken(ctx context.Context) (string, error) {
	data, err := c.post(ctx, apiPrefix+"/storage/token", nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrTokenRequest, err)
	}
	token, err := decodeToken(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrTokenRequest, err)
	}
	return token, nil
}

// UploadFile posts content as a multipart form with a single field. The token
// authorizes the call, so the admin secret is not sent.
func (c *Client) UploadFile(ctx context.Context, token, field, filename string, content io.Reader) (*FileObject, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: create form file: %w", errs.ErrUpload, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", errs.ErrUpload, filename, err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("%w: close form: %w", errs.ErrUpload, err)
	}

	endpoint := c.baseURL + apiPrefix + "/files/upload?token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", errs.ErrUpload, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	data, _, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrUpload, err)
	}
	file, err := decodeUploadResponse(data, field)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrUpload, err)
	}
	if file.Filename == "" {
		file.Filename = filename
	}
	return file, nil
}

// decodeUploadResponse accepts the stored file object either at the top level
// or keyed by the form field it was uploaded under.
func decodeUploadResponse(data []byte, field string) (*FileObject, error) {
	file, err := decodeOne[FileObject](data)
	if err != nil {
		return nil, err
	}
	if file.URL != "" {
		return file, nil
	}
	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(data, &keyed); err == nil {
		if raw, ok := keyed[field]; ok {
			return decodeOne[FileObject](raw)
		}
	}
	return file, nil
}

// DownloadURL appends the storage token to an attachment URL. An existing
// query is kept byte for byte and extended with "&".
func DownloadURL(file FileObject, token string) string {
	base, fragment, hasFragment := strings.Cut(file.URL, "#")
	sep := "?"
	switch {
	case strings.HasSuffix(base, "?"), strings.HasSuffix(base, "&"):
		sep = ""
	case strings.Contains(base, "?"):
		sep = "&"
	}
	out := base + sep + "token=" + url.QueryEscape(token)
	if hasFragment {
		out += "#" + fragment
	}
	return out
}

// Download streams a token-authorized attachment URL into w.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: create request: %w", errs.ErrRemoteRead, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: request failed: %w", errs.ErrRemoteRead, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg, ok := errorMessage(body)
		if !ok {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return 0, fmt.Errorf("%w: %w", errs.ErrRemoteRead, &StatusError{StatusCode: resp.StatusCode, Message: msg})
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("%w: read body: %w", errs.ErrRemoteRead, err)
	}
	return n, nil
}
