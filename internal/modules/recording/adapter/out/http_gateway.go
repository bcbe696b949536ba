package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strconv"
	"strings"

	"airpulse/internal/modules/recording/domain"
	recordingout "airpulse/internal/modules/recording/port/out"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/platform/httpapi"
)

type HTTPGateway struct {
	client *httpapi.Client
}

func NewHTTPGateway(client *httpapi.Client) recordingout.Gateway {
	return &HTTPGateway{client: client}
}

// wireRecording accepts both Mongo-style "_id" and plain "id", and a
// duration sent either as a number or a numeric string.
type wireRecording struct {
	MongoID   string          `json:"_id"`
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	URL       string          `json:"url"`
	Duration  json.RawMessage `json:"duration"`
	CreatedAt string          `json:"createdAt"`
}

// toDomain never fails the whole listing: a field that cannot be decoded is
// reported on the row and the service drops it.
func (w wireRecording) toDomain() domain.Recording {
	id := w.MongoID
	if id == "" {
		id = w.ID
	}
	rec := domain.Recording{ID: id, Title: w.Title, URL: w.URL, CreatedAt: w.CreatedAt}
	rec.Duration, rec.DecodeErr = parseDuration(w.Duration)
	return rec
}

func parseDuration(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, apperrors.Malformed("duration %s", string(raw))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.Malformed("duration %q", s)
	}
	return n, nil
}

func (g *HTTPGateway) Upload(ctx context.Context, upload domain.Upload) (domain.UploadResult, error) {
	body, contentType, err := multipartBody(upload)
	if err != nil {
		return domain.UploadResult{}, err
	}
	req, err := g.client.NewRequest(ctx, http.MethodPost, "/recordings", body)
	if err != nil {
		return domain.UploadResult{}, err
	}
	req.Header.Set("Content-Type", contentType)

	resp := wireRecording{}
	if err := g.client.Do(req, &resp); err != nil {
		return domain.UploadResult{}, err
	}
	id := resp.MongoID
	if id == "" {
		id = resp.ID
	}
	return domain.UploadResult{ID: id, Title: resp.Title}, nil
}

func multipartBody(upload domain.Upload) (io.Reader, string, error) {
	f, err := os.Open(upload.Path)
	if err != nil {
		return nil, "", apperrors.Invalid("open recording %s: %v", upload.Path, err)
	}
	defer f.Close()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, upload.Name))
	header.Set("Content-Type", upload.ContentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("copy recording: %w", err)
	}
	if err := w.WriteField("title", upload.Name); err != nil {
		return nil, "", fmt.Errorf("write title field: %w", err)
	}
	if err := w.WriteField("duration", strconv.Itoa(upload.DurationSeconds)); err != nil {
		return nil, "", fmt.Errorf("write duration field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func (g *HTTPGateway) List(ctx context.Context) ([]domain.Recording, error) {
	var rows []wireRecording
	if err := g.client.GetJSON(ctx, "/recordings", &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Recording, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (g *HTTPGateway) BulkUpload(ctx context.Context) (int, error) {
	var resp struct {
		Count *int `json:"count"`
	}
	if err := g.client.PostJSON(ctx, "/recordings/bulk-upload", nil, &resp); err != nil {
		return 0, err
	}
	if resp.Count == nil {
		return 0, apperrors.Malformed("bulk upload response without count")
	}
	return *resp.Count, nil
}

func (g *HTTPGateway) Delete(ctx context.Context, id string) error {
	return g.client.Delete(ctx, "/recordings/"+url.PathEscape(id))
}
