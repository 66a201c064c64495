package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// AvatarStore keeps worker profile pictures behind public URLs.
type AvatarStore interface {
	Put(ctx context.Context, content io.Reader, objectPath string) (string, error)
	Remove(ctx context.Context, publicURL string) error
}

const maxAvatarErrorBody = 2048

type SupabaseAvatarStore struct {
	endpoint *url.URL
	bucket   string
	key      string
	client   *http.Client
}

func NewSupabaseAvatarStore(baseURL, bucket, serviceKey string) (*SupabaseAvatarStore, error) {
	endpoint, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || endpoint.Host == "" {
		return nil, fmt.Errorf("avatar store endpoint %q is not an absolute url", baseURL)
	}
	return &SupabaseAvatarStore{
		endpoint: endpoint,
		bucket:   bucket,
		key:      serviceKey,
		client:   http.DefaultClient,
	}, nil
}

// Put uploads an image and returns its public URL. Re-uploading the same
// path replaces the stored picture.
func (s *SupabaseAvatarStore) Put(ctx context.Context, content io.Reader, objectPath string) (string, error) {
	image, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	mediaType := http.DetectContentType(image)
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: avatar content is %s", ErrInvalidInput, mediaType)
	}

	key := cleanObjectKey(objectPath)
	req, err := s.newRequest(ctx, http.MethodPost, s.objectURL("", key), bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-upsert", "true")
	req.Header.Set("Content-Type", mediaType)

	if _, err := s.send(req, "store avatar"); err != nil {
		return "", err
	}
	return s.objectURL("public", key), nil
}

// Remove deletes a previously stored avatar. A picture that is already gone
// counts as removed.
func (s *SupabaseAvatarStore) Remove(ctx context.Context, publicURL string) error {
	key, err := s.keyFromPublicURL(publicURL)
	if err != nil {
		return err
	}

	req, err := s.newRequest(ctx, http.MethodDelete, s.objectURL("", key), nil)
	if err != nil {
		return err
	}

	status, err := s.send(req, "remove avatar")
	if status == http.StatusNotFound {
		return nil
	}
	return err
}

func (s *SupabaseAvatarStore) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("prepare avatar request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
	return req, nil
}

// send returns the response status alongside an error for any non-2xx reply.
func (s *SupabaseAvatarStore) send(req *http.Request, action string) (int, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 == 2 {
		return resp.StatusCode, nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxAvatarErrorBody))
	return resp.StatusCode, fmt.Errorf("%s: bucket %s answered %d: %s",
		action, s.bucket, resp.StatusCode, strings.TrimSpace(string(detail)))
}

// objectURL builds /storage/v1/object[/visibility]/<bucket>/<key>.
func (s *SupabaseAvatarStore) objectURL(visibility, key string) string {
	segments := []string{"storage", "v1", "object"}
	if visibility != "" {
		segments = append(segments, visibility)
	}
	segments = append(segments, s.bucket, key)

	target := *s.endpoint
	target.Path = strings.TrimRight(target.Path, "/") + "/" + strings.Join(segments, "/")
	return target.String()
}

func (s *SupabaseAvatarStore) keyFromPublicURL(publicURL string) (string, error) {
	parsed, err := url.Parse(publicURL)
	if err != nil {
		return "", fmt.Errorf("avatar url %q: %w", publicURL, err)
	}

	prefix := "/storage/v1/object/public/" + s.bucket + "/"
	key, ok := strings.CutPrefix(parsed.Path, prefix)
	if !ok || parsed.Host != s.endpoint.Host || key == "" {
		return "", fmt.Errorf("avatar url %q is not in bucket %s", publicURL, s.bucket)
	}
	return key, nil
}

func cleanObjectKey(objectPath string) string {
	return strings.Trim(path.Clean("/"+objectPath), "/")
}
