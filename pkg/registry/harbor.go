package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lissto-dev/registry-cleanup/pkg/logging"
)

const harborPageSize = 100

// HarborClient lists and deletes artifacts of one repository in a Harbor
// project over the v2.0 API. Authentication is basic credentials;
// pagination uses page/page_size parameters. A Harbor artifact can carry
// multiple tag objects; the client flattens them into plain tag names.
type HarborClient struct {
	baseURL    string
	username   string
	password   string
	project    string
	repository string
	httpClient *http.Client
}

// harborArtifact is the subset of the artifact listing response we consume.
type harborArtifact struct {
	Digest   string      `json:"digest"`
	PushTime time.Time   `json:"push_time"`
	Tags     []harborTag `json:"tags"`
}

type harborTag struct {
	Name string `json:"name"`
}

// NewHarbor creates a Harbor client. The URL may omit the scheme (https is
// assumed) and may carry a trailing slash.
func NewHarbor(rawURL, username, password, project, repository string) *HarborClient {
	baseURL := strings.TrimRight(rawURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return &HarborClient{
		baseURL:    baseURL,
		username:   username,
		password:   password,
		project:    project,
		repository: repository,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the backend identifier
func (c *HarborClient) Name() string {
	return "harbor"
}

// ListVersions returns all artifacts of the repository with their tags
// normalized to plain strings, following page-number pagination.
func (c *HarborClient) ListVersions(ctx context.Context) ([]ImageVersion, error) {
	var all []ImageVersion

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("page_size", strconv.Itoa(harborPageSize))
		params.Set("with_tag", "true")

		body, status, err := c.doRequest(ctx, http.MethodGet, c.artifactsPath(), params)
		if err != nil {
			return nil, &Error{Backend: c.Name(), Op: "list artifacts", StatusCode: status, Err: err}
		}
		if status == http.StatusNotFound {
			logging.Logger.Info("Repository not found, treating as empty",
				zap.String("project", c.project),
				zap.String("repository", c.repository))
			return nil, nil
		}
		if status < 200 || status >= 300 {
			return nil, c.statusError("list artifacts", status, body)
		}

		var artifacts []harborArtifact
		if err := json.Unmarshal(body, &artifacts); err != nil {
			return nil, &Error{Backend: c.Name(), Op: "list artifacts", Err: fmt.Errorf("malformed response: %w", err)}
		}
		if len(artifacts) == 0 {
			break
		}

		for _, a := range artifacts {
			tags := make([]string, 0, len(a.Tags))
			for _, t := range a.Tags {
				if t.Name != "" {
					tags = append(tags, t.Name)
				}
			}
			all = append(all, ImageVersion{
				ID:       a.Digest,
				Tags:     tags,
				PushedAt: a.PushTime.UTC(),
			})
		}
	}

	return all, nil
}

// DeleteVersion deletes one artifact by digest. A 404 means the artifact is
// already gone and counts as success.
func (c *HarborClient) DeleteVersion(ctx context.Context, id string) error {
	path := c.artifactsPath() + "/" + id

	body, status, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return &Error{Backend: c.Name(), Op: "delete artifact", StatusCode: status, Err: err}
	}
	if status == http.StatusNotFound {
		logging.Logger.Debug("Artifact already deleted",
			zap.String("digest", id))
		return nil
	}
	if status < 200 || status >= 300 {
		return c.statusError("delete artifact", status, body)
	}

	return nil
}

func (c *HarborClient) artifactsPath() string {
	return fmt.Sprintf("/projects/%s/repositories/%s/artifacts", c.project, c.repository)
}

func (c *HarborClient) doRequest(ctx context.Context, method, path string, params url.Values) ([]byte, int, error) {
	fullURL := c.baseURL + "/api/v2.0" + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}

func (c *HarborClient) statusError(op string, status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return &Error{
		Backend:    c.Name(),
		Op:         op,
		StatusCode: status,
		Err:        fmt.Errorf("%s", detail),
	}
}
