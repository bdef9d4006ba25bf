package registry

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"

	"github.com/lissto-dev/registry-cleanup/pkg/logging"
)

const ghcrPageSize = 100

// GHCRClient lists and deletes container package versions on the GitHub
// Container Registry. Versions are scoped to an organization and a package
// name; authentication is a bearer token.
type GHCRClient struct {
	client     *github.Client
	org        string
	repository string
}

// NewGHCR creates a GHCR client authenticated with the given token.
func NewGHCR(token, org, repository string) *GHCRClient {
	return NewGHCRWithClient(github.NewClient(nil).WithAuthToken(token), org, repository)
}

// NewGHCRWithClient creates a GHCR client on top of a preconfigured GitHub
// API client. Used by tests to point at a local server.
func NewGHCRWithClient(client *github.Client, org, repository string) *GHCRClient {
	return &GHCRClient{
		client:     client,
		org:        org,
		repository: repository,
	}
}

// Name returns the backend identifier
func (c *GHCRClient) Name() string {
	return "ghcr"
}

// ListVersions returns all active container package versions, following the
// API's link-header pagination.
func (c *GHCRClient) ListVersions(ctx context.Context) ([]ImageVersion, error) {
	opts := &github.PackageListOptions{
		PackageType: github.String("container"),
		State:       github.String("active"),
		ListOptions: github.ListOptions{PerPage: ghcrPageSize},
	}

	var all []ImageVersion
	for {
		versions, resp, err := c.client.Organizations.PackageGetAllVersions(
			ctx, c.org, "container", c.repository, opts)
		if err != nil {
			// An unknown package means there is nothing to clean up.
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				logging.Logger.Info("Package not found, treating as empty",
					zap.String("org", c.org),
					zap.String("repository", c.repository))
				return nil, nil
			}
			return nil, c.wrapError("list versions", resp, err)
		}

		for _, v := range versions {
			var tags []string
			if v.Metadata != nil && v.Metadata.Container != nil {
				tags = v.Metadata.Container.Tags
			}
			all = append(all, ImageVersion{
				ID:       strconv.FormatInt(v.GetID(), 10),
				Tags:     tags,
				PushedAt: v.GetCreatedAt().Time.UTC(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// DeleteVersion deletes one package version. A 404 means the version is
// already gone and counts as success.
func (c *GHCRClient) DeleteVersion(ctx context.Context, id string) error {
	versionID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return &Error{Backend: c.Name(), Op: "delete version", Err: err}
	}

	resp, err := c.client.Organizations.PackageDeleteVersion(
		ctx, c.org, "container", c.repository, versionID)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			logging.Logger.Debug("Version already deleted",
				zap.String("id", id))
			return nil
		}
		return c.wrapError("delete version", resp, err)
	}

	return nil
}

func (c *GHCRClient) wrapError(op string, resp *github.Response, err error) error {
	e := &Error{Backend: c.Name(), Op: op, Err: err}
	if resp != nil {
		e.StatusCode = resp.StatusCode
	}
	return e
}
