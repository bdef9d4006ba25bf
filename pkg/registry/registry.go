// Package registry abstracts the container registries the cleanup runs
// against. Each backend normalizes its listing into ImageVersion values so
// the retention engine never sees backend-specific shapes.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/lissto-dev/registry-cleanup/pkg/config"
)

// ImageVersion is one entry from a registry listing. ID is the opaque
// backend-specific identifier used for deletion (a numeric package version
// ID on GHCR, an artifact digest on Harbor). Tags may be empty for untagged
// manifests.
type ImageVersion struct {
	ID       string
	Tags     []string
	PushedAt time.Time
}

// Client is the capability set the cleanup engine needs from a registry.
type Client interface {
	// Name returns a short backend identifier for logs and summaries.
	Name() string

	// ListVersions returns every image version of the configured repository,
	// following pagination transparently. A repository that does not exist
	// yields an empty listing, not an error.
	ListVersions(ctx context.Context) ([]ImageVersion, error)

	// DeleteVersion deletes one image version by its listing identifier.
	// A version that is already gone (deleted by a concurrent run or by
	// hand) counts as success.
	DeleteVersion(ctx context.Context, id string) error
}

// Error reports a failed registry call.
type Error struct {
	Backend    string
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s failed with status %d: %v", e.Backend, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds the registry client selected by the settings.
func New(settings *config.Settings) (Client, error) {
	switch settings.RegistryType {
	case "ghcr":
		return NewGHCR(settings.GitHubToken, settings.OrgName, settings.RepositoryName), nil
	case "harbor":
		return NewHarbor(
			settings.HarborURL,
			settings.HarborUsername,
			settings.HarborPassword,
			settings.HarborProjectName,
			settings.RepositoryName,
		), nil
	}
	return nil, fmt.Errorf("unsupported registry type %q", settings.RegistryType)
}
