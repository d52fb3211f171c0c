/*
Copyright 2026 The Crossplane Catalog Ingestor contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"fmt"
	"os"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

const defaultRefreshInterval = 10 * time.Minute

// Provider identifies the version control system pull/merge requests
// are opened against. The empty string is the file-only sentinel: the
// workflow then ends after rendering manifests.
type Provider string

const (
	ProviderGitHub          Provider = "github"
	ProviderGitLab          Provider = "gitlab"
	ProviderBitbucketServer Provider = "bitbucketServer"
	ProviderBitbucketCloud  Provider = "bitbucketCloud"
)

// KnownProviders lists every provider the workflow synthesizer can
// target.
var KnownProviders = []Provider{ProviderGitHub, ProviderGitLab, ProviderBitbucketServer, ProviderBitbucketCloud}

// DefaultAnnotationPrefix prefixes the ingestion control annotations on
// definitions.
const DefaultAnnotationPrefix = "catalog.platformkit.io"

// Config is the read-only configuration surface of the ingestor.
type Config struct {
	// AnnotationPrefix is prepended to the exclude/ingest markers read
	// off definitions.
	AnnotationPrefix string `json:"annotationPrefix,omitempty"`

	// IngestAllDefinitions ingests every definition that is not
	// explicitly excluded. When false, only definitions carrying the
	// inclusion marker are ingested.
	IngestAllDefinitions bool `json:"ingestAllDefinitions,omitempty"`

	// AllowedClusters restricts ingestion to the named kubeconfig
	// contexts. Empty means all reachable clusters.
	AllowedClusters []string `json:"allowedClusters,omitempty"`

	// ConvertDefaultValuesToPlaceholders moves schema defaults into
	// placeholder hints so forms never silently pre-fill values.
	ConvertDefaultValuesToPlaceholders bool `json:"convertDefaultValuesToPlaceholders,omitempty"`

	// PublishTarget selects the version control provider for generated
	// workflows. Empty means file-only: no change-request step is
	// emitted.
	PublishTarget Provider `json:"publishTarget,omitempty"`

	// AllowRepositorySelection exposes repository and branch pickers on
	// generated forms. When false, RepositoryURL and TargetBranch are
	// baked into the workflow instead.
	AllowRepositorySelection bool `json:"allowRepositorySelection,omitempty"`

	// AllowedHosts overrides the selectable host list derived from
	// PublishTarget.
	AllowedHosts []string `json:"allowedHosts,omitempty"`

	// RepositoryURL and TargetBranch are the static publication target,
	// used only when AllowRepositorySelection is false.
	RepositoryURL string `json:"repositoryURL,omitempty"`
	TargetBranch  string `json:"targetBranch,omitempty"`

	// CatalogEndpoint is the catalog mutation API the generated entity
	// set is published to.
	CatalogEndpoint string `json:"catalogEndpoint,omitempty"`

	// EntityOwner is the owner recorded on generated entities.
	EntityOwner string `json:"entityOwner,omitempty"`

	// RefreshInterval is the period between refresh passes.
	RefreshInterval metav1.Duration `json:"refreshInterval,omitempty"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		AnnotationPrefix:     DefaultAnnotationPrefix,
		IngestAllDefinitions: true,
		TargetBranch:         "main",
		EntityOwner:          "platform-team",
		RefreshInterval:      metav1.Duration{Duration: defaultRefreshInterval},
	}
}

// Load reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AnnotationPrefix == "" {
		return fmt.Errorf("annotationPrefix cannot be empty")
	}

	if c.PublishTarget != "" {
		known := false
		for _, p := range KnownProviders {
			if c.PublishTarget == p {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown publishTarget %q; available: %v", c.PublishTarget, KnownProviders)
		}

		if !c.AllowRepositorySelection && c.RepositoryURL == "" {
			return fmt.Errorf("repositoryURL is required when repository selection is disallowed")
		}
	}

	if c.RefreshInterval.Duration < 0 {
		return fmt.Errorf("refreshInterval must be a non-negative duration")
	}

	return nil
}

// ExcludeAnnotation is the marker that always removes a definition from
// ingestion.
func (c *Config) ExcludeAnnotation() string {
	return c.AnnotationPrefix + "/exclude"
}

// IngestAnnotation is the opt-in marker required when
// IngestAllDefinitions is false.
func (c *Config) IngestAnnotation() string {
	return c.AnnotationPrefix + "/ingest"
}

// Hosts returns the selectable host list for repository pickers: the
// explicit override when set, otherwise the default host of the
// configured provider.
func (c *Config) Hosts() []string {
	if len(c.AllowedHosts) > 0 {
		return c.AllowedHosts
	}
	switch c.PublishTarget {
	case ProviderGitHub:
		return []string{"github.com"}
	case ProviderGitLab:
		return []string{"gitlab.com"}
	case ProviderBitbucketCloud:
		return []string{"bitbucket.org"}
	default:
		// Bitbucket Server is self-hosted; allowedHosts must name the
		// instance.
		return nil
	}
}
