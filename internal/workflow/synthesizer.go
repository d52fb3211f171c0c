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

// Package workflow synthesizes the ordered generation steps attached to
// provisioning templates. Steps are data handed to the host platform's
// scaffolder, never code executed here.
package workflow

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/platformkit/crossplane-ingestor/internal/crossplane"
	"github.com/platformkit/crossplane-ingestor/internal/pkg/config"
)

// Step is one entry of the generation workflow.
type Step struct {
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	Action string         `json:"action" yaml:"action"`
	If     string         `json:"if,omitempty" yaml:"if,omitempty"`
	Input  map[string]any `json:"input,omitempty" yaml:"input,omitempty"`
}

// Placeholder tokens substituted textually once the step list is fully
// assembled. The base templates below are authored once per dialect and
// reused for every definition of that dialect, so they cannot carry
// concrete type information themselves.
const (
	apiVersionToken = "<<API_VERSION>>"
	kindToken       = "<<KIND>>"
)

// namespacedSteps renders a namespaced manifest: a claim for the
// claim-mediated dialects, the composite itself for direct-namespaced.
// The manifest kind is resolved through token substitution, so the
// three namespace-bearing dialects share one template.
const namespacedSteps = `
- id: render-manifest
  name: Render resource manifest
  action: catalog:manifest-render
  input:
    apiVersion: <<API_VERSION>>
    kind: <<KIND>>
    nameParam: xrName
    namespaceParam: xrNamespace
    excludeParams:
      - xrName
      - xrNamespace
      - owner
      - compositionSelectionStrategy
      - pushToGit
      - manifestLayout
      - targetClusters
      - basePath
      - repoUrl
      - targetBranch
`

// directClusterSteps renders a cluster-scoped composite resource; the
// dialect has no namespace parameter.
const directClusterSteps = `
- id: render-manifest
  name: Render resource manifest
  action: catalog:manifest-render
  input:
    apiVersion: <<API_VERSION>>
    kind: <<KIND>>
    nameParam: xrName
    namespaceParam: ""
    excludeParams:
      - xrName
      - owner
      - compositionSelectionStrategy
      - pushToGit
      - manifestLayout
      - targetClusters
      - basePath
      - repoUrl
      - targetBranch
`

// Synthesizer builds workflows for one configured publication target.
type Synthesizer struct {
	cfg *config.Config
}

func NewSynthesizer(cfg *config.Config) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// Synthesize assembles the full step list for one definition version:
// manifest render, conditional relocation per layout, and a final
// change-request step unless the target is file-only. Token
// substitution happens last, over the assembled list.
func (s *Synthesizer) Synthesize(def *crossplane.Definition, version string, profile crossplane.Profile) ([]Step, error) {
	steps, err := baseSteps(profile.Dialect)
	if err != nil {
		return nil, err
	}

	steps = append(steps, relocateSteps(profile)...)

	if s.cfg.PublishTarget != "" {
		steps = append(steps, s.changeRequestStep())
	}

	apiVersion := def.Group + "/" + version
	kind := def.Kind
	if profile.HasClaimFields {
		kind = def.ClaimKind
	}

	return substituteTokens(steps, apiVersion, kind)
}

func baseSteps(dialect crossplane.Dialect) ([]Step, error) {
	var raw string
	switch dialect {
	case crossplane.DialectLegacyClaim, crossplane.DialectLegacyCluster, crossplane.DialectDirectNamespaced:
		raw = namespacedSteps
	default:
		raw = directClusterSteps
	}

	var steps []Step
	if err := yaml.Unmarshal([]byte(raw), &steps); err != nil {
		return nil, fmt.Errorf("failed to parse base step template for dialect %q: %w", dialect, err)
	}
	return steps, nil
}

// relocateSteps move the rendered manifests to the layout-specific
// repository path. Each is gated on the publish toggle and its layout.
// The namespace-scoped relocation interpolates the namespace parameter,
// so dialects without one never carry that step; the form offers no
// namespace-scoped layout for them either.
func relocateSteps(profile crossplane.Profile) []Step {
	steps := []Step{
		{
			ID:     "relocate-cluster-scoped",
			Name:   "Move manifest into per-cluster layout",
			Action: "fs:rename",
			If:     "${{ parameters.pushToGit and parameters.manifestLayout === 'cluster-scoped' }}",
			Input: map[string]any{
				"files": []any{map[string]any{
					"from": "manifest.yaml",
					"to":   "clusters/${{ parameters.targetClusters }}/" + kindToken + "/${{ parameters.xrName }}.yaml",
				}},
			},
		},
	}
	if profile.NeedsNamespace {
		steps = append(steps, Step{
			ID:     "relocate-namespace-scoped",
			Name:   "Move manifest into per-namespace layout",
			Action: "fs:rename",
			If:     "${{ parameters.pushToGit and parameters.manifestLayout === 'namespace-scoped' }}",
			Input: map[string]any{
				"files": []any{map[string]any{
					"from": "manifest.yaml",
					"to":   "namespaces/${{ parameters.xrNamespace }}/" + kindToken + "/${{ parameters.xrName }}.yaml",
				}},
			},
		})
	}
	return append(steps, Step{
		ID:     "relocate-custom",
		Name:   "Move manifest to the custom path",
		Action: "fs:rename",
		If:     "${{ parameters.pushToGit and parameters.manifestLayout === 'custom' }}",
		Input: map[string]any{
			"files": []any{map[string]any{
				"from": "manifest.yaml",
				"to":   "${{ parameters.basePath }}/${{ parameters.xrName }}.yaml",
			}},
		},
	})
}

// changeRequestStep opens the pull/merge request. Repository and branch
// are templated from form inputs when repository selection is allowed,
// otherwise hard-coded from static configuration.
func (s *Synthesizer) changeRequestStep() Step {
	input := map[string]any{
		"title":       "Provision " + kindToken + " ${{ parameters.xrName }}",
		"description": "Rendered " + kindToken + " manifest generated from the provisioning form",
	}

	if s.cfg.AllowRepositorySelection {
		input["repoUrl"] = "${{ parameters.repoUrl }}"
		input["branchName"] = "${{ parameters.targetBranch }}"
	} else {
		input["repoUrl"] = s.cfg.RepositoryURL
		input["branchName"] = s.cfg.TargetBranch
	}

	return Step{
		ID:     "open-change-request",
		Name:   "Open change request",
		Action: changeRequestAction(s.cfg.PublishTarget),
		If:     "${{ parameters.pushToGit }}",
		Input:  input,
	}
}

func changeRequestAction(target config.Provider) string {
	switch target {
	case config.ProviderGitHub:
		return "publish:github:pull-request"
	case config.ProviderGitLab:
		return "publish:gitlab:merge-request"
	case config.ProviderBitbucketServer:
		return "publish:bitbucketServer:pull-request"
	case config.ProviderBitbucketCloud:
		return "publish:bitbucketCloud:pull-request"
	default:
		return ""
	}
}

// substituteTokens rewrites the placeholder tokens over the marshaled
// step list. Working on the serialized form keeps the substitution a
// single textual pass regardless of where tokens appear.
func substituteTokens(steps []Step, apiVersion, kind string) ([]Step, error) {
	data, err := yaml.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal steps: %w", err)
	}

	out := strings.ReplaceAll(string(data), apiVersionToken, apiVersion)
	out = strings.ReplaceAll(out, kindToken, kind)

	var resolved []Step
	if err := yaml.Unmarshal([]byte(out), &resolved); err != nil {
		return nil, fmt.Errorf("failed to decode substituted steps: %w", err)
	}
	return resolved, nil
}
