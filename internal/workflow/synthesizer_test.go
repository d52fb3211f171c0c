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

package workflow

import (
	"fmt"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/platformkit/crossplane-ingestor/internal/crossplane"
	"github.com/platformkit/crossplane-ingestor/internal/pkg/config"
)

func testDefinition() *crossplane.Definition {
	return &crossplane.Definition{
		Name:        "xdatabases.example.org",
		Group:       "example.org",
		Kind:        "XDatabase",
		Plural:      "xdatabases",
		ClaimKind:   "Database",
		ClaimPlural: "databases",
	}
}

func stepByID(t *testing.T, steps []Step, id string) Step {
	t.Helper()
	for _, s := range steps {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("step %q not found in %v", id, steps)
	return Step{}
}

func TestSynthesizeRenderStepPerDialect(t *testing.T) {
	tests := []struct {
		name          string
		dialect       crossplane.Dialect
		wantKind      string
		wantNamespace string
	}{
		{
			name:          "legacy claim renders the claim kind",
			dialect:       crossplane.DialectLegacyClaim,
			wantKind:      "Database",
			wantNamespace: "xrNamespace",
		},
		{
			name:          "legacy cluster renders the claim kind",
			dialect:       crossplane.DialectLegacyCluster,
			wantKind:      "Database",
			wantNamespace: "xrNamespace",
		},
		{
			name:          "direct namespaced renders the composite kind",
			dialect:       crossplane.DialectDirectNamespaced,
			wantKind:      "XDatabase",
			wantNamespace: "xrNamespace",
		},
		{
			name:          "direct cluster has no namespace parameter",
			dialect:       crossplane.DialectDirectCluster,
			wantKind:      "XDatabase",
			wantNamespace: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSynthesizer(config.Default())
			steps, err := s.Synthesize(testDefinition(), "v1", crossplane.ProfileFor(tc.dialect))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			render := stepByID(t, steps, "render-manifest")
			if render.Action != "catalog:manifest-render" {
				t.Errorf("unexpected render action %q", render.Action)
			}
			if render.Input["apiVersion"] != "example.org/v1" {
				t.Errorf("expected apiVersion example.org/v1, got %v", render.Input["apiVersion"])
			}
			if render.Input["kind"] != tc.wantKind {
				t.Errorf("expected kind %q, got %v", tc.wantKind, render.Input["kind"])
			}
			if render.Input["namespaceParam"] != tc.wantNamespace {
				t.Errorf("expected namespaceParam %q, got %v", tc.wantNamespace, render.Input["namespaceParam"])
			}
		})
	}
}

func TestSynthesizeLeavesNoTokens(t *testing.T) {
	cfg := config.Default()
	cfg.PublishTarget = config.ProviderGitHub
	cfg.RepositoryURL = "https://github.com/acme/manifests"

	for _, dialect := range []crossplane.Dialect{
		crossplane.DialectLegacyClaim,
		crossplane.DialectLegacyCluster,
		crossplane.DialectDirectNamespaced,
		crossplane.DialectDirectCluster,
	} {
		t.Run(string(dialect), func(t *testing.T) {
			steps, err := NewSynthesizer(cfg).Synthesize(testDefinition(), "v1", crossplane.ProfileFor(dialect))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			data, err := yaml.Marshal(steps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Contains(string(data), "<<") {
				t.Errorf("unsubstituted tokens remain:\n%s", data)
			}
		})
	}
}

func TestSynthesizeRelocationSteps(t *testing.T) {
	steps, err := NewSynthesizer(config.Default()).Synthesize(testDefinition(), "v1", crossplane.ProfileFor(crossplane.DialectLegacyClaim))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		id     string
		layout string
	}{
		{id: "relocate-cluster-scoped", layout: "cluster-scoped"},
		{id: "relocate-namespace-scoped", layout: "namespace-scoped"},
		{id: "relocate-custom", layout: "custom"},
	}

	for _, tc := range tests {
		step := stepByID(t, steps, tc.id)
		if step.Action != "fs:rename" {
			t.Errorf("%s: unexpected action %q", tc.id, step.Action)
		}
		wantGate := fmt.Sprintf("${{ parameters.pushToGit and parameters.manifestLayout === '%s' }}", tc.layout)
		if step.If != wantGate {
			t.Errorf("%s: expected gate %q, got %q", tc.id, wantGate, step.If)
		}
	}

	// The kind token in the relocation targets resolves like everywhere
	// else.
	cluster := stepByID(t, steps, "relocate-cluster-scoped")
	files := cluster.Input["files"].([]any)
	to := files[0].(map[string]any)["to"].(string)
	if !strings.Contains(to, "/Database/") {
		t.Errorf("expected the claim kind in the target path, got %q", to)
	}
}

func TestSynthesizeClusterDialectOmitsNamespaceRelocation(t *testing.T) {
	steps, err := NewSynthesizer(config.Default()).Synthesize(testDefinition(), "v1", crossplane.ProfileFor(crossplane.DialectDirectCluster))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range steps {
		if s.ID == "relocate-namespace-scoped" {
			t.Fatalf("cluster-scoped dialects have no namespace to relocate by: %v", steps)
		}
		if strings.Contains(s.If, "xrNamespace") {
			t.Errorf("step %q references a namespace parameter the form never asks for", s.ID)
		}
		data, err := yaml.Marshal(s.Input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.ID != "render-manifest" && strings.Contains(string(data), "xrNamespace") {
			t.Errorf("step %q interpolates a namespace parameter the form never asks for", s.ID)
		}
	}
}

func TestSynthesizeChangeRequestStep(t *testing.T) {
	tests := []struct {
		name       string
		target     config.Provider
		wantAction string
	}{
		{name: "github", target: config.ProviderGitHub, wantAction: "publish:github:pull-request"},
		{name: "gitlab", target: config.ProviderGitLab, wantAction: "publish:gitlab:merge-request"},
		{name: "bitbucket server", target: config.ProviderBitbucketServer, wantAction: "publish:bitbucketServer:pull-request"},
		{name: "bitbucket cloud", target: config.ProviderBitbucketCloud, wantAction: "publish:bitbucketCloud:pull-request"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.PublishTarget = tc.target
			cfg.RepositoryURL = "https://example.com/acme/manifests"

			steps, err := NewSynthesizer(cfg).Synthesize(testDefinition(), "v1", crossplane.ProfileFor(crossplane.DialectLegacyClaim))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			cr := stepByID(t, steps, "open-change-request")
			if cr.Action != tc.wantAction {
				t.Errorf("expected action %q, got %q", tc.wantAction, cr.Action)
			}
			if cr.If != "${{ parameters.pushToGit }}" {
				t.Errorf("expected the publish gate, got %q", cr.If)
			}
		})
	}
}

func TestSynthesizeFileOnlyOmitsChangeRequest(t *testing.T) {
	steps, err := NewSynthesizer(config.Default()).Synthesize(testDefinition(), "v1", crossplane.ProfileFor(crossplane.DialectLegacyClaim))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range steps {
		if s.ID == "open-change-request" {
			t.Errorf("file-only targets must not open change requests: %v", steps)
		}
	}
}

func TestSynthesizeRepositoryWiring(t *testing.T) {
	fixed := config.Default()
	fixed.PublishTarget = config.ProviderGitLab
	fixed.RepositoryURL = "https://gitlab.com/acme/manifests"
	fixed.TargetBranch = "release"

	steps, err := NewSynthesizer(fixed).Synthesize(testDefinition(), "v1", crossplane.ProfileFor(crossplane.DialectLegacyClaim))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cr := stepByID(t, steps, "open-change-request")
	if cr.Input["repoUrl"] != "https://gitlab.com/acme/manifests" {
		t.Errorf("expected the fixed repository URL, got %v", cr.Input["repoUrl"])
	}
	if cr.Input["branchName"] != "release" {
		t.Errorf("expected the fixed branch, got %v", cr.Input["branchName"])
	}

	selectable := config.Default()
	selectable.PublishTarget = config.ProviderGitLab
	selectable.AllowRepositorySelection = true

	steps, err = NewSynthesizer(selectable).Synthesize(testDefinition(), "v1", crossplane.ProfileFor(crossplane.DialectLegacyClaim))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cr = stepByID(t, steps, "open-change-request")
	if cr.Input["repoUrl"] != "${{ parameters.repoUrl }}" {
		t.Errorf("expected the templated repository URL, got %v", cr.Input["repoUrl"])
	}
	if cr.Input["branchName"] != "${{ parameters.targetBranch }}" {
		t.Errorf("expected the templated branch, got %v", cr.Input["branchName"])
	}
}

func TestSynthesizeStepOrder(t *testing.T) {
	cfg := config.Default()
	cfg.PublishTarget = config.ProviderGitHub
	cfg.RepositoryURL = "https://github.com/acme/manifests"

	steps, err := NewSynthesizer(cfg).Synthesize(testDefinition(), "v1", crossplane.ProfileFor(crossplane.DialectDirectCluster))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{
		"render-manifest",
		"relocate-cluster-scoped",
		"relocate-custom",
		"open-change-request",
	}
	if len(steps) != len(expected) {
		t.Fatalf("expected %d steps, got %d", len(expected), len(steps))
	}
	for i, id := range expected {
		if steps[i].ID != id {
			t.Errorf("step %d: expected %q, got %q", i, id, steps[i].ID)
		}
	}
}
