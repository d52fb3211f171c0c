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

package crossplane

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/platformkit/crossplane-ingestor/internal/pkg/config"
	"github.com/platformkit/crossplane-ingestor/internal/pkg/kubernetes"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// definitionRevisions are the API revisions definitions are fetched at.
// Clusters running older control planes only serve the first.
var definitionRevisions = []schema.GroupVersionResource{
	{Group: "apiextensions.crossplane.io", Version: "v1", Resource: "compositeresourcedefinitions"},
	{Group: "apiextensions.crossplane.io", Version: "v2", Resource: "compositeresourcedefinitions"},
}

var compositionsGVR = schema.GroupVersionResource{
	Group: "apiextensions.crossplane.io", Version: "v1", Resource: "compositions",
}

var generatedCRDsGVR = schema.GroupVersionResource{
	Group: "apiextensions.k8s.io", Version: "v1", Resource: "customresourcedefinitions",
}

// Snapshot is the merged result of one aggregation pass. It is rebuilt
// from scratch every refresh; nothing in it survives between passes.
type Snapshot struct {
	// Definitions is sorted by name and contains exactly one entry per
	// definition name across all clusters.
	Definitions []*Definition

	// Compositions is sorted by name, first-seen deduplicated.
	Compositions []*Composition

	// Schemas indexes companion schemas by definition name.
	Schemas map[string]*CompanionSchema
}

// Aggregator fetches definitions, compositions and companion schemas
// from every reachable cluster and merges them by name. All
// dependencies are injected; the aggregator holds no ambient state.
type Aggregator struct {
	clusters []kubernetes.Cluster
	cfg      *config.Config
	log      *zap.SugaredLogger
}

func NewAggregator(clusters []kubernetes.Cluster, cfg *config.Config, log *zap.SugaredLogger) (*Aggregator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("log cannot be nil")
	}
	return &Aggregator{clusters: clusters, cfg: cfg, log: log}, nil
}

// Aggregate runs one pass over all clusters. A fetch failure on one
// cluster is logged and that cluster skipped; zero reachable clusters
// yields an empty snapshot, not an error.
func (a *Aggregator) Aggregate(ctx context.Context) *Snapshot {
	defs := map[string]*Definition{}
	schemas := map[string]*CompanionSchema{}
	comps := map[string]*Composition{}

	for _, cluster := range a.clusters {
		a.aggregateCluster(ctx, cluster, defs, schemas, comps)
	}

	snap := &Snapshot{Schemas: schemas}
	for _, d := range defs {
		snap.Definitions = append(snap.Definitions, d)
	}
	sort.Slice(snap.Definitions, func(i, j int) bool { return snap.Definitions[i].Name < snap.Definitions[j].Name })

	for _, c := range comps {
		snap.Compositions = append(snap.Compositions, c)
	}
	sort.Slice(snap.Compositions, func(i, j int) bool { return snap.Compositions[i].Name < snap.Compositions[j].Name })

	return snap
}

func (a *Aggregator) aggregateCluster(
	ctx context.Context,
	cluster kubernetes.Cluster,
	defs map[string]*Definition,
	schemas map[string]*CompanionSchema,
	comps map[string]*Composition,
) {
	l := a.log.With("cluster", cluster.Name())

	// The companion schema objects are fetched once per cluster and the
	// index shared across every definition on it. N definitions must not
	// trigger N schema fetches.
	crdIndex := map[string]*unstructured.Unstructured{}
	crdList, err := cluster.List(ctx, generatedCRDsGVR)
	if err != nil {
		l.Warnw("Failed to list companion schema objects, continuing with embedded schemas", zap.Error(err))
	} else {
		for i := range crdList.Items {
			crdIndex[crdList.Items[i].GetName()] = &crdList.Items[i]
		}
	}

	listed := false
	seen := map[string]bool{}
	for _, gvr := range definitionRevisions {
		list, err := cluster.List(ctx, gvr)
		if err != nil {
			l.Warnw("Failed to list definitions", "revision", gvr.GroupVersion().String(), zap.Error(err))
			continue
		}
		listed = true

		for i := range list.Items {
			u := &list.Items[i]
			if seen[u.GetName()] {
				continue
			}
			seen[u.GetName()] = true
			a.ingestDefinition(l, cluster, u, crdIndex, defs, schemas)
		}
	}
	if !listed {
		l.Warn("Skipping cluster, no definition revision could be listed")
		return
	}

	compList, err := cluster.List(ctx, compositionsGVR)
	if err != nil {
		l.Warnw("Failed to list compositions", zap.Error(err))
		return
	}
	for i := range compList.Items {
		c, err := ParseComposition(&compList.Items[i])
		if err != nil {
			l.Debugw("Skipping composition", zap.Error(err))
			continue
		}
		if _, ok := comps[c.Name]; !ok {
			comps[c.Name] = c
		}
	}
}

func (a *Aggregator) ingestDefinition(
	l *zap.SugaredLogger,
	cluster kubernetes.Cluster,
	u *unstructured.Unstructured,
	crdIndex map[string]*unstructured.Unstructured,
	defs map[string]*Definition,
	schemas map[string]*CompanionSchema,
) {
	d, err := ParseDefinition(u)
	if err != nil {
		l.Warnw("Skipping malformed definition", zap.Error(err))
		return
	}

	annotations := u.GetAnnotations()
	if annotations[a.cfg.ExcludeAnnotation()] == "true" {
		l.Debugw("Skipping excluded definition", "definition", d.Name)
		return
	}
	if !a.cfg.IngestAllDefinitions && annotations[a.cfg.IngestAnnotation()] != "true" {
		l.Debugw("Skipping definition without ingestion marker", "definition", d.Name)
		return
	}

	profile := ProfileFor(Classify(d))
	if profile.HasClaimFields && d.ClaimKind == "" {
		l.Debugw("Skipping claim-mediated definition without claim names", "definition", d.Name)
		return
	}

	if d.StatusCompositeRef != nil && d.DerivedCompositeRef != nil && *d.StatusCompositeRef != *d.DerivedCompositeRef {
		l.Debugw("Composite type candidates disagree, preferring status",
			"definition", d.Name,
			"status", d.StatusCompositeRef,
			"derived", d.DerivedCompositeRef)
	}
	if d.EffectiveCompositeType() == nil {
		l.Infow("Definition has no resolvable composite type, composition matching disabled", "definition", d.Name)
	}

	existing, ok := defs[d.Name]
	if !ok {
		d.Clusters = []ClusterRef{{Name: cluster.Name(), Endpoint: cluster.Endpoint()}}
		defs[d.Name] = d
		attachCompanionSchema(l, d.Name, crdIndex, schemas)
		return
	}

	// Same name on another cluster: append membership only. Schema
	// content stays first-seen; divergence is logged, not resolved. A
	// companion schema the first-seen cluster lacked is still attached,
	// filling an absence never overwrites anything.
	if !existing.ObservedOn(cluster.Name()) {
		existing.Clusters = append(existing.Clusters, ClusterRef{Name: cluster.Name(), Endpoint: cluster.Endpoint()})
	}
	attachCompanionSchema(l, d.Name, crdIndex, schemas)
	if !sameVersionNames(existing, d) {
		l.Warnw("Definition schema differs across clusters, keeping first-seen schema",
			"definition", d.Name, "cluster", cluster.Name())
	}
}

func attachCompanionSchema(
	l *zap.SugaredLogger,
	name string,
	crdIndex map[string]*unstructured.Unstructured,
	schemas map[string]*CompanionSchema,
) {
	if _, attached := schemas[name]; attached {
		return
	}
	raw, found := crdIndex[name]
	if !found {
		return
	}
	cs, err := ParseCompanionSchema(raw)
	if err != nil {
		l.Debugw("Ignoring unusable companion schema", "definition", name, zap.Error(err))
		return
	}
	schemas[name] = cs
}

func sameVersionNames(a, b *Definition) bool {
	if len(a.Versions) != len(b.Versions) {
		return false
	}
	for i := range a.Versions {
		if a.Versions[i].Name != b.Versions[i].Name {
			return false
		}
	}
	return true
}
