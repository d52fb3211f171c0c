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

package ingestor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	kerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/platformkit/crossplane-ingestor/internal/apidoc"
	"github.com/platformkit/crossplane-ingestor/internal/catalog"
	"github.com/platformkit/crossplane-ingestor/internal/crossplane"
	"github.com/platformkit/crossplane-ingestor/internal/forms"
	"github.com/platformkit/crossplane-ingestor/internal/pkg/config"
	"github.com/platformkit/crossplane-ingestor/internal/pkg/kubernetes"
	"github.com/platformkit/crossplane-ingestor/internal/workflow"
)

// Runner executes one refresh pass: aggregate, classify, match,
// compile, synthesize, publish. It holds no mutable state between
// passes; every pass rebuilds the world from the source clusters.
type Runner struct {
	aggregator *crossplane.Aggregator
	compiler   *forms.Compiler
	workflows  *workflow.Synthesizer
	publisher  catalog.Publisher
	cfg        *config.Config
	log        *zap.SugaredLogger
}

func NewRunner(clusters []kubernetes.Cluster, cfg *config.Config, publisher catalog.Publisher, log *zap.SugaredLogger) (*Runner, error) {
	if publisher == nil {
		return nil, fmt.Errorf("publisher cannot be nil")
	}

	aggregator, err := crossplane.NewAggregator(clusters, cfg, log)
	if err != nil {
		return nil, err
	}

	return &Runner{
		aggregator: aggregator,
		compiler:   forms.NewCompiler(cfg),
		workflows:  workflow.NewSynthesizer(cfg),
		publisher:  publisher,
		cfg:        cfg,
		log:        log,
	}, nil
}

// Refresh runs one full pass. Per-definition failures are collected
// and reported but never abort the pass; publication always happens,
// with an empty set when nothing was ingested.
func (r *Runner) Refresh(ctx context.Context) error {
	r.log.Info("Starting refresh pass")

	snap := r.aggregator.Aggregate(ctx)
	crossplane.MatchCompositions(snap.Definitions, snap.Compositions)

	var errs []error
	entities := make([]catalog.Entity, 0, len(snap.Definitions)*2)

	for _, def := range snap.Definitions {
		// The catalog rejects names past the limit; a definition name at
		// the limit is still publishable because the entity suffix is
		// absorbed by trimming, but longer names have no usable identity.
		if len(def.Name) > catalog.MaxEntityNameLength {
			r.log.Warnw("Dropping definition, name exceeds catalog limit",
				"definition", def.Name, "limit", catalog.MaxEntityNameLength)
			continue
		}

		defEntities, err := r.entitiesFor(def, snap.Schemas[def.Name])
		if err != nil {
			errs = append(errs, fmt.Errorf("definition %q: %w", def.Name, err))
		}
		entities = append(entities, defEntities...)
	}

	entities = catalog.FilterPublishable(entities, r.log)

	if err := r.publisher.Replace(ctx, entities); err != nil {
		errs = append(errs, fmt.Errorf("failed to publish entity set: %w", err))
	}

	r.log.Infow("Refresh pass complete",
		"definitions", len(snap.Definitions),
		"compositions", len(snap.Compositions),
		"entities", len(entities))

	return kerrors.NewAggregate(errs)
}

// entitiesFor generates the template/API entity pair for every served
// version of one definition. A failing version is skipped; the
// remaining versions still publish.
func (r *Runner) entitiesFor(def *crossplane.Definition, companion *crossplane.CompanionSchema) ([]catalog.Entity, error) {
	profile := crossplane.ProfileFor(crossplane.Classify(def))

	var errs []error
	var entities []catalog.Entity

	for _, v := range def.Versions {
		if !v.Served {
			continue
		}

		schema := def.SchemaFor(v.Name, companion)
		groups := r.compiler.Compile(def, schema, profile)

		steps, err := r.workflows.Synthesize(def, v.Name, profile)
		if err != nil {
			errs = append(errs, fmt.Errorf("version %q: %w", v.Name, err))
			continue
		}

		entities = append(entities, catalog.NewTemplate(def, v.Name, r.cfg.EntityOwner, groups, steps))

		doc := apidoc.Synthesize(def, v.Name, schema, profile)
		api, err := catalog.NewAPI(def, v.Name, r.cfg.EntityOwner, doc)
		if err != nil {
			errs = append(errs, fmt.Errorf("version %q: %w", v.Name, err))
			continue
		}
		entities = append(entities, api)
	}

	return entities, kerrors.NewAggregate(errs)
}
