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
	"time"

	"go.uber.org/zap"

	"sigs.k8s.io/controller-runtime/pkg/manager"

	"github.com/platformkit/crossplane-ingestor/internal/catalog"
	"github.com/platformkit/crossplane-ingestor/internal/pkg/config"
	"github.com/platformkit/crossplane-ingestor/internal/pkg/kubernetes"
)

const controllerName = "IngestorController"

// ControllerConfig holds the configuration for the ingestor controller.
type ControllerConfig struct {
	Log *zap.SugaredLogger

	// Config is the ingestor's read-only configuration surface.
	Config *config.Config

	// Clusters are the reachable source clusters. May be empty; the
	// refresh then publishes an empty entity set.
	Clusters []kubernetes.Cluster

	// Publisher receives the full-replacement entity set after every
	// pass.
	Publisher catalog.Publisher
}

func (c *ControllerConfig) validate() error {
	if c.Log == nil {
		return fmt.Errorf("log cannot be nil")
	}
	if c.Config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if c.Publisher == nil {
		return fmt.Errorf("publisher cannot be nil")
	}
	return c.Config.Validate()
}

// Add registers the periodic refresh with the manager. The manager's
// run loop owns scheduling; a pass is never started while the previous
// one is still in flight because the loop is strictly sequential.
func Add(mgr manager.Manager, cfg *ControllerConfig) error {
	if cfg == nil {
		return fmt.Errorf("failed to instantiate controller: config is nil")
	}
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("failed to instantiate controller: %w", err)
	}

	runner, err := NewRunner(cfg.Clusters, cfg.Config, cfg.Publisher, cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to instantiate controller: %w", err)
	}

	interval := cfg.Config.RefreshInterval.Duration
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return mgr.Add(&periodicRunnable{
		runner:   runner,
		interval: interval,
		log:      cfg.Log.Named(controllerName),
	})
}

type periodicRunnable struct {
	runner   *Runner
	interval time.Duration
	log      *zap.SugaredLogger
}

// NeedLeaderElection makes the refresh run only on the elected leader,
// so replicated deployments do not publish concurrently.
func (p *periodicRunnable) NeedLeaderElection() bool { return true }

func (p *periodicRunnable) Start(ctx context.Context) error {
	p.log.Infow("Starting refresh loop", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// First pass immediately, then on every tick.
	p.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			p.log.Info("Stopping refresh loop")
			return nil
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *periodicRunnable) runOnce(ctx context.Context) {
	if err := p.runner.Refresh(ctx); err != nil {
		p.log.Errorw("Refresh pass failed", zap.Error(err))
	}
}
