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

package main

import (
	"fmt"
	"os"

	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/platformkit/crossplane-ingestor/internal/catalog"
	"github.com/platformkit/crossplane-ingestor/internal/controllers/ingestor"
	"github.com/platformkit/crossplane-ingestor/internal/pkg/config"
	"github.com/platformkit/crossplane-ingestor/internal/pkg/kubernetes"
	cilog "github.com/platformkit/crossplane-ingestor/internal/pkg/log"

	ctrl "sigs.k8s.io/controller-runtime"
	clientconfig "sigs.k8s.io/controller-runtime/pkg/client/config"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	ctrlruntimelog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
)

type flags struct {
	configFile           string
	kubeconfig           string
	enableLeaderElection bool
	healthProbeAddress   string
	metricsAddress       string
}

func main() {
	var f flags
	logFlags := cilog.NewDefaultOptions()
	logFlags.AddPFlags(pflag.CommandLine)

	pflag.StringVar(&f.configFile, "config", "", "Path to the ingestor configuration file")
	pflag.StringVar(&f.kubeconfig, "source-kubeconfig", "", "Kubeconfig whose contexts are the source clusters")
	pflag.BoolVar(&f.enableLeaderElection, "leader-elect", true, "Enable leader election for controller manager.")
	pflag.StringVar(&f.healthProbeAddress, "health-probe-address", "127.0.0.1:8085", "The address on which the liveness check on /healthz and readiness check on /readyz will be available")
	pflag.StringVar(&f.metricsAddress, "metrics-address", "127.0.0.1:8080", "The address on which Prometheus metrics will be available under /metrics")

	pflag.Parse()

	if err := logFlags.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rawLog := cilog.New(logFlags)
	l := rawLog.Sugar()
	ctrlruntimelog.SetLogger(zapr.NewLogger(rawLog.WithOptions(zap.AddCallerSkip(1))))

	cfg, err := config.Load(f.configFile)
	if err != nil {
		l.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		l.Fatalf("Invalid configuration: %v", err)
	}

	var clusters []kubernetes.Cluster
	if f.kubeconfig != "" {
		clusters, err = kubernetes.ClustersFromKubeconfig(f.kubeconfig, cfg.AllowedClusters, l)
		if err != nil {
			l.Fatalf("Failed to build cluster clients: %v", err)
		}
	}
	if len(clusters) == 0 {
		l.Warn("No source clusters reachable, every pass will publish an empty entity set")
	}

	var publisher catalog.Publisher
	if cfg.CatalogEndpoint != "" {
		publisher = catalog.NewHTTPPublisher(cfg.CatalogEndpoint, l)
	} else {
		l.Info("No catalog endpoint configured, running in dry-run mode")
		publisher = catalog.NewMemoryPublisher()
	}

	options := manager.Options{
		LeaderElection:         f.enableLeaderElection,
		LeaderElectionID:       "crossplane-ingestor",
		HealthProbeBindAddress: f.healthProbeAddress,
		Metrics: metricsserver.Options{
			BindAddress: f.metricsAddress,
		},
	}

	mgr, err := manager.New(clientconfig.GetConfigOrDie(), options)
	if err != nil {
		l.Fatalf("Failed to create manager: %v", err)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		l.Fatalf("Failed to set up health check: %v", err)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		l.Fatalf("Failed to set up ready check: %v", err)
	}

	err = ingestor.Add(mgr, &ingestor.ControllerConfig{
		Log:       rawLog.Sugar().Named("ingestor"),
		Config:    cfg,
		Clusters:  clusters,
		Publisher: publisher,
	})
	if err != nil {
		l.Fatalf("Failed to add ingestor controller: %v", err)
	}

	l.Infof("Starting manager, with refresh interval %s", cfg.RefreshInterval.Duration)

	if err = mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		l.Fatalf("Failed to start manager: %v", err)
	}
}
