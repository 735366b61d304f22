// Package pkg offers one-call entry points over the catalog, resolver and
// loader packages.
package pkg

import (
	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/featurecat/go/featurecat/pkg/loader"
	"github.com/provide-io/featurecat/go/featurecat/pkg/manifest"
	"github.com/provide-io/featurecat/go/featurecat/pkg/resolver"
)

// OpenResolver loads a catalog file and returns a resolver serving it
func OpenResolver(path string, logger hclog.Logger) (*resolver.Resolver, *loader.Loaded, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	loaded, err := loader.LoadFile(path, logger.Named("loader"))
	if err != nil {
		return nil, nil, err
	}
	return resolver.New(loaded.Catalog, resolver.WithLogger(logger.Named("resolver"))), loaded, nil
}

// CompileManifest compiles a YAML manifest into a catalog file
func CompileManifest(manifestPath, outputPath string, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	cat, err := m.Compile()
	if err != nil {
		return err
	}
	logger.Debug("Compiled manifest",
		"manifest", manifestPath,
		"editions", cat.EditionCount(),
		"features", cat.FeatureCount(),
	)
	return loader.WriteFile(outputPath, cat, logger)
}
