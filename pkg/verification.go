package pkg

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/featurecat/go/featurecat/pkg/catalog"
	"github.com/provide-io/featurecat/go/featurecat/pkg/loader"
)

// VerifyReport collects the findings of VerifyCatalog. Errors make the
// catalog unusable; warnings flag content that decodes but likely misbehaves.
type VerifyReport struct {
	Loaded   *loader.Loaded
	Errors   []string
	Warnings []string
}

// OK reports whether the catalog passed verification
func (r *VerifyReport) OK() bool {
	return len(r.Errors) == 0
}

// VerifyCatalogWithLogger decodes a catalog file and lints its contents
func VerifyCatalogWithLogger(path string, logger hclog.Logger) *VerifyReport {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	report := &VerifyReport{}

	logger.Info("Verifying catalog", "path", path)

	loaded, err := loader.LoadFile(path, logger)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Load failed: %v", err))
		logger.Error("✗ Catalog verification failed", "error", err)
		return report
	}
	report.Loaded = loaded
	logger.Info("✓ Catalog decoded",
		"editions", loaded.Catalog.EditionCount(),
		"features", loaded.Catalog.FeatureCount(),
	)

	if loaded.Trailing > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d trailing bytes after feature table", loaded.Trailing))
	}

	type selector struct {
		locale    string
		test, dev bool
	}
	seen := make(map[selector]string)
	for i, e := range loaded.Catalog.Editions() {
		key := selector{e.Locale, e.IsTest, e.IsDevelopment}
		if first, ok := seen[key]; ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"edition %d (%s) is shadowed by %s for locale=%s test=%t development=%t",
				i, e.Name, first, e.Locale, e.IsTest, e.IsDevelopment))
		} else {
			seen[key] = e.Name
		}
		if e.Season >= catalog.CodeBase {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"edition %d (%s) season %d overlaps the next generation", i, e.Name, e.Season))
		}
	}

	for _, f := range loaded.Catalog.Features() {
		report.Warnings = append(report.Warnings, lintFeature(f)...)
	}

	for _, w := range report.Warnings {
		logger.Warn("  Verification warning", "details", w)
	}
	logger.Info("✓ Catalog verification passed", "warnings", len(report.Warnings))
	return report
}

// VerifyCatalog verifies a catalog file without logging
func VerifyCatalog(path string) *VerifyReport {
	return VerifyCatalogWithLogger(path, nil)
}

func lintFeature(f catalog.Feature) []string {
	var out []string
	id := fmt.Sprintf("feature 0x%08x", f.Hash)

	if f.DefaultToken != "" {
		if _, season, _, ok := catalog.ParseVersion(f.DefaultToken); !ok {
			out = append(out, fmt.Sprintf("%s default %q is not G<n>S<n>; feature is off by default", id, f.DefaultToken))
		} else if season >= catalog.CodeBase {
			out = append(out, fmt.Sprintf("%s default %q season overlaps the next generation", id, f.DefaultToken))
		}
	}
	for _, tok := range []struct{ kind, value string }{
		{"enable", f.EnableToken},
		{"disable", f.DisableToken},
	} {
		if tok.value == "" {
			continue
		}
		_, season, rest, ok := catalog.ParseVersion(tok.value)
		if !ok || len(rest) < 2 || rest[0] != '@' {
			out = append(out, fmt.Sprintf("%s %s %q is not G<n>S<n>@<locale> and never matches", id, tok.kind, tok.value))
			continue
		}
		if season >= catalog.CodeBase {
			out = append(out, fmt.Sprintf("%s %s %q season overlaps the next generation", id, tok.kind, tok.value))
		}
	}
	return out
}
