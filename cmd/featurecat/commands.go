package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/provide-io/featurecat/go/featurecat/pkg"
	"github.com/provide-io/featurecat/go/featurecat/pkg/catalog"
	"github.com/provide-io/featurecat/go/featurecat/pkg/loader"
	"github.com/provide-io/featurecat/go/featurecat/pkg/manifest"
	"github.com/provide-io/featurecat/go/featurecat/pkg/resolver"
	"github.com/spf13/cobra"
)

func newInfoCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "info <catalog>",
		Short: "Show a catalog summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loader.LoadFile(args[0], c.logger(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "📦 %s\n", loaded.Path)
			fmt.Fprintf(out, "   codec:       %s\n", loaded.Codec)
			fmt.Fprintf(out, "   size:        %d bytes (%d decoded)\n", loaded.FileSize, loaded.RawSize)
			fmt.Fprintf(out, "   fingerprint: %s\n", loader.FormatFingerprint(loaded.Fingerprint))
			fmt.Fprintf(out, "   editions:    %d\n", loaded.Catalog.EditionCount())
			fmt.Fprintf(out, "   features:    %d\n", loaded.Catalog.FeatureCount())
			if loaded.Trailing > 0 {
				fmt.Fprintf(out, "   trailing:    %d bytes\n", loaded.Trailing)
			}
			if loaded.Catalog.EditionCount() > 0 {
				fmt.Fprintln(out)
				printEditions(out, loaded.Catalog.Editions())
			}
			return nil
		},
	}
}

func newEditionsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "editions <catalog>",
		Short: "List the editions of a catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loader.LoadFile(args[0], c.logger(cmd))
			if err != nil {
				return err
			}
			printEditions(cmd.OutOrStdout(), loaded.Catalog.Editions())
			return nil
		},
	}
}

func printEditions(w io.Writer, editions []catalog.Edition) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tLOCALE\tVERSION\tSUBSEASON\tTEST\tDEV")
	for i, e := range editions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%t\t%t\n",
			i, e.Name, e.Locale, catalog.FormatCode(e.Code()), e.Subseason, e.IsTest, e.IsDevelopment)
	}
	tw.Flush()
}

func newFeaturesCmd(c *cli) *cobra.Command {
	var (
		format string
		names  []string
	)
	cmd := &cobra.Command{
		Use:   "features <catalog>",
		Short: "Dump a catalog as a manifest",
		Long:  `Dump a catalog as a manifest. Compiled catalogs store only name hashes; pass --name to label known features.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loader.LoadFile(args[0], c.logger(cmd))
			if err != nil {
				return err
			}
			m := manifest.FromCatalog(loaded.Catalog, names...)

			switch format {
			case "yaml":
				data, err := m.Marshal()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(m)
			default:
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml, json)")
	cmd.Flags().StringSliceVarP(&names, "name", "n", nil, "Known feature names to label")
	return cmd
}

// selection holds the edition selection flags
type selection struct {
	locale     string
	test       bool
	dev        bool
	generation int
	season     int
	subseason  int
}

func (s *selection) register(cmd *cobra.Command, defaultLocale string) {
	cmd.Flags().StringVarP(&s.locale, "locale", "l", defaultLocale, "Edition locale (env FEATURECAT_LOCALE)")
	cmd.Flags().BoolVar(&s.test, "test", false, "Select a test edition")
	cmd.Flags().BoolVar(&s.dev, "dev", false, "Select a development edition")
	cmd.Flags().IntVarP(&s.generation, "generation", "g", 0, "Explicit generation (skips the edition table)")
	cmd.Flags().IntVarP(&s.season, "season", "s", 0, "Explicit season (skips the edition table)")
	cmd.Flags().IntVar(&s.subseason, "subseason", 0, "Explicit subseason")
}

func (s *selection) apply(cmd *cobra.Command, res *resolver.Resolver) error {
	if s.locale == "" {
		return errors.New("a locale is required (--locale or FEATURECAT_LOCALE)")
	}
	if cmd.Flags().Changed("generation") || cmd.Flags().Changed("season") {
		res.SelectEditionExplicit(s.locale, s.generation, s.season, s.subseason)
		return nil
	}
	return res.SelectEdition(s.locale, s.test, s.dev)
}

func newCheckCmd(c *cli) *cobra.Command {
	var (
		sel     selection
		explain bool
	)
	cmd := &cobra.Command{
		Use:   "check <catalog> <feature>...",
		Short: "Check whether features are enabled for an edition",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, _, err := pkg.OpenResolver(args[0], c.logger(cmd))
			if err != nil {
				return err
			}
			if err := sel.apply(cmd, res); err != nil {
				return err
			}
			printStates(cmd.OutOrStdout(), res, args[1:], explain)
			return nil
		},
	}
	sel.register(cmd, c.cfg.Locale)
	cmd.Flags().BoolVarP(&explain, "explain", "x", false, "Show which rule decided each feature")
	return cmd
}

func printStates(w io.Writer, res *resolver.Resolver, names []string, explain bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range names {
		d := res.Explain(name)
		state := "disabled"
		if d.Enabled {
			state = "enabled"
		}
		if !explain {
			fmt.Fprintf(tw, "%s\t%s\n", name, state)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t0x%08x\tactive=%s\tdefault=%s\n",
			name, state, d.Reason, d.Hash, catalog.FormatCode(d.ActiveCode), catalog.FormatCode(d.DefaultCode))
	}
	tw.Flush()
}

func newVerifyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <catalog>",
		Short: "Decode a catalog and report suspicious content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report := pkg.VerifyCatalogWithLogger(args[0], c.logger(cmd))
			out := cmd.OutOrStdout()
			for _, e := range report.Errors {
				fmt.Fprintf(out, "✗ %s\n", e)
			}
			for _, w := range report.Warnings {
				fmt.Fprintf(out, "⚠ %s\n", w)
			}
			if !report.OK() {
				return errors.New("catalog verification failed")
			}
			fmt.Fprintf(out, "✓ %s: %d editions, %d features, %d warnings\n",
				args[0], report.Loaded.Catalog.EditionCount(), report.Loaded.Catalog.FeatureCount(), len(report.Warnings))
			return nil
		},
	}
}

func newCompileCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compile <manifest.yaml>",
		Short: "Compile a YAML manifest into a catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pkg.CompileManifest(args[0], output, c.logger(cmd)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output catalog path, ending in .compiled[.gz|.bz2] (required)")
	if err := cmd.MarkFlagRequired("output"); err != nil {
		panic(err)
	}
	return cmd
}

func newWatchCmd(c *cli) *cobra.Command {
	var sel selection
	cmd := &cobra.Command{
		Use:   "watch <catalog> <feature>...",
		Short: "Re-check features whenever the catalog file changes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := c.logger(cmd)
			res, loaded, err := pkg.OpenResolver(args[0], logger)
			if err != nil {
				return err
			}
			if err := sel.apply(cmd, res); err != nil {
				return err
			}

			w, err := loader.NewWatcher(args[0], res, loader.WatchOptions{
				Debounce:    c.cfg.WatchDebounce,
				Logger:      logger.Named("watch"),
				Fingerprint: loaded.Fingerprint,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			printStates(out, res, args[1:], false)

			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			for ev := range w.Events() {
				if ev.Err != nil {
					fmt.Fprintf(out, "✗ reload rejected: %v\n", ev.Err)
					continue
				}
				fmt.Fprintf(out, "🔄 reloaded %s (%d features)\n", loader.FormatFingerprint(ev.Fingerprint), ev.Features)
				printStates(out, res, args[1:], false)
			}

			if err := <-done; err != nil && !errors.Is(err, ctx.Err()) {
				return err
			}
			return nil
		},
	}
	sel.register(cmd, c.cfg.Locale)
	return cmd
}
