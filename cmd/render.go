package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/prerender/internal/config"
	"github.com/conneroisu/prerender/internal/dom"
	"github.com/conneroisu/prerender/internal/expand"
	"github.com/conneroisu/prerender/internal/i18n"
	"github.com/conneroisu/prerender/internal/logging"
	"github.com/conneroisu/prerender/internal/manifest"
	"github.com/conneroisu/prerender/internal/metrics"
	"github.com/conneroisu/prerender/internal/props"
	"github.com/conneroisu/prerender/internal/session"
	"github.com/conneroisu/prerender/internal/watcher"
)

var renderCmd = &cobra.Command{
	Use:     "render <manifest> <tag>",
	Aliases: []string{"r"},
	Short:   "Render a custom element to static HTML",
	Long: `Render one component from a manifest, expanding every nested custom
element, projecting slot content, and scoping stylesheets.

Examples:
  prerender render components.yml x-card
  prerender render components.yml x-card --attr heading=Hello --attr ?open
  prerender render components.yml x-card --props '{"count": 3}'
  prerender render components.yml x-card --child '<p>Body</p>'
  prerender render components.yml x-card --tree        # Show the expanded tree
  prerender render components.yml x-card -w -o out.html # Re-render on change`,
	Args: cobra.ExactArgs(2),
	RunE: runRender,
}

var (
	renderFlags    *StandardFlags
	renderAttrs    []string
	renderChildren string
	renderWatch    bool
	renderTree     bool
	renderOutput   string
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderFlags = AddStandardFlags(renderCmd, "component")

	renderCmd.Flags().StringArrayVarP(&renderAttrs, "attr", "a", nil, "Root attribute as name=value (repeatable)")
	renderCmd.Flags().StringVarP(&renderChildren, "child", "c", "", "Markup projected into the root's slots")
	renderCmd.Flags().BoolVarP(&renderWatch, "watch", "w", false, "Re-render when the manifest, theme or catalog changes")
	renderCmd.Flags().BoolVar(&renderTree, "tree", false, "Print the expanded tree instead of HTML")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Write HTML to a file instead of stdout")
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := validateTagArgument(args[1]); err != nil {
		return err
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	base, err := renderFlags.ParseProps()
	if err != nil {
		return err
	}
	attrs, err := parseAttributes(base, renderAttrs)
	if err != nil {
		return err
	}

	r := &renderer{
		manifestPath: args[0],
		tag:          args[1],
		attrs:        attrs,
		children:     renderChildren,
		tree:         renderTree || cfg.Render.Pretty,
		outputPath:   renderOutput,
		stdout:       cmd.OutOrStdout(),
		cfg:          cfg,
		logger:       logger,
	}
	opts := append(cfg.EngineOptions(), expand.WithLogger(logger))
	if cfg.Metrics.Textfile != "" {
		r.metrics = metrics.New()
		opts = append(opts, expand.WithObserver(r.metrics))
	}
	r.engine = expand.New(opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.render(ctx); err != nil {
		if !renderWatch {
			return err
		}
		logger.Error(ctx, err, "Render failed, waiting for changes")
	}
	if !renderWatch {
		return nil
	}
	return r.watch(ctx)
}

// renderer holds everything one render needs, so a watch loop can
// repeat it with fresh files.
type renderer struct {
	manifestPath string
	tag          string
	attrs        map[string]interface{}
	children     string
	tree         bool
	outputPath   string
	stdout       io.Writer

	cfg     *config.Config
	logger  logging.Logger
	engine  *expand.Engine
	metrics *metrics.Collector
}

func (r *renderer) render(ctx context.Context) error {
	m, err := manifest.Load(r.manifestPath)
	if err != nil {
		return err
	}
	desc, ok := m.Lookup(r.tag)
	if !ok {
		return fmt.Errorf("component %q not found in %s (available: %s)",
			r.tag, r.manifestPath, strings.Join(m.Tags(), ", "))
	}

	sessCfg, err := r.sessionConfig()
	if err != nil {
		return err
	}
	sess := session.New(sessCfg)
	if err := m.Register(sess); err != nil {
		return err
	}

	var children []dom.Node
	if r.children != "" {
		if children, err = dom.DefaultParser.Parse(r.children); err != nil {
			return fmt.Errorf("parse --child markup: %w", err)
		}
	}

	host, err := r.engine.Render(ctx, desc, expand.Request{
		Attributes: props.FromMap(r.attrs),
		Children:   children,
		Session:    sess,
	})
	if err != nil {
		return err
	}

	var out string
	if r.tree {
		out = dom.Dump(host)
	} else {
		out = dom.String(host) + "\n"
	}
	if err := r.write(out); err != nil {
		return err
	}

	if r.metrics != nil {
		if err := r.metrics.WriteTextfile(r.cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func (r *renderer) write(out string) error {
	if r.outputPath == "" {
		_, err := io.WriteString(r.stdout, out)
		return err
	}
	if err := os.WriteFile(r.outputPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (r *renderer) sessionConfig() (session.Config, error) {
	var sc session.Config

	theme, err := r.cfg.LoadTheme()
	if err != nil {
		return sc, err
	}
	if theme != nil {
		sc.Theme = theme
	}

	if r.cfg.Session.I18nFile != "" {
		bundle, err := i18n.Load(r.cfg.Session.I18nFile, r.cfg.Session.Locale)
		if err != nil {
			return sc, err
		}
		sc.I18nData = bundle.Localizer(r.cfg.Session.Locale)
		sc.MessageResolver = i18n.Resolve
	}
	return sc, nil
}

// watchedFiles lists the manifest plus any configured theme and catalog.
func (r *renderer) watchedFiles() []string {
	files := []string{r.manifestPath}
	for _, f := range []string{r.cfg.Session.ThemeFile, r.cfg.Session.I18nFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

func (r *renderer) watch(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(200*time.Millisecond, r.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Stop()

	fw.AddFilter(watcher.NoBackupFilter)
	for _, f := range r.watchedFiles() {
		if err := fw.AddFile(f); err != nil {
			return fmt.Errorf("failed to watch %s: %w", f, err)
		}
	}
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		r.logger.Info(ctx, "Change detected, re-rendering", "files", len(events), "first", events[0].Path)
		return r.render(ctx)
	})

	if err := fw.Start(ctx); err != nil {
		return err
	}
	r.logger.Info(ctx, "Watching for changes", "files", fw.Files())

	<-ctx.Done()
	return nil
}
