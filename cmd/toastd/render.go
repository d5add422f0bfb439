package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/toastd/internal/config"
	"github.com/vango-dev/toastd/pkg/bootstrap"
	"github.com/vango-dev/toastd/pkg/loop"
	"github.com/vango-dev/toastd/pkg/render"
	"github.com/vango-dev/toastd/pkg/server"
	"github.com/vango-dev/toastd/pkg/toast"
)

// renderOptions are the inputs of a simulated page load.
type renderOptions struct {
	template string
	url      string
	advance  time.Duration
	hids     bool
}

func renderCmd(flags *globalFlags) *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a page load without a browser",
		Long: `Parse the page template, load it at the given URL on simulated
time, and print the resulting HTML.

Use --advance to move the clock forward before printing; toasts whose
lifetime has elapsed are gone from the output.

Examples:
  toastd render --url "/?msg=Saved"
  toastd render --url "/?error=Denied" --advance 3s
  toastd render --template page.html --url "/?msg=a&error=b"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "Page template (default from toastd.json)")
	cmd.Flags().StringVarP(&opts.url, "url", "u", "/", "Page URL including the query string")
	cmd.Flags().DurationVarP(&opts.advance, "advance", "a", 0, "Simulated time to elapse before printing")
	cmd.Flags().BoolVar(&opts.hids, "hids", false, "Include data-hid attributes")

	return cmd
}

// runRender loads a page on a virtual clock and writes its HTML to w.
func runRender(ctx context.Context, cfg *config.Config, opts renderOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	path := opts.template
	if path == "" {
		path = cfg.TemplatePath()
	}
	page, err := server.LoadPage(path)
	if err != nil {
		return err
	}
	doc, err := page.Document()
	if err != nil {
		return err
	}

	u, err := url.Parse(opts.url)
	if err != nil {
		return fmt.Errorf("invalid --url %q: %w", opts.url, err)
	}
	doc.SetLocation(u)

	logger := newLogger(cfg, io.Discard)
	clock := loop.NewVirtual()
	notifier := toast.New(doc, clock,
		toast.WithConfig(cfg.ToastConfig()),
		toast.WithLogger(logger.With("component", "toast")),
	)
	bootstrap.New(doc, notifier, bootstrap.WithLogger(logger.With("component", "bootstrap"))).Attach()

	doc.FireContentLoaded(ctx)
	clock.Advance(opts.advance)

	html, err := render.NewRenderer(render.RendererConfig{HydrationIDs: opts.hids}).RenderDocument(doc)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, html)
	return err
}
