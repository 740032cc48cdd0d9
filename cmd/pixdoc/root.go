package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/config"
	"github.com/gogpu/pixdoc/graph"
	"github.com/gogpu/pixdoc/render"
	"github.com/gogpu/pixdoc/session"
)

// cli holds state shared by the commands.
type cli struct {
	verbose    bool
	configPath string

	cfg    config.Config
	logger *charmlog.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "pixdoc",
		Short:         "pixdoc edits layered pixel documents from scripts",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML configuration file")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.versionCommand())
	return root
}

// setup loads the configuration and installs the logger. charm's logger
// is a slog.Handler, so the library logs through it as well.
func (c *cli) setup(w io.Writer) error {
	cfg := config.Default()
	if c.configPath != "" {
		var err error
		if cfg, err = config.Load(c.configPath); err != nil {
			return err
		}
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if c.verbose {
		level = slog.LevelDebug
	}
	c.cfg = cfg
	c.logger = newLogger(w, charmlog.Level(level))
	pixdoc.SetLogger(slog.New(c.logger))
	return nil
}

func newLogger(w io.Writer, level charmlog.Level) *charmlog.Logger {
	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// open starts a session for script and applies its steps.
func (c *cli) open(ctx context.Context, path string) (*session.Session, error) {
	script, err := LoadScript(path)
	if err != nil {
		return nil, err
	}
	cfg := c.cfg
	if script.Document.Width > 0 {
		cfg.Document.Width = script.Document.Width
	}
	if script.Document.Height > 0 {
		cfg.Document.Height = script.Document.Height
	}
	if script.Document.ChunkSize > 0 {
		cfg.ChunkSize = script.Document.ChunkSize
	}
	s, err := session.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := newRunner(s, script.dir).Run(ctx, script.Steps); err != nil {
		s.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (c *cli) runCommand() *cobra.Command {
	var (
		out       string
		thumbnail int
	)
	cmd := &cobra.Command{
		Use:   "run <script.toml>",
		Short: "Apply an edit script and export the document as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			start := time.Now()
			s, err := c.open(ctx, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			var img *image.RGBA
			if thumbnail > 0 {
				img, err = s.Thumbnail(ctx, thumbnail)
			} else {
				img, err = s.Render(ctx, render.Options{})
			}
			if err != nil {
				return err
			}
			if err := writePNG(out, img); err != nil {
				return err
			}
			c.logger.Infof("wrote %s (%dx%d, %s)", out, img.Rect.Dx(), img.Rect.Dy(), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "out.png", "output PNG file")
	cmd.Flags().IntVar(&thumbnail, "thumbnail", 0, "scale the export to fit this many pixels")
	return cmd
}

func (c *cli) graphCommand() *cobra.Command {
	var (
		out string
		svg bool
	)
	cmd := &cobra.Command{
		Use:   "graph <script.toml>",
		Short: "Print the compositing graph of a script's document",
		Long:  "Print the compositing graph of the document a script builds, as Graphviz DOT or rendered to SVG.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.open(ctx, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			g, err := graph.FromDocument(s.Document())
			if err != nil {
				return err
			}
			data := []byte(graph.ToDOT(g))
			if svg {
				if data, err = graph.RenderSVG(ctx, string(data)); err != nil {
					return err
				}
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			c.logger.Info("wrote graph", "path", out, "nodes", g.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG with Graphviz instead of printing DOT")
	return cmd
}

func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pixdoc %s\n", version)
		},
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
