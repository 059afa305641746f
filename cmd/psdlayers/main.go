package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	psd "github.com/layervault/itsypsd"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the flags shared by every subcommand.
type options struct {
	configPath   string
	logLevel     string
	logFormat    string
	strictGroups bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "psdlayers",
		Short: "Inspect and export the layers of 8-bit RGB PSD files",
		Long: `psdlayers decodes a Photoshop document into canvas-sized layers and
either lists them with their folder paths or writes each one out as a PNG.`,
		Version:      fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format (text, json)")
	flags.BoolVar(&opts.strictGroups, "strict-groups", false, "Fail on unbalanced layer groups")

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newExportCommand(opts))

	return cmd
}

// resolve loads the config file, if any, and applies flags set on cmd.
func (o *options) resolve(cmd *cobra.Command) (Config, *logrus.Logger, error) {
	cfg := DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = LoadConfig(o.configPath); err != nil {
			return cfg, nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("strict-groups") {
		cfg.StrictGroups = o.strictGroups
	}

	logger, err := cfg.NewLogger(cmd.ErrOrStderr())
	return cfg, logger, err
}

func decode(path string, cfg Config, logger *logrus.Logger) (*psd.Document, error) {
	doc, err := psd.DecodeFile(path, psd.DecodeOptions{
		Logger:       logger.WithField("file", filepath.Base(path)),
		StrictGroups: cfg.StrictGroups,
	})
	if err != nil {
		if psd.IsUnsupported(err) {
			return nil, fmt.Errorf("not a supported document: %w", err)
		}
		return nil, err
	}
	return doc, nil
}

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list FILE",
		Short: "List layers with their folder paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			doc, err := decode(args[0], cfg, logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "# %dx%d, %d layers\n", doc.Width, doc.Height, len(doc.Layers))
			for i := range doc.Layers {
				l := &doc.Layers[i]
				mode := l.BlendMode()
				visibility := "visible"
				if !mode.Visible {
					visibility = "hidden"
				}
				box := l.Bounds()
				fmt.Fprintf(w, "%s\t%dx%d%+d%+d\t%s\t%d%%\t%s\n",
					l.Path(), box.Dx(), box.Dy(), box.Min.X, box.Min.Y,
					mode.Mode, mode.OpacityPercentage, visibility)
			}
			return w.Flush()
		},
	}
}

func newExportCommand(opts *options) *cobra.Command {
	var (
		output     string
		skipHidden bool
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write every layer as a canvas-sized PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				cfg.OutputDir = output
			}
			if cmd.Flags().Changed("skip-hidden") {
				cfg.SkipHidden = skipHidden
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			doc, err := decode(args[0], cfg, logger)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			written := 0
			for i := range doc.Layers {
				l := &doc.Layers[i]
				if cfg.SkipHidden && !l.Visible() {
					logger.WithField("layer", l.Path()).Debug("skipping hidden layer")
					continue
				}

				name := filepath.Join(cfg.OutputDir, exportName(i, l))
				if err := writePNG(name, l); err != nil {
					return err
				}
				logger.WithFields(logrus.Fields{"layer": l.Path(), "file": name}).Info("exported layer")
				fmt.Fprintln(cmd.OutOrStdout(), name)
				written++
			}

			logger.WithField("count", written).Info("export complete")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default \".\")")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", false, "Skip layers marked hidden")

	return cmd
}

var unsafeChars = strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")

// exportName numbers files in stacking order so they sort topmost first.
func exportName(i int, l *psd.Layer) string {
	return fmt.Sprintf("%03d_%s.png", i, unsafeChars.Replace(l.Path()))
}

func writePNG(filename string, l *psd.Layer) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, l.ToImage()); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return file.Close()
}
