// Command pixelkit runs pixel transforms on still images and samples frames
// from video sources.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-pixelkit/codec"
	"github.com/nvr-ai/go-pixelkit/config"
	"github.com/nvr-ai/go-pixelkit/detector"
	"github.com/nvr-ai/go-pixelkit/images"
)

// app carries state shared by every command once flags are parsed.
type app struct {
	configPath string
	debug      bool

	cfg *config.Config
	log *logrus.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{}
	if err := a.rootCommand().ExecuteContext(ctx); err != nil {
		if a.log != nil {
			a.log.WithError(err).Error("command failed")
		} else {
			fmt.Fprintln(os.Stderr, "pixelkit:", err)
		}
		os.Exit(1)
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pixelkit",
		Short:         "Pixel-level image transforms and video frame sampling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.debug {
				cfg.Logging.Debug = true
			}
			a.cfg = cfg
			a.log = config.NewLogger(cfg.Logging)
			a.log.WithField("command", cmd.CommandPath()).Debug("configuration loaded")
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		a.adjustCommand(),
		a.filterCommand(),
		a.dehazeCommand(),
		a.edgesCommand(),
		a.rotateCommand(),
		a.transposeCommand(),
		a.warpCommand(),
		a.thumbCommand(),
		a.compareCommand(),
		a.facesCommand(),
		a.sampleCommand(),
		a.recordCommand(),
	)
	return root
}

// transform loads in, applies fn and saves the result to out, with the format
// taken from the out extension.
func (a *app) transform(in, out string, fn func(*images.Buffer) (*images.Buffer, error)) error {
	src, err := codec.Load(in)
	if err != nil {
		return err
	}
	dst, err := fn(src)
	if err != nil {
		return err
	}
	if err := codec.Save(out, dst, codec.Options{Quality: a.cfg.Output.Quality}); err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"in": in, "out": out, "width": dst.Width, "height": dst.Height}).Info("image written")
	return nil
}

// openDetector returns a cascade when a path is configured, otherwise the
// whole-frame detector. The returned close func is never nil.
func (a *app) openDetector(path string) (detector.Detector, func(), error) {
	if path == "" {
		return detector.Whole{}, func() {}, nil
	}
	c, err := detector.OpenCascade(path, detector.CascadeOptions{
		MaxDimension: a.cfg.Detector.MaxDimension,
		MinSize:      a.cfg.Detector.MinSize,
		IoUThreshold: a.cfg.Detector.IoUThreshold,
		Logger:       a.log,
	})
	if err != nil {
		return nil, nil, err
	}
	return c, func() { c.Close() }, nil
}

func requireFlags(cmd *cobra.Command, names ...string) {
	for _, n := range names {
		_ = cmd.MarkFlagRequired(n)
	}
}
