package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-pixelkit/adjust"
	"github.com/nvr-ai/go-pixelkit/codec"
	"github.com/nvr-ai/go-pixelkit/dehaze"
	"github.com/nvr-ai/go-pixelkit/edges"
	"github.com/nvr-ai/go-pixelkit/histogram"
	"github.com/nvr-ai/go-pixelkit/images"
	"github.com/nvr-ai/go-pixelkit/images/kernels"
	"github.com/nvr-ai/go-pixelkit/warp"
)

func (a *app) adjustCommand() *cobra.Command {
	var in, out string
	var saturation, contrast, brightness int
	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Shift saturation, contrast and brightness (127 leaves a channel unchanged)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("saturation") {
				saturation = a.cfg.Adjust.Saturation
			}
			if !flags.Changed("contrast") {
				contrast = a.cfg.Adjust.Contrast
			}
			if !flags.Changed("brightness") {
				brightness = a.cfg.Adjust.Brightness
			}
			return a.transform(in, out, func(b *images.Buffer) (*images.Buffer, error) {
				b, err := adjust.Saturation(b, saturation)
				if err != nil {
					return nil, err
				}
				if b, err = adjust.Contrast(b, contrast); err != nil {
					return nil, err
				}
				return adjust.Brightness(b, brightness)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input image")
	cmd.Flags().StringVar(&out, "out", "", "output image")
	cmd.Flags().IntVar(&saturation, "saturation", adjust.Base, "saturation level [0,255]")
	cmd.Flags().IntVar(&contrast, "contrast", adjust.Base, "contrast level [0,255]")
	cmd.Flags().IntVar(&brightness, "brightness", adjust.Base, "brightness level [0,255]")
	requireFlags(cmd, "in", "out")
	return cmd
}

func (a *app) filterCommand() *cobra.Command {
	var in, out, mode string
	var cellSize int
	var variance, factor float64
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Apply an average, gaussian or sharpen filter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("cell-size") {
				cellSize = a.cfg.Filter.CellSize
			}
			if !flags.Changed("variance") {
				variance = a.cfg.Filter.Variance
			}
			if !flags.Changed("factor") {
				factor = a.cfg.Filter.SharpenFactor
			}
			return a.transform(in, out, func(b *images.Buffer) (*images.Buffer, error) {
				switch mode {
				case "average":
					return kernels.Average(b, cellSize)
				case "gaussian":
					return kernels.GaussianBlur(b, cellSize, variance)
				case "sharpen":
					return kernels.Sharpen(b, cellSize, factor)
				}
				return nil, errors.Errorf("unknown filter mode %q", mode)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input image")
	cmd.Flags().StringVar(&out, "out", "", "output image")
	cmd.Flags().StringVar(&mode, "mode", "average", "average, gaussian or sharpen")
	cmd.Flags().IntVar(&cellSize, "cell-size", 3, "window side (even sizes grow by one)")
	cmd.Flags().Float64Var(&variance, "variance", 1.5, "gaussian variance")
	cmd.Flags().Float64Var(&factor, "factor", 1, "sharpen factor")
	requireFlags(cmd, "in", "out")
	return cmd
}

func (a *app) dehazeCommand() *cobra.Command {
	var in, out string
	var cellSize int
	cmd := &cobra.Command{
		Use:   "dehaze",
		Short: "Remove haze with a fixed-airlight dark channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("cell-size") {
				cellSize = a.cfg.Dehaze.CellSize
			}
			return a.transform(in, out, func(b *images.Buffer) (*images.Buffer, error) {
				return dehaze.Dehaze(b, cellSize)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input image")
	cmd.Flags().StringVar(&out, "out", "", "output image")
	cmd.Flags().IntVar(&cellSize, "cell-size", 15, "dark channel window")
	requireFlags(cmd, "in", "out")
	return cmd
}

func (a *app) edgesCommand() *cobra.Command {
	var in, out string
	var paint bool
	cmd := &cobra.Command{
		Use:   "edges",
		Short: "Write the edge magnitude map, or an oil-painting stylization with --paint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.transform(in, out, func(b *images.Buffer) (*images.Buffer, error) {
				if paint {
					return edges.OilPaintingWith(b, a.cfg.Edges.PaintingCellSize, a.cfg.Edges.PaintingVariance)
				}
				return edges.Detect(b)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input image")
	cmd.Flags().StringVar(&out, "out", "", "output image")
	cmd.Flags().BoolVar(&paint, "paint", false, "oil-painting stylization")
	requireFlags(cmd, "in", "out")
	return cmd
}

func (a *app) rotateCommand() *cobra.Command {
	var in, out string
	var angle float64
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Rotate onto a canvas that holds the whole image",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.transform(in, out, func(b *images.Buffer) (*images.Buffer, error) {
				return warp.Rotate(b, angle)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input image")
	cmd.Flags().StringVar(&out, "out", "", "output image")
	cmd.Flags().Float64Var(&angle, "angle", 0, "degrees, counter-clockwise")
	requireFlags(cmd, "in", "out", "angle")
	return cmd
}

func (a *app) transposeCommand() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "transpose",
		Short: "Swap rows and columns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.transform(in, out, func(b *images.Buffer) (*images.Buffer, error) {
				if err := b.Validate(); err != nil {
					return nil, err
				}
				return b.Transpose(), nil
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input image")
	cmd.Flags().StringVar(&out, "out", "", "output image")
	requireFlags(cmd, "in", "out")
	return cmd
}

func (a *app) warpCommand() *cobra.Command {
	var in, out, corners string
	cmd := &cobra.Command{
		Use:   "warp",
		Short: "Rectify a quadrilateral onto the full image",
		RunE: func(cmd *cobra.Command, _ []string) error {
			quad, err := parseQuad(corners)
			if err != nil {
				return err
			}
			return a.transform(in, out, func(b *images.Buffer) (*images.Buffer, error) {
				return warp.Perspective(b, quad)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input image")
	cmd.Flags().StringVar(&out, "out", "", "output image")
	cmd.Flags().StringVar(&corners, "corners", "", "x,y pairs: top-left,top-right,bottom-right,bottom-left")
	requireFlags(cmd, "in", "out", "corners")
	return cmd
}

// parseQuad reads "x1,y1,x2,y2,x3,y3,x4,y4".
func parseQuad(s string) (warp.Quad, error) {
	var q warp.Quad
	parts := strings.Split(s, ",")
	if len(parts) != 8 {
		return q, errors.Errorf("corners: want 8 numbers, got %d", len(parts))
	}
	for i := range q {
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[2*i]), 64)
		if err != nil {
			return q, errors.Wrapf(err, "corner %d x", i)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(parts[2*i+1]), 64)
		if err != nil {
			return q, errors.Wrapf(err, "corner %d y", i)
		}
		q[i] = warp.Point{X: x, Y: y}
	}
	return q, nil
}

func (a *app) thumbCommand() *cobra.Command {
	var in, out string
	var square int
	cmd := &cobra.Command{
		Use:   "thumb",
		Short: "Decode a large image subsampled and fit it within a square",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(in)
			if err != nil {
				return errors.Wrapf(err, "read %q", in)
			}
			b, err := codec.DecodeSampled(data, square, square, a.log)
			if err != nil {
				return err
			}
			fit := images.FitSize(b.Width, b.Height, square)
			thumb, err := images.Thumbnail(b, fit.X, fit.Y)
			if err != nil {
				return err
			}
			return codec.Save(out, thumb, codec.Options{Quality: a.cfg.Output.Quality})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input image")
	cmd.Flags().StringVar(&out, "out", "", "output image")
	cmd.Flags().IntVar(&square, "size", 480, "longest edge of the thumbnail")
	requireFlags(cmd, "in", "out")
	return cmd
}

func (a *app) compareCommand() *cobra.Command {
	var left, right, cascade string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the first detected region of two images by histogram correlation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("cascade") {
				cascade = a.cfg.Detector.Cascade
			}
			d, closeDetector, err := a.openDetector(cascade)
			if err != nil {
				return err
			}
			defer closeDetector()

			lb, err := codec.Load(left)
			if err != nil {
				return err
			}
			rb, err := codec.Load(right)
			if err != nil {
				return err
			}

			cmp := &histogram.Comparator{
				Detector:  d,
				Bins:      a.cfg.Histogram.Bins,
				Threshold: a.cfg.Histogram.Threshold,
				Logger:    a.log,
			}
			res, err := cmp.Compare(lb, rb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "detected=%t correlation=%.4f match=%t\n", res.Detected, res.Correlation, res.Match)
			return nil
		},
	}
	cmd.Flags().StringVar(&left, "a", "", "first image")
	cmd.Flags().StringVar(&right, "b", "", "second image")
	cmd.Flags().StringVar(&cascade, "cascade", "", "cascade XML (default detector.cascade); empty compares whole images")
	requireFlags(cmd, "a", "b")
	return cmd
}
