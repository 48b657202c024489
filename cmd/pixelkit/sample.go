package main

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-pixelkit/codec"
	"github.com/nvr-ai/go-pixelkit/detector"
	"github.com/nvr-ai/go-pixelkit/video"
)

// sampleFlags are shared by every sampling subcommand.
type sampleFlags struct {
	source string
	outDir string
}

func (f *sampleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", "video file, device id or stream URL")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "directory for frame files")
	requireFlags(cmd, "source", "out-dir")
}

func (a *app) newSession(seed int64) *video.Session {
	opts := video.SessionOptions{Logger: a.log}
	if seed != 0 {
		opts.Rand = rand.New(rand.NewSource(seed))
	}
	return video.NewSession(opts)
}

func (a *app) open(f *sampleFlags) (*video.Capture, *video.DirSink, error) {
	sink, err := video.NewDirSink(f.outDir, a.cfg.CodecOptions())
	if err != nil {
		return nil, nil, err
	}
	src, err := video.Open(f.source)
	if err != nil {
		return nil, nil, err
	}
	return src, sink, nil
}

func (a *app) report(s *video.Session, stats video.Stats) {
	a.log.WithFields(logrus.Fields{
		"session": s.ID.String(),
		"written": stats.FramesWritten(),
		"read":    stats.FramesRead,
	}).Info(s.Tracker().String())
}

func (a *app) sampleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Extract still frames from a video source",
	}
	cmd.AddCommand(a.periodicCommand(), a.timedCommand(), a.randomCommand(), a.captureFacesCommand())
	return cmd
}

func (a *app) periodicCommand() *cobra.Command {
	var f sampleFlags
	var interval int
	cmd := &cobra.Command{
		Use:   "periodic",
		Short: "Write every n-th frame until the declared frame count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("interval") {
				interval = a.cfg.Sampler.Interval
			}
			src, sink, err := a.open(&f)
			if err != nil {
				return err
			}
			s := a.newSession(0)
			stats, err := s.Periodic(cmd.Context(), src, sink, interval)
			a.report(s, stats)
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&interval, "interval", 25, "frames between samples")
	return cmd
}

func (a *app) timedCommand() *cobra.Command {
	var f sampleFlags
	var duration time.Duration
	var stride int
	cmd := &cobra.Command{
		Use:   "timed",
		Short: "Write frames from a live source for a fixed wall-clock duration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("duration") {
				duration = a.cfg.Sampler.Duration
			}
			if !cmd.Flags().Changed("stride") {
				stride = a.cfg.Sampler.Stride
			}
			src, sink, err := a.open(&f)
			if err != nil {
				return err
			}
			s := a.newSession(0)
			stats, err := s.TimeBounded(cmd.Context(), src, sink, duration, stride)
			a.report(s, stats)
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "how long to read")
	cmd.Flags().IntVar(&stride, "stride", 1, "write every n-th frame")
	return cmd
}

func (a *app) randomCommand() *cobra.Command {
	var f sampleFlags
	var count int
	var seed int64
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Write a number of distinct, uniformly chosen frames",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("count") {
				count = a.cfg.Sampler.Count
			}
			if !cmd.Flags().Changed("seed") {
				seed = a.cfg.Sampler.Seed
			}
			src, sink, err := a.open(&f)
			if err != nil {
				return err
			}
			s := a.newSession(seed)
			stats, err := s.Random(cmd.Context(), src, sink, count)
			a.report(s, stats)
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&count, "count", 10, "number of frames")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed; 0 seeds from the clock")
	return cmd
}

func (a *app) captureFacesCommand() *cobra.Command {
	var f sampleFlags
	var cascade string
	var hits int
	cmd := &cobra.Command{
		Use:   "faces",
		Short: "Save the frame on which the n-th detection occurs, annotated",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("cascade") {
				cascade = a.cfg.Detector.Cascade
			}
			if !cmd.Flags().Changed("hits") {
				hits = a.cfg.Detector.RequiredHits
			}
			d, closeDetector, err := a.openDetector(cascade)
			if err != nil {
				return err
			}
			defer closeDetector()

			src, sink, err := a.open(&f)
			if err != nil {
				return err
			}
			s := a.newSession(0)
			stats, err := s.CaptureFaces(cmd.Context(), src, sink, d, hits)
			a.report(s, stats)
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&cascade, "cascade", "", "cascade XML")
	cmd.Flags().IntVar(&hits, "hits", video.DefaultRequiredHits, "frames with detections before saving")
	return cmd
}

func (a *app) recordCommand() *cobra.Command {
	var source, out, fourcc string
	var duration time.Duration
	var fps float64
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Copy a video source into a video file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := video.Open(source)
			if err != nil {
				return err
			}
			s := a.newSession(0)
			stats, err := s.Record(cmd.Context(), src, out, video.RecordOptions{Codec: fourcc, FPS: fps, Duration: duration})
			a.report(s, stats)
			return err
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "video file, device id or stream URL")
	cmd.Flags().StringVar(&out, "out", "", "output video file")
	cmd.Flags().StringVar(&fourcc, "codec", video.DefaultCodec, "FourCC")
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long; 0 records until the source ends")
	cmd.Flags().Float64Var(&fps, "fps", 0, "output frame rate; 0 uses the source rate")
	requireFlags(cmd, "source", "out")
	return cmd
}

func (a *app) facesCommand() *cobra.Command {
	var in, outDir, cascade string
	cmd := &cobra.Command{
		Use:   "faces",
		Short: "Crop every detected face of an image into its own file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("cascade") {
				cascade = a.cfg.Detector.Cascade
			}
			d, closeDetector, err := a.openDetector(cascade)
			if err != nil {
				return err
			}
			defer closeDetector()

			b, err := codec.Load(in)
			if err != nil {
				return err
			}
			crops, err := detector.CropFaces(d, b)
			if err != nil {
				return err
			}
			sink, err := video.NewDirSink(outDir, a.cfg.CodecOptions())
			if err != nil {
				return err
			}
			for i, crop := range crops {
				path, err := sink.Write(i, crop)
				if err != nil {
					return err
				}
				a.log.WithField("path", path).Info("face written")
			}
			a.log.WithField("faces", len(crops)).Info("faces cropped")
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input image")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for face crops")
	cmd.Flags().StringVar(&cascade, "cascade", "", "cascade XML")
	requireFlags(cmd, "in", "out-dir")
	return cmd
}
