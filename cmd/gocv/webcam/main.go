// Command webcam previews a video source with detected faces outlined. It is
// the interactive counterpart of "pixelkit sample faces". Press Esc to quit.
package main

import (
	"flag"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-pixelkit/config"
	"github.com/nvr-ai/go-pixelkit/detector"
	"github.com/nvr-ai/go-pixelkit/video"
)

const escKey = 27

func main() {
	source := flag.String("source", "0", "device id, video file or stream URL")
	cascade := flag.String("cascade", "haarcascade_frontalface_default.xml", "cascade XML")
	maxDim := flag.Int("max-dimension", 640, "downscale frames above this size before detection")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := config.NewLogger(config.Logging{Debug: *debug})

	src, err := video.Open(*source)
	if err != nil {
		log.WithError(err).Error("cannot open source")
		return
	}
	defer src.Close()

	faces, err := detector.OpenCascade(*cascade, detector.CascadeOptions{MaxDimension: *maxDim, Logger: log})
	if err != nil {
		log.WithError(err).Error("cannot load cascade")
		return
	}
	defer faces.Close()

	window := gocv.NewWindow("Face Detect")
	defer window.Close()

	// FPS tracking variables
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	log.WithField("source", src.String()).Info("start reading")
	for {
		frame, err := src.Read()
		if err == io.EOF {
			log.Info("source ended")
			return
		}
		if err != nil {
			log.WithError(err).Error("cannot read frame")
			return
		}

		frameCount++
		if elapsed := time.Since(lastTime).Seconds(); elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = time.Now()
		}

		boxes, err := faces.Detect(frame)
		if err != nil {
			log.WithError(err).Error("detection failed")
			return
		}
		log.WithFields(logrus.Fields{"faces": len(boxes), "fps": fps}).Debug("frame")

		annotated, err := video.Annotate(frame, boxes)
		if err != nil {
			log.WithError(err).Error("annotate failed")
			return
		}
		m, err := annotated.ToMat()
		if err != nil {
			log.WithError(err).Error("convert failed")
			return
		}
		window.IMShow(m)
		key := window.WaitKey(1)
		m.Close()
		if key == escKey {
			return
		}
	}
}
