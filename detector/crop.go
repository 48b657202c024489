package detector

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-pixelkit/images"
)

// CropFaces runs d over b and returns one cropped buffer per detected box, in
// detection order. A buffer with no detections yields an empty slice.
func CropFaces(d Detector, b *images.Buffer) ([]*images.Buffer, error) {
	boxes, err := d.Detect(b)
	if err != nil {
		return nil, errors.Wrap(err, "detect")
	}

	crops := make([]*images.Buffer, 0, len(boxes))
	for _, box := range boxes {
		crop, err := b.Crop(box.ToRect())
		if err != nil {
			continue
		}
		crops = append(crops, crop)
	}
	return crops, nil
}
