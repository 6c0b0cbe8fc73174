package exifdec

import (
	"bytes"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	log "github.com/sirupsen/logrus"
)

// Camera is the device / software info of an image, shown in the image info block.
type Camera struct {
	Model    string    `json:"model,omitempty"`
	Software string    `json:"software,omitempty"`
	Artist   string    `json:"artist,omitempty"`
	DateTime time.Time `json:"date_time,omitzero"`
}

func (c *Camera) IsEmpty() bool {
	return c == nil || (c.Model == "" && c.Software == "" && c.Artist == "" && c.DateTime.IsZero())
}

// CameraInfo reads camera fields from a JPEG file or a bare TIFF block.
// Make is skipped: generators commonly abuse it to store prompts.
func CameraInfo(data []byte) (*Camera, error) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil && x == nil {
		return nil, err
	}
	if err != nil {
		log.Debugf("exif: partial decode: %v", err)
	}
	camera := &Camera{
		Model:    stringField(x, exif.Model),
		Software: stringField(x, exif.Software),
		Artist:   stringField(x, exif.Artist),
	}
	if dt, err := x.DateTime(); err == nil {
		camera.DateTime = dt
	}
	return camera, nil
}

func stringField(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "Prompt:") || strings.HasPrefix(s, "Workflow:") {
		return ""
	}
	return s
}
