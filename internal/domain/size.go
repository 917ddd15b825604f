package domain

import (
	"fmt"
	"strings"
)

// ImageSize is static reference data describing an output format.
type ImageSize struct {
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Description string `json:"description"`
}

// Orientation values returned by ImageSize.Orientation.
const (
	OrientationSquare    = "square"
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

var imageSizes = []ImageSize{
	{Name: "Square", Width: 1024, Height: 1024, Description: "Perfect for social media posts"},
	{Name: "YouTube Thumbnail", Width: 1280, Height: 720, Description: "16:9 aspect ratio"},
	{Name: "TikTok Video", Width: 1080, Height: 1920, Description: "9:16 vertical format"},
	{Name: "Instagram Story", Width: 1080, Height: 1920, Description: "9:16 vertical format"},
	{Name: "Facebook Post", Width: 1200, Height: 630, Description: "Recommended social media size"},
	{Name: "Twitter Header", Width: 1500, Height: 500, Description: "3:1 aspect ratio"},
}

// ImageSizes returns a copy of the size catalog in display order.
func ImageSizes() []ImageSize {
	out := make([]ImageSize, len(imageSizes))
	copy(out, imageSizes)
	return out
}

// DefaultImageSize is the first catalog entry.
func DefaultImageSize() ImageSize {
	return imageSizes[0]
}

// LookupImageSize resolves a size by name, ignoring case and surrounding
// whitespace. An empty name selects the default size.
func LookupImageSize(name string) (ImageSize, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultImageSize(), nil
	}
	for _, size := range imageSizes {
		if strings.EqualFold(size.Name, name) {
			return size, nil
		}
	}
	return ImageSize{}, fmt.Errorf("%w: %q", ErrUnknownSize, name)
}

// Label renders the size as stored with gallery rows, e.g. "1280x720".
func (s ImageSize) Label() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

func (s ImageSize) Orientation() string {
	switch {
	case s.Width == s.Height:
		return OrientationSquare
	case s.Height > s.Width:
		return OrientationPortrait
	default:
		return OrientationLandscape
	}
}
