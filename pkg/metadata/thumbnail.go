package metadata

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// supportedImageFormats is the closed set of image formats the selector
// will consider.
var supportedImageFormats = map[string]bool{
	"PNG": true,
	"JPG": true,
	"QOI": true,
}

// ImageInfo identifies one stored thumbnail by its pixel dimensions and
// format tag. It round-trips losslessly to the "<width>x<height>_<FORMAT>"
// key form used by the thumbnail maps.
type ImageInfo struct {
	Width  int
	Height int
	Format string
}

// Key renders the thumbnail-map key for this image.
func (i ImageInfo) Key() string {
	return fmt.Sprintf("%dx%d_%s", i.Width, i.Height, i.Format)
}

var imageKeyPat = regexp.MustCompile(`^(\d+)x(\d+)_(\w+)$`)

// ParseImageKey parses a thumbnail-map key of the form "640x480_PNG".
func ParseImageKey(key string) (ImageInfo, error) {
	m := imageKeyPat.FindStringSubmatch(key)
	if m == nil {
		return ImageInfo{}, fmt.Errorf("malformed thumbnail key %q", key)
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	return ImageInfo{Width: w, Height: h, Format: strings.ToUpper(m[3])}, nil
}

// SelectThumbnail scores the available thumbnails against a target size and
// picks the closest match. It prefers images near the target resolution,
// tolerates moderate aspect-ratio mismatch, and harshly penalizes images
// smaller than the target, since upscaling degrades quality more than
// downscaling. Images in an unsupported format or below the 50x50 floor are
// never selectable. The second return value is false when no candidate
// qualifies.
func SelectThumbnail(thumbnails map[string][]byte, target ImageInfo, aspectWeight float64) (ImageInfo, bool) {
	keys := make([]string, 0, len(thumbnails))
	for key := range thumbnails {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var best ImageInfo
	bestScore := math.Inf(1)
	found := false
	for _, key := range keys {
		info, err := ParseImageKey(key)
		if err != nil {
			continue
		}
		if !supportedImageFormats[info.Format] {
			continue
		}
		if info.Width < MinThumbnailDim || info.Height < MinThumbnailDim {
			continue
		}
		score := thumbnailScore(info, target, aspectWeight)
		if score < bestScore {
			best, bestScore, found = info, score, true
		}
	}
	return best, found
}

func thumbnailScore(candidate, target ImageInfo, weight float64) float64 {
	aspect := aspectBadness(candidate, target)
	size := dimensionBadness(candidate.Width, target.Width) +
		dimensionBadness(candidate.Height, target.Height)
	return (math.Pow(aspect, weight) - 0.99) * math.Pow(size, 1/weight)
}

// aspectBadness is the ratio of the two aspect ratios, oriented to always
// be >= 1. Equal ratios score exactly 1.
func aspectBadness(candidate, target ImageInfo) float64 {
	rc := float64(candidate.Width) / float64(candidate.Height)
	rt := float64(target.Width) / float64(target.Height)
	return math.Max(rc, rt) / math.Min(rc, rt)
}

// dimensionBadness penalizes one dimension's distance from the target.
// Undersized candidates are amplified; oversized ones count linearly.
func dimensionBadness(candidate, target int) float64 {
	d := float64(target - candidate)
	if d > 0 {
		return (d + 2) * (d + 2)
	}
	return -d
}
