package downloads

import (
	"math"
	"strconv"

	"github.com/debrideck/debrideck/internal/debrid"
)

// BadgeColor is the color hint attached to a status badge.
type BadgeColor string

const (
	ColorSuccess BadgeColor = "success"
	ColorWarning BadgeColor = "warning"
)

// StatusBadge is the display status of a download.
type StatusBadge struct {
	Text  string     `json:"text"`
	Color BadgeColor `json:"color"`
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with the largest fitting unit, two
// decimal places at most, trailing zeros trimmed.
func FormatSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i < 0 {
		i = 0
	}
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}

	value := float64(bytes) / math.Pow(1024, float64(i))
	value = math.Round(value*100) / 100

	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}

// TypeLabel returns the display label for a collection.
func TypeLabel(kind debrid.Kind) string {
	switch kind {
	case debrid.KindTorrent:
		return "Torrent"
	case debrid.KindWeb:
		return "Web"
	case debrid.KindUsenet:
		return "Usenet"
	default:
		return ""
	}
}

// IsReady reports whether a download's content is fully available.
// This is the sole readiness rule in the system; it gates whether link
// retrieval is offered at all.
func IsReady(d debrid.TaggedDownload) bool {
	return d.DownloadFinished || d.Progress >= 1
}

// StatusOf derives the status badge for a download.
func StatusOf(d debrid.TaggedDownload) StatusBadge {
	if IsReady(d) {
		return StatusBadge{Text: "Ready", Color: ColorSuccess}
	}
	percent := int(math.Round(d.Progress * 100))
	return StatusBadge{Text: strconv.Itoa(percent) + "%", Color: ColorWarning}
}
