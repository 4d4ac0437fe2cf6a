package exporter

import (
	"path"
	"strings"
)

// assetKind drives how an embedded non-note file is rendered.
type assetKind int

const (
	assetImage assetKind = iota
	assetAudio
	assetVideo
	assetPDF
	assetOther
)

var assetKindByExt = map[string]assetKind{
	"png":  assetImage,
	"jpg":  assetImage,
	"jpeg": assetImage,
	"gif":  assetImage,
	"bmp":  assetImage,
	"svg":  assetImage,
	"webp": assetImage,
	"mp3":  assetAudio,
	"wav":  assetAudio,
	"m4a":  assetAudio,
	"ogg":  assetAudio,
	"mp4":  assetVideo,
	"webm": assetVideo,
	"mov":  assetVideo,
	"pdf":  assetPDF,
}

func assetKindFor(relPath string) assetKind {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(relPath), "."))
	if kind, ok := assetKindByExt[ext]; ok {
		return kind
	}
	return assetOther
}
