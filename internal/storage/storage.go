package storage

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
)

// ImageStore persists generated images and returns a reference the content
// store can keep alongside a record.
type ImageStore interface {
	SaveImage(ctx context.Context, name string, data []byte) (string, error)
	ListImages(ctx context.Context) ([]string, error)
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// ImageExtension sniffs data and returns the file extension of a supported
// image format. ok is false when data is not an image.
func ImageExtension(data []byte) (ext string, ok bool) {
	if len(data) == 0 {
		return "", false
	}
	if ext, ok = imageExtensions[http.DetectContentType(data)]; ok {
		return ext, true
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	return "." + format, true
}

func isImageFile(name string) bool {
	for _, ext := range imageExtensions {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return true
		}
	}
	return false
}
