package infra

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	ImagenMaxLado     = 1024
	MiniaturaLado     = 256
	imagenCalidadJPEG = 85
)

// ImagenProcesada holds the two JPEG renditions produced from an upload.
type ImagenProcesada struct {
	Imagen    []byte
	Miniatura []byte
}

// ProcesarImagen decodes an uploaded image (honouring EXIF orientation),
// fits it inside ImagenMaxLado and builds a square thumbnail.
func ProcesarImagen(original []byte) (*ImagenProcesada, error) {
	img, err := imaging.Decode(bytes.NewReader(original), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imagen: decode: %w", err)
	}

	grande := imaging.Fit(img, ImagenMaxLado, ImagenMaxLado, imaging.Lanczos)
	mini := imaging.Thumbnail(img, MiniaturaLado, MiniaturaLado, imaging.Lanczos)

	var bufGrande, bufMini bytes.Buffer
	if err := imaging.Encode(&bufGrande, grande, imaging.JPEG, imaging.JPEGQuality(imagenCalidadJPEG)); err != nil {
		return nil, fmt.Errorf("imagen: encode: %w", err)
	}
	if err := imaging.Encode(&bufMini, mini, imaging.JPEG, imaging.JPEGQuality(imagenCalidadJPEG)); err != nil {
		return nil, fmt.Errorf("imagen: encode miniatura: %w", err)
	}
	return &ImagenProcesada{Imagen: bufGrande.Bytes(), Miniatura: bufMini.Bytes()}, nil
}
