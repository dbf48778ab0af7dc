package nodejson

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/google/uuid"
	"github.com/soypat/glnode"
	xdraw "golang.org/x/image/draw"
)

const pngDataURL = "data:image/png;base64,"

// Texture adds t and its image to the document and returns the texture UUID.
// Images with identical encoded content are stored once.
func (e *Encoder) Texture(t *glnode.Texture) (string, error) {
	if t == nil {
		return "", errors.New("nil texture")
	}
	id := t.UUID()
	if e.doc.Textures == nil {
		e.doc.Textures = make(map[string]*TextureData)
	}
	if _, ok := e.doc.Textures[id]; ok {
		return id, nil
	}
	td := &TextureData{UUID: id, Name: t.Name}
	if t.Image != nil {
		url, err := e.imageURL(t.Image)
		if err != nil {
			return "", fmt.Errorf("texture %s: %w", id, err)
		}
		if e.doc.Images == nil {
			e.doc.Images = make(map[string]*ImageData)
		}
		imageID, ok := e.imageIDs[url]
		if !ok {
			imageID = uuid.NewString()
			e.doc.Images[imageID] = &ImageData{UUID: imageID, URL: url}
			e.imageIDs[url] = imageID
		}
		td.Image = imageID
	}
	e.doc.Textures[id] = td
	return id, nil
}

func (e *Encoder) imageURL(img image.Image) (string, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return "", errors.New("empty image")
	}
	w, h := bounds.Dx(), bounds.Dy()
	if e.MaxImageSize > 0 && max(w, h) > e.MaxImageSize {
		scale := float64(e.MaxImageSize) / float64(max(w, h))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == bounds.Dx() && h == bounds.Dy() {
		xdraw.Draw(dst, dst.Bounds(), img, bounds.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return "", err
	}
	return pngDataURL + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Texture returns the texture with the given UUID, decoding its image on first use.
func (d *Decoder) Texture(id string) (*glnode.Texture, error) {
	if t, ok := d.textures[id]; ok {
		return t, nil
	}
	td, ok := d.doc.Textures[id]
	if !ok {
		return nil, fmt.Errorf("missing texture %s", id)
	}
	t := &glnode.Texture{Name: td.Name}
	if err := t.SetUUID(id); err != nil {
		return nil, err
	}
	if td.Image != "" {
		imd, ok := d.doc.Images[td.Image]
		if !ok {
			return nil, fmt.Errorf("texture %s: missing image %s", id, td.Image)
		}
		img, err := decodeImageURL(imd.URL)
		if err != nil {
			return nil, fmt.Errorf("texture %s: %w", id, err)
		}
		t.Image = img
	}
	d.textures[id] = t
	return t, nil
}

func decodeImageURL(url string) (image.Image, error) {
	data, ok := strings.CutPrefix(url, pngDataURL)
	if !ok {
		return nil, errors.New("unsupported image url")
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(raw))
}
