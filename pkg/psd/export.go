package psd

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/joshuapare/psdkit/pkg/types"
)

// Image formats accepted by SaveOptions.Format.
const (
	FormatPNG  = "png"
	FormatTIFF = "tiff"
	FormatBMP  = "bmp"
)

// SaveOptions controls Save.
type SaveOptions struct {
	// Dir is the destination directory. It is created if missing.
	// Default: the current directory.
	Dir string

	// IndexNames gives same-named siblings distinct files by appending
	// _1, _2, ... to every name after the first. Without it the topmost
	// sibling's image wins.
	IndexNames bool

	// InFolders mirrors the folder tree as nested directories. Otherwise
	// every image is written directly into Dir.
	InFolders bool

	// Format is FormatPNG (default), FormatTIFF or FormatBMP.
	Format string
}

// Save writes one image per leaf layer that has pixels and returns the
// written paths in storage order. Layer names are made safe for the file
// system: path separators and reserved characters are removed, and an
// empty result becomes "layer".
//
// Example:
//
//	paths, err := psd.Save(info, psd.SaveOptions{Dir: "out", IndexNames: true})
func Save(doc *types.ExtractedDocument, opts SaveOptions) ([]string, error) {
	if doc == nil {
		return nil, types.ErrMissingSource
	}
	enc, ext, err := encoderFor(opts.Format)
	if err != nil {
		return nil, err
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}

	s := &saver{opts: opts, doc: doc, enc: enc, ext: ext, used: map[string]bool{}}
	if err := s.level(doc.Roots, opts.Dir); err != nil {
		return s.written, err
	}
	return s.written, nil
}

type saver struct {
	opts    SaveOptions
	doc     *types.ExtractedDocument
	enc     func(io.Writer, image.Image) error
	ext     string
	used    map[string]bool // "dir\x00name" already emitted
	written []string
}

// level saves the layers at one sibling level into dir.
func (s *saver) level(indices []int, dir string) error {
	for _, i := range indices {
		l := s.doc.Layer(i)
		if l == nil {
			continue
		}
		if l.IsFolder() {
			sub := dir
			if s.opts.InFolders {
				sub = filepath.Join(dir, s.name(dir, l.Name, ""))
			}
			if err := s.level(l.Children, sub); err != nil {
				return err
			}
			continue
		}
		if l.Image == nil {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("psd: create %s: %w", dir, err)
		}
		path := filepath.Join(dir, s.name(dir, l.Name, s.ext))
		if err := s.write(path, l.Image); err != nil {
			return err
		}
		s.written = append(s.written, path)
	}
	return nil
}

// name returns the file or directory name for a layer in dir. With
// IndexNames the suffix grows until the name is unused in dir, so a
// generated "a_1" never lands on a sibling literally named "a_1".
func (s *saver) name(dir, layerName, ext string) string {
	base := SanitizeName(layerName)
	name := base + ext
	if !s.opts.IndexNames {
		return name
	}
	for n := 1; s.used[dir+"\x00"+name]; n++ {
		name = base + "_" + strconv.Itoa(n) + ext
	}
	s.used[dir+"\x00"+name] = true
	return name
}

func (s *saver) write(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("psd: create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := s.enc(w, img); err != nil {
		f.Close()
		return fmt.Errorf("psd: encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("psd: write %s: %w", path, err)
	}
	return f.Close()
}

func encoderFor(format string) (func(io.Writer, image.Image) error, string, error) {
	switch strings.ToLower(format) {
	case "", FormatPNG:
		return png.Encode, ".png", nil
	case FormatTIFF, "tif":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, ".tiff", nil
	case FormatBMP:
		return bmp.Encode, ".bmp", nil
	}
	return nil, "", fmt.Errorf("psd: unknown image format %q", format)
}

// SanitizeName strips characters that are unsafe in file names.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '*', '?', ':', '"', '<', '>', '|':
			return -1
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(name, " .")
	if name == "" {
		return "layer"
	}
	return name
}
