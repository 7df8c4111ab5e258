package shortcode

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// GalleryDir is the public directory relative gallery paths resolve under.
const GalleryDir = "assets/galleries"

var galleryExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

var (
	datePrefixPattern    = regexp.MustCompile(`^\d{4}_\d{4}_\d{6}_?`)
	numericPrefixPattern = regexp.MustCompile(`^\d+_`)
)

// GalleryImage is a single gallery entry.
type GalleryImage struct {
	Filename string
	URL      string
	Alt      string
	Title    string
}

// ResolveGalleryPath maps a gallery parameter to its URL path below the public
// root. A leading slash addresses the public root itself, anything else lives
// under GalleryDir.
func ResolveGalleryPath(param string) string {
	param = strings.TrimSpace(param)
	if strings.HasPrefix(param, "/") {
		return NormalizePath(path.Clean(param))
	}
	return path.Join(GalleryDir, NormalizePath(path.Clean("/"+param)))
}

// ListGallery reads the image files of dir sorted by filename (byte order) and
// capped at limit. urlPath is the public URL path of dir.
func ListGallery(dir, urlPath string, limit int) ([]GalleryImage, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("read gallery %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := galleryExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	images := make([]GalleryImage, 0, len(names))
	for _, name := range names {
		images = append(images, GalleryImage{
			Filename: name,
			URL:      "/" + path.Join(urlPath, name),
			Alt:      AltText(name),
			Title:    TitleText(name),
		})
	}
	return images, nil
}

// AltText derives alt text from an image filename. Camera style date prefixes
// and numeric ordering prefixes are dropped. The result is empty when nothing
// readable remains.
func AltText(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = datePrefixPattern.ReplaceAllString(name, "")
	name = numericPrefixPattern.ReplaceAllString(name, "")
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.TrimSpace(name)
}

// TitleText derives the title attribute from an image filename.
func TitleText(filename string) string {
	return strings.ReplaceAll(strings.TrimSuffix(filename, filepath.Ext(filename)), "_", " ")
}

// renderGallery lists the images of a public directory.
func (s *Service) renderGallery(ctx context.Context, inv Invocation, req interfaces.RequestContext) string {
	param := inv.Param(0)
	if param == "" {
		return alert(alertWarning, escape(s.translate(req.Locale, keyGalleryMissingPath)))
	}
	limit := inv.IntParam(1, defaultGalleryLimit)

	urlPath := ResolveGalleryPath(param)
	dir := filepath.Join(s.publicPath, filepath.FromSlash(urlPath))

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return alert(alertWarning, escape(s.translate(req.Locale, keyGalleryNotFound, "/"+urlPath)))
	}

	images, err := ListGallery(dir, urlPath, limit)
	if err != nil {
		logging.WithFields(s.baseLogger(ctx), map[string]any{
			"path":  urlPath,
			"error": err,
		}).Error("shortcode.gallery.list_failed")
		images = nil
	}
	if len(images) == 0 {
		return alert(alertInfo, escape(s.translate(req.Locale, keyGalleryEmpty, "/"+urlPath)))
	}

	fallbackAlt := s.translate(req.Locale, keyGalleryDefaultAlt)
	var b strings.Builder
	b.WriteString(`<div class="shortcode-gallery row">`)
	for _, img := range images {
		alt := img.Alt
		if alt == "" {
			alt = fallbackAlt
		}
		fmt.Fprintf(&b, `<figure class="gallery-item col-md-3"><a href="%[1]s" target="_blank"><img src="%[1]s" alt="%[2]s" title="%[3]s" loading="lazy"></a></figure>`,
			escape(img.URL), escape(alt), escape(img.Title))
	}
	b.WriteString(`</div>`)
	return b.String()
}
