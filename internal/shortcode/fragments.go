package shortcode

import (
	"fmt"
	"html"
)

// Alert levels used by notices.
const (
	alertDanger  = "danger"
	alertWarning = "warning"
	alertInfo    = "info"
)

// Translation keys used by the pipeline.
const (
	keyAuthLocked         = "auth.locked"
	keyUnavailable        = "shortcode.unavailable"
	keyPagesEmpty         = "shortcode.pages.empty"
	keyTagsEmpty          = "shortcode.tags.empty"
	keyFolderEmpty        = "shortcode.folder.empty"
	keyBlogListEmpty      = "shortcode.bloglist.empty"
	keyBlogListPrevious   = "shortcode.bloglist.previous"
	keyBlogListNext       = "shortcode.bloglist.next"
	keyBlogListPageOf     = "shortcode.bloglist.page_of"
	keyGalleryMissingPath = "shortcode.gallery.missing_path"
	keyGalleryNotFound    = "shortcode.gallery.not_found"
	keyGalleryEmpty       = "shortcode.gallery.empty"
	keyGalleryDefaultAlt  = "shortcode.gallery.default_alt"
)

// defaultMessages back translation keys when no translator is configured or
// the translator has no entry for the key.
var defaultMessages = map[string]string{
	keyAuthLocked:         "This content is only available to logged in administrators.",
	keyUnavailable:        "The %s listing is currently unavailable.",
	keyPagesEmpty:         "No pages found in %s.",
	keyTagsEmpty:          "No tags found in %s.",
	keyFolderEmpty:        "No folders found in %s.",
	keyBlogListEmpty:      "No posts found in %s.",
	keyBlogListPrevious:   "Previous",
	keyBlogListNext:       "Next",
	keyBlogListPageOf:     "Page %d of %d",
	keyGalleryMissingPath: "The gallery shortcode needs a folder path.",
	keyGalleryNotFound:    "Gallery folder %s was not found.",
	keyGalleryEmpty:       "No images found in %s.",
	keyGalleryDefaultAlt:  "Gallery image",
}

// alert renders a notice. message must already be HTML safe.
func alert(level, message string) string {
	return fmt.Sprintf(`<div class="alert alert-%s" role="alert">%s</div>`, level, message)
}

func escape(s string) string {
	return html.EscapeString(s)
}

