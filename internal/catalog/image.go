package catalog

import (
	"fmt"
	"strings"
)

const imageCDNBase = "https://cdn.sanity.io/images"

// ImageURL maps a CMS asset reference such as "image-abc123-2000x3000-jpg" to
// its public CDN URL. Absolute URLs pass through and malformed references
// yield "".
func ImageURL(project, dataset, ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://") {
		return ref
	}
	if project == "" || dataset == "" || !strings.HasPrefix(ref, "image-") {
		return ""
	}
	parts := strings.Split(strings.TrimPrefix(ref, "image-"), "-")
	if len(parts) < 3 {
		return ""
	}
	ext := parts[len(parts)-1]
	dims := parts[len(parts)-2]
	id := strings.Join(parts[:len(parts)-2], "-")
	if id == "" || ext == "" || !strings.Contains(dims, "x") {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s/%s-%s.%s", imageCDNBase, project, dataset, id, dims, ext)
}
