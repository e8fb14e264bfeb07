package extraction

import "strings"

var rejectedThumbnailFragments = []string{"logo", "icon"}

func PickThumbnail(dom DOM, selectors []string) string {
	for _, selector := range selectors {
		sources, err := dom.Attrs(selector, "src")
		if err != nil {
			continue
		}
		for _, src := range sources {
			if acceptableThumbnail(src) {
				return src
			}
		}
	}
	return ""
}

func acceptableThumbnail(src string) bool {
	if src == "" || !strings.Contains(src, "http") {
		return false
	}
	for _, fragment := range rejectedThumbnailFragments {
		if strings.Contains(src, fragment) {
			return false
		}
	}
	return true
}
