package contrast

import "strings"

// ParseBackgroundImage extracts the image URL from a CSS background-image
// value such as `url("a.png")`, `url('a.png')` or `url(a.png)`. Only the
// first url() is used when several layers are given.
func ParseBackgroundImage(value string) (string, error) {
	start := strings.Index(value, "url(")
	if start < 0 {
		return "", ConfigurationError("style",
			"no image source in background-image; is the property set correctly?")
	}
	rest := value[start+len("url("):]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return "", ConfigurationError("style", "unterminated url() in background-image")
	}

	src := strings.TrimSpace(rest[:end])
	if len(src) >= 2 && (src[0] == '"' || src[0] == '\'') && src[len(src)-1] == src[0] {
		src = src[1 : len(src)-1]
	}
	if src == "" {
		return "", ConfigurationError("style", "empty url() in background-image")
	}
	return src, nil
}
