package render

import (
	"net/url"
	"path"
	"strings"
)

// NormalizeBase returns basePath with exactly one leading and one trailing
// slash.
func NormalizeBase(basePath string) string {
	basePath = strings.Trim(strings.TrimSpace(basePath), "/")
	if basePath == "" {
		return "/"
	}
	return "/" + basePath + "/"
}

// Rebase resolves ref against a template unit directory.
//
//	~/x           -> <base>x
//	x, ../x       -> <base><dir>/x (cleaned, never above the base)
//	/x, //host/x  -> unchanged
//	scheme:x      -> unchanged
//	#x, ?x        -> unchanged
//	<%# expr %>   -> unchanged
func Rebase(basePath, dir, ref string) string {
	base := NormalizeBase(basePath)
	switch {
	case ref == "",
		strings.HasPrefix(ref, "<%"),
		strings.HasPrefix(ref, "/"),
		strings.HasPrefix(ref, "#"),
		strings.HasPrefix(ref, "?"):
		return ref
	case ref == "~":
		return base
	case strings.HasPrefix(ref, "~/"):
		return base + ref[2:]
	}

	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" {
		return ref
	}

	p, suffix := ref, ""
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		p, suffix = ref[:i], ref[i:]
	}
	joined := strings.TrimPrefix(path.Clean("/"+path.Join(dir, p)), "/")
	if strings.HasSuffix(p, "/") && joined != "" {
		joined += "/"
	}
	return base + joined + suffix
}
