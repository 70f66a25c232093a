package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteFileURLs converts image and link paths to file:// URLs so a
// browser loading the document from a temp file still finds them.
// If sourceDir is empty, the fragment is left unchanged.
//
// Rewrites:
//   - img[src] and a[href] holding absolute filesystem paths
//   - img[src] and a[href] holding relative paths under sourceDir
//
// Does NOT rewrite:
//   - URLs, data URIs, anchors
//   - relative paths escaping sourceDir
//   - srcset, CSS url() references, script[src]
func RewriteFileURLs(frag *Fragment, sourceDir string) error {
	if sourceDir == "" {
		return nil
	}

	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return err
	}

	nodes := collect(frag.Root(), true, func(n *html.Node) bool {
		return n.DataAtom == atom.Img || n.DataAtom == atom.A
	})
	for _, n := range nodes {
		if n.DataAtom == atom.Img {
			rewriteAttr(n, "src", absSourceDir)
		} else {
			rewriteAttr(n, "href", absSourceDir)
		}
	}
	return nil
}

// rewriteAttr rewrites a single attribute if it's a local path.
func rewriteAttr(n *html.Node, attrName, sourceDir string) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isLocalPath(attr.Val) {
			continue
		}

		path, frag := attr.Val, ""
		if j := strings.IndexByte(path, '#'); j >= 0 {
			path, frag = path[:j], path[j:]
		}

		var absPath string
		if filepath.IsAbs(filepath.FromSlash(path)) {
			absPath = filepath.FromSlash(path)
		} else {
			absPath = filepath.Join(sourceDir, filepath.FromSlash(path))
			if !isPathUnderDir(absPath, sourceDir) {
				continue
			}
		}

		n.Attr[i].Val = pathToFileURL(absPath) + frag
	}
}

// isLocalPath returns true if the reference names a file on disk.
func isLocalPath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") {
		return false
	}
	if strings.HasPrefix(path, "//") {
		return false
	}
	if u, err := url.Parse(path); err == nil && len(u.Scheme) > 1 {
		// Schemes: http, https, file, data, mailto, app. A single letter
		// is a Windows drive.
		return false
	}
	return true
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // C:/x -> /C:/x
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
