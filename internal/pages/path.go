package pages

import (
	"sort"
	"strings"
)

// maxTreeDepth bounds ancestor walks so a corrupted parent chain cannot loop
// forever. Real trees are a handful of levels deep.
const maxTreeDepth = 128

// ComputePath derives a node's materialized path from its parent's path and
// its own slug. Root nodes have no parent path.
func ComputePath(parentPath, slug string) string {
	if parentPath == "" {
		return "/" + slug
	}
	return parentPath + "/" + slug
}

// ChildPathPrefix returns the prefix every descendant path of the supplied
// path starts with.
func ChildPathPrefix(path string) string {
	return path + "/"
}

// pathDepth counts tree levels; "/a" is depth 1, "/a/b" depth 2.
func pathDepth(path string) int {
	return strings.Count(path, "/")
}

// recomputeSubtreePaths rewrites the cached path of every descendant after
// the root of the subtree acquired a new path. Descendants are processed
// top-down so each level reads an already-updated parent path.
func recomputeSubtreePaths(root *Page, descendants []*Page) {
	byID := make(map[string]*Page, len(descendants)+1)
	byID[root.ID.String()] = root
	for _, page := range descendants {
		byID[page.ID.String()] = page
	}

	ordered := append([]*Page{}, descendants...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return pathDepth(ordered[i].Path) < pathDepth(ordered[j].Path)
	})

	for _, page := range ordered {
		if page.ParentID == nil {
			continue
		}
		parent, ok := byID[page.ParentID.String()]
		if !ok {
			continue
		}
		page.Path = ComputePath(parent.Path, page.Slug)
	}
}
