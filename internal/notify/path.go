package notify

import "fmt"

// IndexPath locates an item within a sectioned view.
type IndexPath struct {
	Section int `json:"section"`
	Item    int `json:"item"`
}

// String renders the path as "section:item".
func (p IndexPath) String() string {
	return fmt.Sprintf("%d:%d", p.Section, p.Item)
}

// IndexPaths scopes raw store indexes to section, preserving order.
func IndexPaths(section int, indexes []int) []IndexPath {
	paths := make([]IndexPath, len(indexes))
	for i, index := range indexes {
		paths[i] = IndexPath{Section: section, Item: index}
	}
	return paths
}
