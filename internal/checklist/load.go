package checklist

import (
	"encoding/json"
	"fmt"
	"os"
)

// node mirrors one element of the nested checklist document. A node carrying
// a data array is a category that passes its label down to descendants; a
// node carrying an id is a leaf item.
type node struct {
	Item
	Data []node `json:"data"`
}

// Load reads and parses the checklist document at path.
func Load(path string) ([]Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checklist: %w", err)
	}
	items, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse checklist %s: %w", path, err)
	}
	return items, nil
}

// Parse flattens the nested checklist JSON into its leaf items in document
// order. Category nodes are not items themselves; their label applies to
// every descendant that does not set its own. Nodes with neither a data
// array nor an id are dropped.
func Parse(raw []byte) ([]Item, error) {
	var nodes []node
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, err
	}
	var items []Item
	flatten(nodes, "", &items)
	return items, nil
}

func flatten(nodes []node, parentCategory string, out *[]Item) {
	for _, n := range nodes {
		if n.Data != nil {
			category := n.Category
			if category == "" {
				category = parentCategory
			}
			flatten(n.Data, category, out)
			continue
		}
		if n.ID == "" {
			continue
		}
		item := n.Item
		if item.Category == "" {
			item.Category = parentCategory
		}
		*out = append(*out, item)
	}
}
