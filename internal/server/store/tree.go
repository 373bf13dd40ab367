package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"
)

// Node is one entry of the listing tree. Directories carry Children, files
// carry Size, Modified and Extension.
type Node struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Path      string  `json:"path"`
	Size      int64   `json:"size,omitempty"`
	Modified  string  `json:"modified,omitempty"`
	Extension string  `json:"extension,omitempty"`
	Children  []*Node `json:"children,omitempty"`
}

func (n *Node) IsDir() bool {
	return n.Type == NodeTypeDirectory
}

// Tree walks the data root and returns the full listing. The root node is
// named after the data directory and carries an empty path; children are
// sorted by name; the reserved prefix is not listed.
func (s *Store) Tree() (*Node, error) {
	root := &Node{
		Name: filepath.Base(s.root),
		Type: NodeTypeDirectory,
		Path: "",
	}

	children, err := s.scanDir(s.root, "")
	if err != nil {
		return nil, err
	}
	root.Children = children
	return root, nil
}

func (s *Store) scanDir(dir, rel string) ([]*Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsPermission(err) {
			slog.Warn("permission denied listing directory", "dir", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("read dir '%s': %w", dir, err)
	}

	nodes := make([]*Node, 0, len(entries))
	for _, entry := range entries {
		if rel == "" && entry.Name() == ReservedPrefix {
			continue
		}

		childRel := entry.Name()
		if rel != "" {
			childRel = rel + "/" + entry.Name()
		}

		if entry.IsDir() {
			children, err := s.scanDir(filepath.Join(dir, entry.Name()), childRel)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &Node{
				Name:     entry.Name(),
				Type:     NodeTypeDirectory,
				Path:     childRel,
				Children: children,
			})
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// raced with a delete, skip it
			continue
		}
		nodes = append(nodes, &Node{
			Name:      entry.Name(),
			Type:      NodeTypeFile,
			Path:      childRel,
			Size:      info.Size(),
			Modified:  info.ModTime().Format(time.RFC3339),
			Extension: strings.ToLower(filepath.Ext(entry.Name())),
		})
	}
	return nodes, nil
}
