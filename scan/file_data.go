package scan

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// Kind is the role of a node in the storage tree.
type Kind string

const (
	KindRoot    Kind = "root"
	KindUploads Kind = "uploads"
	KindBuckets Kind = "buckets"
	KindBucket  Kind = "bucket"
	KindFile    Kind = "file"
)

// Node IDs of the two area nodes.
const (
	UploadsID = "uploads"
	BucketsID = "buckets"
)

type FileData struct {
	Parent   *FileData   `json:"-"` // Don't serialize parent to avoid cycles
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Kind     Kind        `json:"kind"`
	Dir      string      `json:"-"` // full path on disk
	Bucket   string      `json:"bucket,omitempty"`
	Size     int64       `json:"size"`
	Children []*FileData `json:"children,omitempty"`
}

func newRootFileData() *FileData {
	return &FileData{Kind: KindRoot}
}

func newFileData(parent *FileData, id, name string, kind Kind, dir string, size int64) *FileData {
	f := &FileData{
		Parent: parent,
		ID:     id,
		Name:   name,
		Kind:   kind,
		Dir:    dir,
		Size:   size,
	}
	switch {
	case kind == KindBucket:
		f.Bucket = name
	case parent != nil && parent.Kind == KindBucket:
		f.Bucket = parent.Name
	}
	return f
}

// IsFile reports whether the node is a stored file rather than a container.
func (d FileData) IsFile() bool {
	return d.Kind == KindFile
}

// HumanSize is the node size for display. Containers show the sum of their
// files.
func (d *FileData) HumanSize() string {
	return humanize.Bytes(uint64(d.TotalSize()))
}

func (d *FileData) TotalSize() int64 {
	if d.Kind == KindFile {
		return d.Size
	}
	var s int64
	for _, f := range d.Children {
		s += f.TotalSize()
	}
	return s
}

// FindByID searches the subtree for a node with the given ID. IDs follow the
// tree shape, so only children on the way to the target are visited.
func (d *FileData) FindByID(id string) *FileData {
	if d.ID == id {
		return d
	}
	for _, child := range d.Children {
		if strings.HasPrefix(id+"/", child.ID+"/") {
			if found := child.FindByID(id); found != nil {
				return found
			}
		}
	}
	return nil
}

// FindByPath searches for a node with the given path on disk.
func (d *FileData) FindByPath(targetPath string) *FileData {
	if d.Dir != "" && d.Dir == targetPath {
		return d
	}
	for _, child := range d.Children {
		if found := child.FindByPath(targetPath); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits the subtree depth first, parents before children, passing the
// depth relative to d.
func (d *FileData) Walk(fn func(node *FileData, depth int)) {
	d.walk(fn, 0)
}

func (d *FileData) walk(fn func(*FileData, int), depth int) {
	fn(d, depth)
	for _, child := range d.Children {
		child.walk(fn, depth+1)
	}
}

// Row is a flattened tree node, ready for rendering.
type Row struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Depth  int    `json:"depth"`
	Size   string `json:"size"`
	Bucket string `json:"bucket,omitempty"`
}

// Rows flattens the tree below the invisible root.
func (d *FileData) Rows() []Row {
	rows := []Row{}
	d.Walk(func(n *FileData, depth int) {
		if n.Kind == KindRoot {
			return
		}
		rows = append(rows, Row{
			ID:     n.ID,
			Name:   n.Name,
			Kind:   n.Kind,
			Depth:  depth - 1,
			Size:   n.HumanSize(),
			Bucket: n.Bucket,
		})
	})
	return rows
}
