package sources

import (
	"github.com/keystroke-labs/lantern/internal/item"
)

// Item kinds assigned by the converters in this package.
const (
	KindFile       = "file"
	KindDirectory  = "directory"
	KindExecutable = "executable"
)

// FieldPath carries the absolute filesystem path of an indexed item.
const FieldPath = "path"

// FileConverter indexes FileItem values.
type FileConverter struct{}

var _ item.Converter = FileConverter{}

func (FileConverter) CanConvert(it item.Item) bool {
	_, ok := it.(FileItem)
	return ok
}

func (FileConverter) Convert(it item.Item) (item.Fields, error) {
	fi := it.(FileItem)
	kind := KindFile
	if fi.Dir {
		kind = KindDirectory
	}
	return item.Fields{
		item.FieldName:        fi.Text(),
		item.FieldDescription: fi.Path,
		item.FieldKind:        kind,
		FieldPath:             fi.Path,
	}, nil
}

// ExecutableConverter indexes ExecutableItem values.
type ExecutableConverter struct{}

var _ item.Converter = ExecutableConverter{}

func (ExecutableConverter) CanConvert(it item.Item) bool {
	_, ok := it.(ExecutableItem)
	return ok
}

func (ExecutableConverter) Convert(it item.Item) (item.Fields, error) {
	exe := it.(ExecutableItem)
	return item.Fields{
		item.FieldName:        exe.Command,
		item.FieldDescription: exe.Path,
		item.FieldKind:        KindExecutable,
		FieldPath:             exe.Path,
	}, nil
}
