package sources

import (
	"fmt"

	"github.com/keystroke-labs/lantern/internal/config"
	"github.com/keystroke-labs/lantern/internal/item"
)

// FromConfig builds the configured source set in declaration order.
func FromConfig(cfgs []config.SourceConfig) ([]item.Source, error) {
	out := make([]item.Source, 0, len(cfgs))
	for _, sc := range cfgs {
		switch sc.Kind {
		case config.SourceKindDirectory:
			out = append(out, NewDirectorySource(DirectoryConfig{
				Name:       sc.Name,
				Root:       sc.Root,
				MaxDepth:   sc.MaxDepth,
				Extensions: sc.Extensions,
				Ignore:     sc.Ignore,
			}))
		case config.SourceKindPath:
			var src item.Source = NewPathSource()
			if sc.Name != src.Name() {
				src = renamedSource{Source: src, name: sc.Name}
			}
			out = append(out, src)
		default:
			return nil, fmt.Errorf("unknown source kind %q", sc.Kind)
		}
	}
	return out, nil
}

// renamedSource overrides a source's name so the config can partition
// the index under its own label. Watchability does not pass through;
// only directory sources are watchable and they carry their own name.
type renamedSource struct {
	item.Source
	name string
}

func (r renamedSource) Name() string { return r.name }

// DefaultRegistry returns the converter registry covering the built-in
// item types. TextConverter last keeps the registry total.
func DefaultRegistry() *item.Registry {
	return item.NewRegistry(
		FileConverter{},
		ExecutableConverter{},
		item.TextConverter{},
	)
}

// DefaultActions returns the built-in action set in dispatch order.
func DefaultActions() []item.Action {
	return []item.Action{Browse{}, ShowPath{}}
}
