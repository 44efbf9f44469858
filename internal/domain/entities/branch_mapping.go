package entities

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrDuplicateDownstream is returned when two pairs target the same downstream branch.
var ErrDuplicateDownstream = errors.New("duplicate downstream branch in branch mapping")

// BranchPair maps an upstream branch onto the downstream branch it is merged into.
type BranchPair struct {
	Upstream   string `yaml:"upstream"`
	Downstream string `yaml:"downstream"`
}

func (p BranchPair) String() string {
	return fmt.Sprintf("upstream/%s -> %s", p.Upstream, p.Downstream)
}

// BranchMapping is the ordered list of pairs to synchronize. Order is
// processing order and is preserved from the configuration file.
type BranchMapping []BranchPair

// NewBranchMapping builds a mapping and rejects duplicate downstream branches.
func NewBranchMapping(pairs ...BranchPair) (BranchMapping, error) {
	mapping := make(BranchMapping, 0, len(pairs))
	seen := make(map[string]struct{}, len(pairs))
	for _, pair := range pairs {
		if pair.Upstream == "" || pair.Downstream == "" {
			return nil, fmt.Errorf("branch pair %q -> %q must name both branches", pair.Upstream, pair.Downstream)
		}
		if _, ok := seen[pair.Downstream]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateDownstream, pair.Downstream)
		}
		seen[pair.Downstream] = struct{}{}
		mapping = append(mapping, pair)
	}
	return mapping, nil
}

// UnmarshalYAML accepts either a mapping (upstream: downstream, in file order)
// or a sequence of {upstream, downstream} objects.
func (m *BranchMapping) UnmarshalYAML(value *yaml.Node) error {
	var pairs []BranchPair

	switch value.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			var upstream, downstream string
			if err := value.Content[i].Decode(&upstream); err != nil {
				return fmt.Errorf("line %d: invalid upstream branch: %w", value.Content[i].Line, err)
			}
			if err := value.Content[i+1].Decode(&downstream); err != nil {
				return fmt.Errorf("line %d: invalid downstream branch: %w", value.Content[i+1].Line, err)
			}
			pairs = append(pairs, BranchPair{Upstream: upstream, Downstream: downstream})
		}
	case yaml.SequenceNode:
		if err := value.Decode(&pairs); err != nil {
			return fmt.Errorf("line %d: invalid branch list: %w", value.Line, err)
		}
	default:
		return fmt.Errorf("line %d: branches must be a mapping or a list", value.Line)
	}

	mapping, err := NewBranchMapping(pairs...)
	if err != nil {
		return err
	}
	*m = mapping
	return nil
}
