package chainconfig

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Unbounded is the End of the last ForkRule of a table
const Unbounded uint64 = math.MaxUint64

// ForkRule pairs the block number range [Start, End) with the rule set that
// applies to it. An End of Unbounded covers every height from Start on.
type ForkRule struct {
	Start uint64
	End   uint64
	Rules *RuleSet
}

// Name returns the name of the rule's rule set
func (rule *ForkRule) Name() string {
	return rule.Rules.Name
}

// Contains returns whether height is in the rule's range
func (rule *ForkRule) Contains(height uint64) bool {
	return height >= rule.Start && (rule.End == Unbounded || height < rule.End)
}

func (rule *ForkRule) String() string {
	if rule.End == Unbounded {
		return fmt.Sprintf("%s [%d, ∞)", rule.Name(), rule.Start)
	}
	return fmt.Sprintf("%s [%d, %d)", rule.Name(), rule.Start, rule.End)
}

// ForkTable maps every block number to exactly one ForkRule. It is
// validated at construction and read-only afterwards, so it may be shared
// by any number of chains.
type ForkTable struct {
	rules []ForkRule
}

// NewForkTable validates the given rules and returns a table over them.
// The rules must be ordered, start at zero, leave no gap or overlap and end
// with an Unbounded rule. Otherwise an ErrConfiguration is returned.
func NewForkTable(rules ...ForkRule) (*ForkTable, error) {
	if len(rules) == 0 {
		return nil, errors.Wrapf(ErrConfiguration, "fork table is empty")
	}
	if rules[0].Start != 0 {
		return nil, errors.Wrapf(ErrConfiguration, "fork table starts at %d instead of 0", rules[0].Start)
	}

	for i := range rules {
		rule := &rules[i]
		if rule.Rules == nil {
			return nil, errors.Wrapf(ErrConfiguration, "fork rule #%d has no rule set", i)
		}
		err := rule.Rules.validate()
		if err != nil {
			return nil, err
		}
		if rule.End <= rule.Start {
			return nil, errors.Wrapf(ErrConfiguration, "fork rule %s has an empty range", rule)
		}
		if i == 0 {
			continue
		}

		previous := &rules[i-1]
		if rule.Start < previous.End {
			return nil, errors.Wrapf(ErrConfiguration, "fork rule %s overlaps %s", rule, previous)
		}
		if rule.Start > previous.End {
			return nil, errors.Wrapf(ErrConfiguration, "gap between fork rule %s and %s", previous, rule)
		}
	}

	last := &rules[len(rules)-1]
	if last.End != Unbounded {
		return nil, errors.Wrapf(ErrConfiguration, "fork table ends at %d and does not cover later heights",
			last.End)
	}

	return &ForkTable{rules: append([]ForkRule(nil), rules...)}, nil
}

// Activation is a rule set and the block number it activates at
type Activation struct {
	Block uint64
	Rules *RuleSet
}

// NewForkTableFromActivations builds a fork table in which each rule set
// applies from its activation block until the next activation
func NewForkTableFromActivations(activations ...Activation) (*ForkTable, error) {
	rules := make([]ForkRule, len(activations))
	for i, activation := range activations {
		end := Unbounded
		if i+1 < len(activations) {
			end = activations[i+1].Block
		}
		rules[i] = ForkRule{Start: activation.Block, End: end, Rules: activation.Rules}
	}
	return NewForkTable(rules...)
}

func mustNewForkTable(activations ...Activation) *ForkTable {
	forkTable, err := NewForkTableFromActivations(activations...)
	if err != nil {
		panic(fmt.Sprintf("failed to build fork table: %+v", err))
	}
	return forkTable
}

// RuleFor returns the fork rule that applies to the given height
func (table *ForkTable) RuleFor(height uint64) *ForkRule {
	i := sort.Search(len(table.rules), func(i int) bool {
		return table.rules[i].End == Unbounded || table.rules[i].End > height
	})
	return &table.rules[i]
}

// Rules returns a copy of the table's rules, ordered by height
func (table *ForkTable) Rules() []ForkRule {
	return append([]ForkRule(nil), table.rules...)
}
