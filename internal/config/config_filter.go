package config

import (
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
)

const FilterTypePost = "FILTER_TYPE_POST"

type Filter struct {
	Type      string `yaml:"type" validate:"oneof=FILTER_TYPE_POST"`
	Condition string `yaml:"condition" validate:"required"`

	once       sync.Once
	program    *vm.Program
	compileErr error
}

// NewPostFilter returns a filter evaluated against [FilterPostEnv].
func NewPostFilter(condition string) *Filter {
	return &Filter{Type: FilterTypePost, Condition: condition}
}

// FilterPostEnv is the environment a post is converted to before
// evaluating a filter.
//
// The `expr` tag is used to map the field to the corresponding variable.
// Without it, all variables start with capitalized letters.
type FilterPostEnv struct {
	ID        string    `expr:"id"`
	Title     string    `expr:"title"`
	Slug      string    `expr:"slug"`
	Author    string    `expr:"author"`
	Published bool      `expr:"published"`
	HasCover  bool      `expr:"has_cover"`
	Words     int       `expr:"words"`
	CreatedAt time.Time `expr:"created_at"`
}

// Evaluate compiles the condition on first use against the type of env.
// Later calls must pass an env of the same type.
func (f *Filter) Evaluate(env interface{}) (bool, error) {
	f.once.Do(func() {
		program, err := expr.Compile(
			f.Condition,
			expr.Env(env),
			expr.AsBool(),
		)
		f.program, f.compileErr = program, errors.Wrap(err, "failed to compile filter program")
	})

	if f.program == nil {
		return false, f.compileErr
	}

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, errors.Wrap(err, "failed to run filter program")
	}
	return result.(bool), nil
}

// MatchAll reports whether env satisfies every filter.
func MatchAll(filters []*Filter, env interface{}) (bool, error) {
	for _, f := range filters {
		ok, err := f.Evaluate(env)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
