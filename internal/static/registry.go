package static

import "fmt"

// Registry holds the static checks an evaluator runs. Callers build
// one explicitly so tests can register subsets.
type Registry struct {
	checks []Check
	byID   map[string]Check
}

// NewRegistry returns a registry with every built-in check: the
// declarative frontmatter schema plus the hand-written naming,
// description, and content checks.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]Check)}
	for _, rule := range frontmatterSchema {
		r.mustRegister(fieldRuleCheck{rule: rule})
	}
	for _, c := range []Check{
		NameMatchesDirectory{},
		DescriptionIncludesTriggers{},
		BodyNotEmpty{},
		LineBudget{},
		HasExamples{},
		NoWindowsPaths{},
		NoTimeSensitive{},
		ReferenceDepth{},
		ReferencedFilesExist{},
	} {
		r.mustRegister(c)
	}
	return r
}

// Register adds a check. Duplicate IDs are rejected.
func (r *Registry) Register(c Check) error {
	id := c.Meta().ID
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("check %q is already registered", id)
	}
	r.byID[id] = c
	r.checks = append(r.checks, c)
	return nil
}

func (r *Registry) mustRegister(c Check) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Get returns the check with the given ID, or nil.
func (r *Registry) Get(id string) Check {
	return r.byID[id]
}

// All returns every registered check in registration order.
func (r *Registry) All() []Check {
	return r.checks
}
