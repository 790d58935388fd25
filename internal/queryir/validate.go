package queryir

import "fmt"

// ValidationResult contains the structural analysis of a plan.
type ValidationResult struct {
	// OK indicates the plan satisfies the tree-shape invariants the
	// emitters rely on.
	OK bool

	// Problems lists every violated invariant. Empty when OK is true.
	Problems []string
}

// Validate checks the tree-shape invariants of a built plan:
//
//  1. Project is the topmost node and appears nowhere else.
//  2. Group appears at most once, directly under Project.
//  3. Filter appears at most once, below any Group.
//  4. Only Scan and Join appear below a Join.
//  5. Filter predicates are non-nil, Group has at least one key, Project
//     has at least one column, and scan aliases are unique.
//
// Build always produces plans that pass; Validate exists so tests and
// future plan transformations can prove they kept the shape. Pure function,
// no side effects.
func Validate(plan *Project) ValidationResult {
	v := &planValidator{seenAliases: make(map[string]bool)}
	if plan == nil {
		v.addProblem("nil plan")
	} else {
		if len(plan.Columns) == 0 {
			v.addProblem("Project has no columns")
		}
		v.validateUnderProject(plan.Input)
	}
	return ValidationResult{OK: len(v.problems) == 0, Problems: v.problems}
}

type planValidator struct {
	problems    []string
	seenAliases map[string]bool
}

func (v *planValidator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *planValidator) validateUnderProject(p Plan) {
	switch node := p.(type) {
	case Group:
		if len(node.Keys) == 0 {
			v.addProblem("Group has no keys")
		}
		v.validateUnderGroup(node.Input)
	default:
		v.validateUnderGroup(p)
	}
}

func (v *planValidator) validateUnderGroup(p Plan) {
	switch node := p.(type) {
	case Filter:
		if node.Pred == nil {
			v.addProblem("Filter has nil predicate")
		}
		v.validateSource(node.Input)
	case Group:
		v.addProblem("Group nested below another Group")
	case Project:
		v.addProblem("Project nested below the top level")
	default:
		v.validateSource(p)
	}
}

func (v *planValidator) validateSource(p Plan) {
	switch node := p.(type) {
	case Scan:
		if node.Relation == "" {
			v.addProblem("Scan with empty relation")
		}
		if v.seenAliases[node.Alias] {
			v.addProblem("duplicate scan alias %q", node.Alias)
		}
		v.seenAliases[node.Alias] = true
	case Join:
		v.validateSource(node.Left)
		v.validateSource(node.Right)
	case Filter:
		v.addProblem("Filter nested below a join source")
	case Group:
		v.addProblem("Group nested below a join source")
	case Project:
		v.addProblem("Project nested below a join source")
	default:
		v.addProblem("unknown plan node %T", p)
	}
}
