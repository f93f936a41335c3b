package dbx

import (
	"fmt"
	"strings"
)

// Builder accumulates parameterized WHERE conditions with Postgres-style
// numbered placeholders. Each enumerated filter field maps to exactly one
// clause; no SQL fragment ever contains caller data directly.
type Builder struct {
	conds []string
	args  []any
}

// Bind appends v to the argument list and returns its placeholder ("$1", ...).
func (b *Builder) Bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// Where adds a ready condition. Placeholders inside it must come from Bind.
func (b *Builder) Where(cond string) {
	b.conds = append(b.conds, cond)
}

// Wheref binds each arg in order and substitutes the resulting placeholders
// for the "?" markers in cond, then adds the condition.
func (b *Builder) Wheref(cond string, args ...any) {
	for _, a := range args {
		cond = strings.Replace(cond, "?", b.Bind(a), 1)
	}
	b.conds = append(b.conds, cond)
}

// Clause renders " WHERE c1 AND c2 ..." or "" when no conditions were added.
func (b *Builder) Clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// Args returns the bound arguments in placeholder order.
func (b *Builder) Args() []any {
	return b.args
}
