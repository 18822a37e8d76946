package todo

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

const (
	namePlaceholderPrefix  = "#"
	valuePlaceholderPrefix = ":"
	setClausePrefix        = "SET "
)

// reservedWords collide with the item store's expression grammar and must be
// referenced through a name placeholder. Read-only after init.
var reservedWords = map[string]struct{}{
	AttrName:          {},
	AttrDone:          {},
	AttrDueDate:       {},
	AttrAttachmentURL: {},
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Fields maps attribute names to their new values.
type Fields map[string]any

// CompiledUpdate is a SET mutation ready for the item store.
type CompiledUpdate struct {
	// Expression is the full update expression, e.g. "SET #name = :name".
	Expression string
	// Names maps each placeholder (or the bare name when no alias is
	// needed) to the real attribute name.
	Names map[string]string
	// Values maps each value placeholder to its value.
	Values map[string]any
}

// IsReserved reports whether name must be aliased in an expression.
func IsReserved(name string) bool {
	_, ok := reservedWords[name]
	return ok
}

// Alias returns the expression token used to reference name.
func Alias(name string) string {
	if IsReserved(name) {
		return namePlaceholderPrefix + name
	}
	return name
}

func valuePlaceholder(name string) string {
	return valuePlaceholderPrefix + name
}

// CompileUpdate turns fields into a SET expression. Fields are emitted in
// name order so equal inputs always compile to identical output.
func CompileUpdate(fields Fields) (*CompiledUpdate, error) {
	if len(fields) == 0 {
		return nil, &UpdateError{Reason: ReasonNoFieldsProvided, Err: ErrNoFieldsProvided}
	}

	names := slices.Sorted(maps.Keys(fields))

	compiled := &CompiledUpdate{
		Names:  make(map[string]string, len(names)),
		Values: make(map[string]any, len(names)),
	}
	assignments := make([]string, 0, len(names))

	for _, name := range names {
		if !fieldNamePattern.MatchString(name) {
			return nil, &UpdateError{Reason: ReasonInvalidFieldName, Field: name, Err: ErrInvalidFieldName}
		}

		alias := Alias(name)
		placeholder := valuePlaceholder(name)

		compiled.Names[alias] = name
		compiled.Values[placeholder] = fields[name]
		assignments = append(assignments, alias+" = "+placeholder)
	}

	compiled.Expression = setClausePrefix + strings.Join(assignments, ", ")
	return compiled, nil
}

// Placeholders returns only the aliased entries of Names, which is what the
// store expects as expression attribute names.
func (c *CompiledUpdate) Placeholders() map[string]string {
	aliased := make(map[string]string)
	for alias, name := range c.Names {
		if strings.HasPrefix(alias, namePlaceholderPrefix) {
			aliased[alias] = name
		}
	}
	return aliased
}

// Apply sets every compiled value on item, keyed by real attribute name.
// It mirrors what the store does with the expression and is used to reason
// about update results without a store.
func (c *CompiledUpdate) Apply(item map[string]any) {
	for _, name := range c.Names {
		item[name] = c.Values[valuePlaceholder(name)]
	}
}
