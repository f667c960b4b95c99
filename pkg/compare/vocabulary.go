package compare

import (
	"fmt"
	"strings"
)

// Built-in comparator names, as used in Vocabulary.Disabled.
const (
	NameRegex     = "regex"
	NameIgnore    = "ignore"
	NameTolerance = "tolerance"
	NameUnordered = "unordered"
	NameContains  = "contains"
	NameType      = "type"
	NameUUID      = "uuid"
	NameSchema    = "schema"
	NamePredicate = "predicate"
)

// Vocabulary is the set of keywords fixture authors write. An empty
// keyword falls back to the built-in default.
type Vocabulary struct {
	Regex     string
	Ignore    string
	Tolerance string
	Unordered string
	Contains  string
	Type      string
	UUID      string
	Schema    string
	Predicate string

	// Disabled lists built-in comparator names to leave out.
	Disabled []string
}

// DefaultVocabulary returns the built-in keywords.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Regex:     KeywordRegex,
		Ignore:    KeywordIgnore,
		Tolerance: KeywordTolerance,
		Unordered: KeywordUnordered,
		Contains:  KeywordContains,
		Type:      KeywordType,
		UUID:      KeywordUUID,
		Schema:    KeywordSchema,
		Predicate: KeywordPredicate,
	}
}

// BuiltinNames lists the built-in comparator names in resolution order.
func BuiltinNames() []string {
	return []string{
		NameRegex, NameIgnore, NameTolerance, NameUnordered, NameContains,
		NameType, NameUUID, NameSchema, NamePredicate,
	}
}

// BuildRegistry builds a registry from v followed by extra comparators.
func BuildRegistry(v Vocabulary, extra ...KeywordComparator) (*Registry, error) {
	disabled := make(map[string]bool, len(v.Disabled))
	for _, name := range v.Disabled {
		n := strings.ToLower(strings.TrimSpace(name))
		if !isBuiltinName(n) {
			return nil, &ConfigError{Err: fmt.Errorf("unknown comparator %q in disabled list", name)}
		}
		disabled[n] = true
	}

	builtins := []struct {
		name string
		make func() KeywordComparator
	}{
		{NameRegex, func() KeywordComparator { return NewRegexComparator(v.Regex) }},
		{NameIgnore, func() KeywordComparator { return NewIgnoreComparator(v.Ignore) }},
		{NameTolerance, func() KeywordComparator { return NewToleranceComparator(v.Tolerance) }},
		{NameUnordered, func() KeywordComparator { return NewUnorderedArrayComparator(v.Unordered) }},
		{NameContains, func() KeywordComparator { return NewContainsArrayComparator(v.Contains) }},
		{NameType, func() KeywordComparator { return NewTypeComparator(v.Type) }},
		{NameUUID, func() KeywordComparator { return NewUUIDComparator(v.UUID) }},
		{NameSchema, func() KeywordComparator { return NewSchemaComparator(v.Schema) }},
		{NamePredicate, func() KeywordComparator { return NewPredicateComparator(v.Predicate) }},
	}
	comparators := make([]KeywordComparator, 0, len(builtins)+len(extra))
	for _, b := range builtins {
		if disabled[b.name] {
			continue
		}
		comparators = append(comparators, b.make())
	}
	comparators = append(comparators, extra...)
	return NewRegistry(comparators...)
}

func isBuiltinName(n string) bool {
	for _, b := range BuiltinNames() {
		if b == n {
			return true
		}
	}
	return false
}
