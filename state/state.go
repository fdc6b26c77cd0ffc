// Package state implements the engine's keyed attribute bag and its
// partial-equality "match" predicate. A State is an insertion-ordered list of
// named slots; the empty string is a distinguished "unnamed" key used by
// callers that only ever carry a single scalar (the common compartmental-model
// case: {"": "S"}).
package state

import "fmt"

// Kind tags the scalar type carried by a Value. Matching is type-exact: a
// Kind mismatch never compares equal, even when the underlying numbers would.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
	KindPredicate
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindPredicate:
		return "predicate"
	default:
		return "unknown"
	}
}

// Predicate is invoked with the state's value for the matching key; its
// boolean result stands in for an equality check.
type Predicate func(Value) bool

// Value is the sum type a State entry carries: an integer vector, a
// floating vector, a string vector, or (only meaningful inside a rule) a
// predicate over the state's own value at that key.
type Value struct {
	Kind    Kind
	Ints    []int64
	Floats  []float64
	Strings []string
	Pred    Predicate
}

// Ints builds an integer-vector value.
func Ints(vs ...int64) Value { return Value{Kind: KindInt, Ints: append([]int64(nil), vs...)} }

// Floats builds a floating-vector value.
func Floats(vs ...float64) Value {
	return Value{Kind: KindFloat, Floats: append([]float64(nil), vs...)}
}

// StringsValue builds a string-vector value.
func StringsValue(vs ...string) Value {
	return Value{Kind: KindString, Strings: append([]string(nil), vs...)}
}

// PredicateValue wraps a predicate for use as a rule entry. It is never a
// valid value inside an agent's own state, only inside a rule passed to
// Match.
func PredicateValue(p Predicate) Value { return Value{Kind: KindPredicate, Pred: p} }

// Entry is one named (or unnamed, Key == "") slot of a State.
type Entry struct {
	Key   string
	Value Value
}

// Str builds a single-string Entry, the common compartmental-model shape
// ({"status": "I"}).
func Str(key, value string) Entry { return Entry{Key: key, Value: StringsValue(value)} }

// Int builds a single-int Entry.
func Int(key string, value int64) Entry { return Entry{Key: key, Value: Ints(value)} }

// Float builds a single-float Entry.
func Float(key string, value float64) Entry { return Entry{Key: key, Value: Floats(value)} }

// PredicateEntry builds a rule entry whose match is delegated to p.
func PredicateEntry(key string, p Predicate) Entry { return Entry{Key: key, Value: PredicateValue(p)} }

// State is an insertion-ordered, keyed attribute bag.
type State struct {
	entries []Entry
	index   map[string]int // only for named (Key != "") entries
}

// New assembles a State from a list of entries, later entries overwriting
// earlier ones that share a key (or, for unnamed entries, the first unnamed
// slot already present).
func New(entries ...Entry) State {
	var s State
	for _, e := range entries {
		s = s.set(e)
	}
	return s
}

// Empty returns the zero State, used as the "just left" state on Agent.leave
// and as the "from" state of a freshly attached agent.
func Empty() State { return State{} }

// Len reports the number of entries.
func (s State) Len() int { return len(s.entries) }

// Entries returns the entries in insertion order. The caller must not
// mutate the returned slice.
func (s State) Entries() []Entry { return s.entries }

// Get returns the value stored at key, and whether it was present.
func (s State) Get(key string) (Value, bool) {
	if key == "" {
		if idx := s.unnamedIndex(); idx >= 0 {
			return s.entries[idx].Value, true
		}
		return Value{}, false
	}
	if s.index == nil {
		return Value{}, false
	}
	idx, ok := s.index[key]
	if !ok {
		return Value{}, false
	}
	return s.entries[idx].Value, true
}

func (s State) unnamedIndex() int {
	for i, e := range s.entries {
		if e.Key == "" {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy of s.
func (s State) Clone() State {
	out := State{entries: append([]Entry(nil), s.entries...)}
	if s.index != nil {
		out.index = make(map[string]int, len(s.index))
		for k, v := range s.index {
			out.index[k] = v
		}
	}
	return out
}

// set overwrites (or appends) a single entry, returning the updated State.
// It implements the per-entry half of Merge.
func (s State) set(e Entry) State {
	out := s.Clone()
	if e.Key == "" {
		if idx := out.unnamedIndex(); idx >= 0 {
			out.entries[idx] = e
			return out
		}
		out.entries = append(out.entries, e)
		return out
	}
	if out.index == nil {
		out.index = make(map[string]int)
	}
	if idx, ok := out.index[e.Key]; ok {
		out.entries[idx] = e
		return out
	}
	out.index[e.Key] = len(out.entries)
	out.entries = append(out.entries, e)
	return out
}

// Merge overwrites s's named slots with those in other (and, for an unnamed
// entry in other, the first unnamed slot of s, appending if none exists).
// Merge is idempotent and right-biased: s.Merge(x).Merge(x) equals
// s.Merge(x), and s.Merge(x).Get(k) equals x.Get(k) for any k present in x.
func (s State) Merge(other State) State {
	out := s.Clone()
	for _, e := range other.entries {
		out = out.set(e)
	}
	return out
}

// Match reports whether every entry in rule agrees with s: named keys must
// be present in s with an element-wise equal value of the same Kind, or (if
// the rule's value is a predicate) must satisfy it; an unnamed entry in rule
// is checked against s's first unnamed slot. Match never errors; a missing
// key or a Kind mismatch simply fails the match.
func (s State) Match(rule State) bool {
	for _, re := range rule.entries {
		v, ok := s.Get(re.Key)
		if !ok {
			return false
		}
		if re.Value.Kind == KindPredicate {
			if re.Value.Pred == nil || !re.Value.Pred(v) {
				return false
			}
			continue
		}
		if !valuesEqual(v, re.Value) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindInt:
		return int64SliceEqual(a.Ints, b.Ints)
	case KindFloat:
		return float64SliceEqual(a.Floats, b.Floats)
	case KindString:
		return stringSliceEqual(a.Strings, b.Strings)
	default:
		return false
	}
}

func int64SliceEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func float64SliceEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders s for diagnostics; it is not a wire format.
func (s State) String() string {
	out := "{"
	for i, e := range s.entries {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%q: %v", e.Key, e.Value)
	}
	return out + "}"
}

// String renders a Value for diagnostics.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%v", v.Ints)
	case KindFloat:
		return fmt.Sprintf("%v", v.Floats)
	case KindString:
		return fmt.Sprintf("%v", v.Strings)
	case KindPredicate:
		return "<predicate>"
	default:
		return "<invalid>"
	}
}
