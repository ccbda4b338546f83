package plan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidPath indicates a path that does not follow the plan structure.
	ErrInvalidPath = errors.New("invalid plan path")

	// ErrIndexOutOfRange indicates a path or edit index past the end of a collection.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// SegmentKind identifies the level a path segment addresses.
type SegmentKind int

const (
	SegmentObjectives SegmentKind = iota
	SegmentActions
	SegmentMetrics
	SegmentTasks
	SegmentField
)

var collectionNames = [...]string{
	SegmentObjectives: "objectives",
	SegmentActions:    "strategicActions",
	SegmentMetrics:    "metrics",
	SegmentTasks:      "mainTasks",
}

// String returns the serialized collection name for the kind.
func (k SegmentKind) String() string {
	if k >= SegmentObjectives && k <= SegmentTasks {
		return collectionNames[k]
	}
	if k == SegmentField {
		return "field"
	}
	return "unknown"
}

// Segment is one step of a Path. Index is -1 when the segment addresses a
// whole collection rather than one of its elements; Name is only set for
// field segments.
type Segment struct {
	Kind  SegmentKind
	Index int
	Name  string
}

// Path addresses a branch point, a node or a field of a plan. Paths are
// immutable; every builder returns a new value.
type Path struct {
	segments []Segment
}

// Root returns the empty path, which addresses the plan itself.
func Root() Path {
	return Path{}
}

func (p Path) with(seg Segment) Path {
	segments := make([]Segment, len(p.segments), len(p.segments)+1)
	copy(segments, p.segments)
	return Path{segments: append(segments, seg)}
}

// Objectives addresses the objective collection of the plan.
func (p Path) Objectives() Path { return p.with(Segment{Kind: SegmentObjectives, Index: -1}) }

// Objective addresses objective i.
func (p Path) Objective(i int) Path { return p.with(Segment{Kind: SegmentObjectives, Index: i}) }

// Actions addresses the strategic action collection of an objective.
func (p Path) Actions() Path { return p.with(Segment{Kind: SegmentActions, Index: -1}) }

// Action addresses strategic action j of an objective.
func (p Path) Action(j int) Path { return p.with(Segment{Kind: SegmentActions, Index: j}) }

// Metrics addresses the metric collection of an action.
func (p Path) Metrics() Path { return p.with(Segment{Kind: SegmentMetrics, Index: -1}) }

// Metric addresses metric k of an action.
func (p Path) Metric(k int) Path { return p.with(Segment{Kind: SegmentMetrics, Index: k}) }

// Tasks addresses the main task collection of a metric.
func (p Path) Tasks() Path { return p.with(Segment{Kind: SegmentTasks, Index: -1}) }

// Task addresses main task t of a metric.
func (p Path) Task(t int) Path { return p.with(Segment{Kind: SegmentTasks, Index: t}) }

// Field addresses a named scalar field of the node at p.
func (p Path) Field(name string) Path { return p.with(Segment{Kind: SegmentField, Index: -1, Name: name}) }

// Weight addresses the weight field of the node at p.
func (p Path) Weight() Path { return p.Field("weight") }

// Segments returns a copy of the path segments.
func (p Path) Segments() []Segment {
	return append([]Segment(nil), p.segments...)
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p.segments)
}

// IsBranch reports whether the path ends at a child collection.
func (p Path) IsBranch() bool {
	if len(p.segments) == 0 {
		return false
	}
	last := p.segments[len(p.segments)-1]
	return last.Kind != SegmentField && last.Index < 0
}

// IsField reports whether the path ends at a named field.
func (p Path) IsField() bool {
	return len(p.segments) > 0 && p.segments[len(p.segments)-1].Kind == SegmentField
}

// Node returns the path with any trailing field segment removed.
func (p Path) Node() Path {
	if p.IsField() {
		return Path{segments: p.segments[:len(p.segments)-1]}
	}
	return p
}

// Equal reports whether two paths address the same location.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// String renders the path in dot/bracket form, for example
// "objectives[0].strategicActions[1].metrics".
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p.segments {
		if i > 0 {
			b.WriteByte('.')
		}
		if seg.Kind == SegmentField {
			b.WriteString(seg.Name)
			continue
		}
		b.WriteString(seg.Kind.String())
		if seg.Index >= 0 {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := ParsePath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePath parses the dot/bracket form produced by Path.String. Collection
// segments must appear in tree order and only the last segment may be
// unindexed or a field.
func ParsePath(value string) (Path, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Root(), nil
	}

	parts := strings.Split(trimmed, ".")
	path := Root()
	expected := SegmentObjectives
	for i, part := range parts {
		last := i == len(parts)-1
		name, index, indexed, err := splitSegment(part)
		if err != nil {
			return Path{}, fmt.Errorf("%w %q: %v", ErrInvalidPath, value, err)
		}

		kind, isCollection := collectionKind(name)
		if !isCollection {
			if indexed || !last {
				return Path{}, fmt.Errorf("%w %q: unknown collection %q", ErrInvalidPath, value, name)
			}
			path = path.Field(name)
			break
		}
		if kind != expected {
			return Path{}, fmt.Errorf("%w %q: %s cannot follow %s", ErrInvalidPath, value, name, path.String())
		}
		if !indexed {
			if !last {
				return Path{}, fmt.Errorf("%w %q: %s must be indexed", ErrInvalidPath, value, name)
			}
			path = path.with(Segment{Kind: kind, Index: -1})
			break
		}
		path = path.with(Segment{Kind: kind, Index: index})
		expected = kind + 1
	}
	return path, nil
}

func splitSegment(part string) (name string, index int, indexed bool, err error) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		if part == "" {
			return "", 0, false, errors.New("empty segment")
		}
		return part, -1, false, nil
	}
	if !strings.HasSuffix(part, "]") || open == 0 {
		return "", 0, false, fmt.Errorf("malformed segment %q", part)
	}
	index, err = strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil || index < 0 {
		return "", 0, false, fmt.Errorf("malformed index in %q", part)
	}
	return part[:open], index, true, nil
}

func collectionKind(name string) (SegmentKind, bool) {
	for kind, collection := range collectionNames {
		if collection == name {
			return SegmentKind(kind), true
		}
	}
	return 0, false
}

// nodeIndexes returns the element indexes of a node path (no collection or
// field segments), in tree order.
func nodeIndexes(p Path) ([]int, error) {
	node := p.Node()
	indexes := make([]int, 0, len(node.segments))
	for i, seg := range node.segments {
		if seg.Kind != SegmentKind(i) || seg.Index < 0 {
			return nil, fmt.Errorf("%w %q: not a node path", ErrInvalidPath, p.String())
		}
		indexes = append(indexes, seg.Index)
	}
	if len(indexes) == 0 {
		return nil, fmt.Errorf("%w %q: plan root has no weight", ErrInvalidPath, p.String())
	}
	return indexes, nil
}
