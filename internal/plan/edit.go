package plan

import (
	"errors"
	"fmt"
)

// ErrLastChild is returned when removing a node would leave its parent
// without children.
var ErrLastChild = errors.New("cannot remove the last child")

// weightRef resolves a node path to a pointer at its weight.
func (p *Plan) weightRef(path Path) (*Weight, error) {
	if path.IsField() {
		segs := path.Segments()
		if name := segs[len(segs)-1].Name; name != "weight" {
			return nil, fmt.Errorf("%w %q: field %q is not a weight", ErrInvalidPath, path.String(), name)
		}
	}
	idx, err := nodeIndexes(path)
	if err != nil {
		return nil, err
	}

	if idx[0] >= len(p.Objectives) {
		return nil, fmt.Errorf("%w: %s", ErrIndexOutOfRange, path.String())
	}
	obj := &p.Objectives[idx[0]]
	if len(idx) == 1 {
		return &obj.Weight, nil
	}
	if idx[1] >= len(obj.StrategicActions) {
		return nil, fmt.Errorf("%w: %s", ErrIndexOutOfRange, path.String())
	}
	act := &obj.StrategicActions[idx[1]]
	if len(idx) == 2 {
		return &act.Weight, nil
	}
	if idx[2] >= len(act.Metrics) {
		return nil, fmt.Errorf("%w: %s", ErrIndexOutOfRange, path.String())
	}
	met := &act.Metrics[idx[2]]
	if len(idx) == 3 {
		return &met.Weight, nil
	}
	if idx[3] >= len(met.MainTasks) {
		return nil, fmt.Errorf("%w: %s", ErrIndexOutOfRange, path.String())
	}
	return &met.MainTasks[idx[3]].Weight, nil
}

// WeightAt returns the weight of the node addressed by path. The path may
// end with a "weight" field segment.
func (p *Plan) WeightAt(path Path) (Weight, error) {
	ref, err := p.weightRef(path)
	if err != nil {
		return "", err
	}
	return *ref, nil
}

// SetWeight overwrites the weight of the node addressed by path.
func (p *Plan) SetWeight(path Path, w Weight) error {
	ref, err := p.weightRef(path)
	if err != nil {
		return err
	}
	*ref = w
	return nil
}

// ChildPaths returns the node paths of every child under a branch point.
func (p *Plan) ChildPaths(branch Path) ([]Path, error) {
	if !branch.IsBranch() {
		return nil, fmt.Errorf("%w %q: not a branch point", ErrInvalidPath, branch.String())
	}
	segs := branch.Segments()
	parent := Path{segments: segs[:len(segs)-1]}

	var count int
	if parent.Len() == 0 {
		if segs[0].Kind != SegmentObjectives {
			return nil, fmt.Errorf("%w %q", ErrInvalidPath, branch.String())
		}
		count = len(p.Objectives)
	} else {
		idx, err := nodeIndexes(parent)
		if err != nil {
			return nil, err
		}
		if segs[len(segs)-1].Kind != SegmentKind(len(idx)) {
			return nil, fmt.Errorf("%w %q", ErrInvalidPath, branch.String())
		}
		count, err = p.childCount(idx)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, branch.String())
		}
	}

	kind := segs[len(segs)-1].Kind
	paths := make([]Path, count)
	for i := range paths {
		paths[i] = parent.with(Segment{Kind: kind, Index: i})
	}
	return paths, nil
}

func (p *Plan) childCount(idx []int) (int, error) {
	if idx[0] >= len(p.Objectives) {
		return 0, ErrIndexOutOfRange
	}
	obj := p.Objectives[idx[0]]
	if len(idx) == 1 {
		return len(obj.StrategicActions), nil
	}
	if idx[1] >= len(obj.StrategicActions) {
		return 0, ErrIndexOutOfRange
	}
	act := obj.StrategicActions[idx[1]]
	if len(idx) == 2 {
		return len(act.Metrics), nil
	}
	if idx[2] >= len(act.Metrics) {
		return 0, ErrIndexOutOfRange
	}
	met := act.Metrics[idx[2]]
	if len(idx) == 3 {
		return len(met.MainTasks), nil
	}
	return 0, ErrInvalidPath
}

// AddObjective appends a blank objective and returns its path.
func (p *Plan) AddObjective() Path {
	p.Objectives = append(p.Objectives, newObjective())
	return Root().Objective(len(p.Objectives) - 1)
}

// AddAction appends a blank strategic action to objective o.
func (p *Plan) AddAction(o int) (Path, error) {
	obj, err := p.objective(o)
	if err != nil {
		return Path{}, err
	}
	obj.StrategicActions = append(obj.StrategicActions, newAction())
	return Root().Objective(o).Action(len(obj.StrategicActions) - 1), nil
}

// AddMetric appends a blank metric to action a of objective o.
func (p *Plan) AddMetric(o, a int) (Path, error) {
	act, err := p.action(o, a)
	if err != nil {
		return Path{}, err
	}
	act.Metrics = append(act.Metrics, newMetric())
	return Root().Objective(o).Action(a).Metric(len(act.Metrics) - 1), nil
}

// AddTask appends a blank main task to metric m.
func (p *Plan) AddTask(o, a, m int) (Path, error) {
	met, err := p.metric(o, a, m)
	if err != nil {
		return Path{}, err
	}
	met.MainTasks = append(met.MainTasks, Task{})
	return Root().Objective(o).Action(a).Metric(m).Task(len(met.MainTasks) - 1), nil
}

// RemoveObjective deletes objective i unless it is the only one.
func (p *Plan) RemoveObjective(i int) error {
	objectives, err := removeAt(p.Objectives, i)
	if err != nil {
		return fmt.Errorf("remove objective %d: %w", i, err)
	}
	p.Objectives = objectives
	return nil
}

// RemoveAction deletes strategic action a of objective o unless it is the
// only one.
func (p *Plan) RemoveAction(o, a int) error {
	obj, err := p.objective(o)
	if err != nil {
		return err
	}
	actions, err := removeAt(obj.StrategicActions, a)
	if err != nil {
		return fmt.Errorf("remove action %d of objective %d: %w", a, o, err)
	}
	obj.StrategicActions = actions
	return nil
}

// RemoveMetric deletes metric m unless it is the only one.
func (p *Plan) RemoveMetric(o, a, m int) error {
	act, err := p.action(o, a)
	if err != nil {
		return err
	}
	metrics, err := removeAt(act.Metrics, m)
	if err != nil {
		return fmt.Errorf("remove metric %d: %w", m, err)
	}
	act.Metrics = metrics
	return nil
}

// RemoveTask deletes main task t unless it is the only one.
func (p *Plan) RemoveTask(o, a, m, t int) error {
	met, err := p.metric(o, a, m)
	if err != nil {
		return err
	}
	tasks, err := removeAt(met.MainTasks, t)
	if err != nil {
		return fmt.Errorf("remove task %d: %w", t, err)
	}
	met.MainTasks = tasks
	return nil
}

func removeAt[T any](items []T, i int) ([]T, error) {
	if i < 0 || i >= len(items) {
		return nil, ErrIndexOutOfRange
	}
	if len(items) == 1 {
		return nil, ErrLastChild
	}
	return append(items[:i:i], items[i+1:]...), nil
}

func (p *Plan) objective(o int) (*Objective, error) {
	if o < 0 || o >= len(p.Objectives) {
		return nil, fmt.Errorf("objective %d: %w", o, ErrIndexOutOfRange)
	}
	return &p.Objectives[o], nil
}

func (p *Plan) action(o, a int) (*Action, error) {
	obj, err := p.objective(o)
	if err != nil {
		return nil, err
	}
	if a < 0 || a >= len(obj.StrategicActions) {
		return nil, fmt.Errorf("action %d of objective %d: %w", a, o, ErrIndexOutOfRange)
	}
	return &obj.StrategicActions[a], nil
}

func (p *Plan) metric(o, a, m int) (*Metric, error) {
	act, err := p.action(o, a)
	if err != nil {
		return nil, err
	}
	if m < 0 || m >= len(act.Metrics) {
		return nil, fmt.Errorf("metric %d of action %d: %w", m, a, ErrIndexOutOfRange)
	}
	return &act.Metrics[m], nil
}
