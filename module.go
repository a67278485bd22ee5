package fuse

import "github.com/pkg/errors"

// Module groups named Circuits under a designated entry point. Circuit
// order is insertion order, preserved so that passes and serialization see
// a deterministic traversal.
type Module struct {
	Entry string

	circuits map[string]*Circuit
	order    []string
}

// NewModule returns an empty Module with the given entry circuit name. The
// entry circuit need not exist yet; AddCircuit fills it in.
func NewModule(entry string) *Module {
	return &Module{Entry: entry, circuits: make(map[string]*Circuit)}
}

// AddCircuit inserts c under its own Name, replacing any existing circuit
// of the same name in place (preserving its position in Order).
func (m *Module) AddCircuit(c *Circuit) {
	if _, exists := m.circuits[c.Name]; !exists {
		m.order = append(m.order, c.Name)
	}
	m.circuits[c.Name] = c
}

// Circuit returns the named circuit, and whether it is present.
func (m *Module) Circuit(name string) (*Circuit, bool) {
	c, ok := m.circuits[name]
	return c, ok
}

// EntryCircuit returns the module's entry-point circuit.
func (m *Module) EntryCircuit() (*Circuit, bool) {
	return m.Circuit(m.Entry)
}

// Order returns circuit names in insertion order.
func (m *Module) Order() []string {
	return append([]string(nil), m.order...)
}

// Len returns the number of circuits in the module.
func (m *Module) Len() int {
	return len(m.order)
}

// RemoveCircuit deletes the named circuit. Removing the entry circuit is
// permitted; callers that do so must set a new Entry before relying on
// EntryCircuit again.
func (m *Module) RemoveCircuit(name string) {
	if _, ok := m.circuits[name]; !ok {
		return
	}
	delete(m.circuits, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// CallGraph returns, for every circuit name, the set of circuit names it
// calls directly via CallSubcircuit nodes. It is computed on demand, never
// cached, since passes mutate circuits (and their call sets) in place.
func (m *Module) CallGraph() map[string]map[string]struct{} {
	graph := make(map[string]map[string]struct{}, len(m.order))
	for _, name := range m.order {
		c := m.circuits[name]
		callees := make(map[string]struct{})
		for _, n := range c.Nodes() {
			if n.Op == CallSubcircuit {
				callees[n.Subcircuit] = struct{}{}
			}
		}
		graph[name] = callees
	}
	return graph
}

// CheckCallGraph verifies that every CallSubcircuit node in the module
// names a circuit that exists in the module, returning
// ErrMissingSubcircuit wrapped with the offending names otherwise.
func (m *Module) CheckCallGraph() error {
	for _, name := range m.order {
		c := m.circuits[name]
		for _, n := range c.Nodes() {
			if n.Op != CallSubcircuit {
				continue
			}
			if _, ok := m.circuits[n.Subcircuit]; !ok {
				return errors.Wrapf(ErrMissingSubcircuit, "circuit %q calls undefined subcircuit %q", name, n.Subcircuit)
			}
		}
	}
	return nil
}
