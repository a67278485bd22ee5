package fsr

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/fuse-ir/fuse"
)

// commit greedily applies occurrences of the winning key, in discovery
// order, skipping any occurrence whose interior overlaps a previously
// committed one. It returns how many occurrences were committed and the
// names of any new subcircuits it created.
func commit(c *fuse.Circuit, m *fuse.Module, key string, occs []candidate) (int, []string, error) {
	consumed := make(map[fuse.NodeId]struct{})
	subName := patternName(key)
	var created []string
	committedCount := 0

	for _, occ := range occs {
		if overlaps(occ.interior, consumed) {
			continue
		}

		if _, exists := m.Circuit(subName); !exists {
			sub, err := buildSubcircuit(c, subName, occ)
			if err != nil {
				return 0, nil, err
			}
			m.AddCircuit(sub)
			created = append(created, subName)
		}

		rootNode, ok := c.Node(occ.root)
		if !ok {
			continue
		}
		// The root itself becomes the call site: it already follows every
		// leaf in topological order, and its consumers keep reading it at
		// offset 0.
		if err := c.SetInputs(occ.root, occ.leaves); err != nil {
			return 0, nil, err
		}
		rootNode.Op = fuse.CallSubcircuit
		rootNode.Subcircuit = subName

		for _, id := range occ.interior {
			consumed[id] = struct{}{}
		}
		committedCount++
	}

	return committedCount, created, nil
}

func overlaps(interior []fuse.NodeId, consumed map[fuse.NodeId]struct{}) bool {
	for _, id := range interior {
		if _, ok := consumed[id]; ok {
			return true
		}
	}
	return false
}

func patternName(key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return fmt.Sprintf("fsr_pattern_%08x", h.Sum32())
}

// buildSubcircuit copies occ's interior (in the original circuit's
// topological order) into a freshly built Circuit: one Input per leaf
// position, the interior's gates reconstructed in the same relative order
// with inputs rewired to the new Input/gate ids, and a single Output
// publishing the root's result.
func buildSubcircuit(c *fuse.Circuit, name string, occ candidate) (*fuse.Circuit, error) {
	sub := fuse.NewCircuit(name)

	leafIndex := make(map[fuse.Edge]int, len(occ.leaves))
	for i, l := range occ.leaves {
		leafIndex[l] = i
	}
	leafIDs := make([]fuse.NodeId, len(occ.leaves))
	for i, l := range occ.leaves {
		producer, ok := c.Node(l.Producer)
		if !ok {
			return nil, fmt.Errorf("fsr: leaf producer %d not found while building %q", l.Producer, name)
		}
		leafIDs[i] = sub.AddInput(fmt.Sprintf("in%d", i), producer.Outputs[l.Offset])
	}

	interiorSet := make(map[fuse.NodeId]struct{}, len(occ.interior))
	for _, id := range occ.interior {
		interiorSet[id] = struct{}{}
	}

	ordered := make([]fuse.NodeId, len(occ.interior))
	copy(ordered, occ.interior)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	remap := make(map[fuse.NodeId]fuse.NodeId, len(ordered))
	for _, origID := range ordered {
		n, ok := c.Node(origID)
		if !ok {
			return nil, fmt.Errorf("fsr: interior node %d not found while building %q", origID, name)
		}
		newInputs := make([]fuse.Edge, len(n.Inputs))
		for i, in := range n.Inputs {
			if idx, isLeaf := leafIndex[in]; isLeaf {
				newInputs[i] = fuse.Edge{Producer: leafIDs[idx]}
				continue
			}
			newProd, ok := remap[in.Producer]
			if !ok {
				return nil, fmt.Errorf("fsr: interior node %d references %d outside the pattern while building %q", origID, in.Producer, name)
			}
			newInputs[i] = fuse.Edge{Producer: newProd, Offset: in.Offset}
		}
		remap[origID] = sub.AddGate(n.Op, newInputs, n.Outputs[0])
	}

	rootNode, ok := c.Node(occ.root)
	if !ok {
		return nil, fmt.Errorf("fsr: root %d not found while building %q", occ.root, name)
	}
	sub.AddOutput(fuse.Edge{Producer: remap[occ.root]}, rootNode.Outputs[0])

	if err := sub.Finalize(); err != nil {
		return nil, err
	}
	return sub, nil
}
