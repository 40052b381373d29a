package mol

// Molecule owns the dense per-atom and per-bond attribute arrays, the UID
// tables, and the optional unit cell. Atom and bond compact indices are
// always contiguous [0, count): removal swaps the last element into the
// freed slot and truncates, never leaving a hole.
//
// atomicNumbers, atomUIDs, bondPairs, bondOrders and bondUIDs are always
// populated. The remaining per-atom arrays are optional: nil while the
// attribute is untracked, and exactly atom-count long once it is. Positions
// are tracked from the start, matching how editing surfaces use them.
//
// The mutation methods here are deliberately unexported: only the command
// and editor machinery in this package may change a molecule, because undo
// must restore the exact internal representation, including the index/UID
// mapping. The store is not internally synchronized; callers funnel all
// edits through one owner (see Session).
type Molecule struct {
	atomicNumbers  []uint8
	positions      []Vector3
	hybridizations []Hybridization
	formalCharges  []int8
	colors         []Color
	forceVectors   []Vector3
	atomUIDs       []UID
	atomIDs        idTable

	bondPairs  []BondPair
	bondOrders []uint8
	bondUIDs   []UID
	bondIDs    idTable

	cell       *UnitCell
	graphDirty bool
}

// NewMolecule creates an empty molecule with position tracking enabled.
func NewMolecule() *Molecule {
	return &Molecule{positions: []Vector3{}}
}

func (m *Molecule) AtomCount() int { return len(m.atomicNumbers) }
func (m *Molecule) BondCount() int { return len(m.bondPairs) }

// AtomicNumber returns atom idx's atomic number. idx must be in range.
func (m *Molecule) AtomicNumber(idx int) uint8 { return m.atomicNumbers[idx] }

// Position returns atom idx's 3D position, or the zero vector when
// positions are not tracked.
func (m *Molecule) Position(idx int) Vector3 {
	if m.positions == nil {
		return Vector3{}
	}
	return m.positions[idx]
}

func (m *Molecule) Hybridization(idx int) Hybridization {
	if m.hybridizations == nil {
		return HybridizationUnknown
	}
	return m.hybridizations[idx]
}

func (m *Molecule) FormalCharge(idx int) int8 {
	if m.formalCharges == nil {
		return 0
	}
	return m.formalCharges[idx]
}

func (m *Molecule) Color(idx int) Color {
	if m.colors == nil {
		return Color{}
	}
	return m.colors[idx]
}

func (m *Molecule) ForceVector(idx int) Vector3 {
	if m.forceVectors == nil {
		return Vector3{}
	}
	return m.forceVectors[idx]
}

func (m *Molecule) BondPairAt(idx int) BondPair { return m.bondPairs[idx] }
func (m *Molecule) BondOrder(idx int) uint8     { return m.bondOrders[idx] }

// AtomUID returns the stable UID of the atom at compact index idx.
func (m *Molecule) AtomUID(idx int) UID { return m.atomUIDs[idx] }

// BondUID returns the stable UID of the bond at compact index idx.
func (m *Molecule) BondUID(idx int) UID { return m.bondUIDs[idx] }

// AtomIndex resolves an atom UID to its current compact index. The second
// result is false for retired or never-issued UIDs.
func (m *Molecule) AtomIndex(uid UID) (int, bool) { return m.atomIDs.resolve(uid) }

// BondIndex resolves a bond UID to its current compact index.
func (m *Molecule) BondIndex(uid UID) (int, bool) { return m.bondIDs.resolve(uid) }

// BondsOf returns the compact indices of every bond touching the atom.
func (m *Molecule) BondsOf(atomIdx int) []int {
	var out []int
	for i, p := range m.bondPairs {
		if p.Contains(atomIdx) {
			out = append(out, i)
		}
	}
	return out
}

// HasUnitCell reports whether a unit cell is attached.
func (m *Molecule) HasUnitCell() bool { return m.cell != nil }

// UnitCell returns a copy of the attached cell; ok is false when absent.
func (m *Molecule) UnitCell() (UnitCell, bool) {
	if m.cell == nil {
		return UnitCell{}, false
	}
	return *m.cell, true
}

// GraphDirty reports whether the topology has changed since the flag was
// last cleared. Collaborators that derive connectivity or geometry from the
// graph consume this and rebuild.
func (m *Molecule) GraphDirty() bool { return m.graphDirty }

// SetGraphDirty sets or clears the graph-dirty flag.
func (m *Molecule) SetGraphDirty(dirty bool) { m.graphDirty = dirty }

// addAtom appends storage for one atom. A fresh UID is issued when uid is
// InvalidUID; otherwise the given UID is bound to the new slot, which is how
// redo of an add restores the original identity. Every populated per-atom
// array grows by one zero value to keep the arrays aligned.
func (m *Molecule) addAtom(z uint8, uid UID) int {
	idx := len(m.atomicNumbers)
	if uid == InvalidUID {
		uid = m.atomIDs.issue(idx)
	} else {
		m.atomIDs.rebind(uid, idx)
	}
	m.atomicNumbers = append(m.atomicNumbers, z)
	m.atomUIDs = append(m.atomUIDs, uid)
	if m.positions != nil {
		m.positions = append(m.positions, Vector3{})
	}
	if m.hybridizations != nil {
		m.hybridizations = append(m.hybridizations, HybridizationUnknown)
	}
	if m.formalCharges != nil {
		m.formalCharges = append(m.formalCharges, 0)
	}
	if m.colors != nil {
		m.colors = append(m.colors, Color{})
	}
	if m.forceVectors != nil {
		m.forceVectors = append(m.forceVectors, Vector3{})
	}
	m.graphDirty = true
	return idx
}

// atomRecord captures one atom's attribute values across the populated
// per-atom arrays, so removal can be reverted exactly.
type atomRecord struct {
	z      uint8
	pos    Vector3
	hyb    Hybridization
	charge int8
	color  Color
	force  Vector3
}

func (m *Molecule) captureAtom(idx int) atomRecord {
	rec := atomRecord{z: m.atomicNumbers[idx]}
	if m.positions != nil {
		rec.pos = m.positions[idx]
	}
	if m.hybridizations != nil {
		rec.hyb = m.hybridizations[idx]
	}
	if m.formalCharges != nil {
		rec.charge = m.formalCharges[idx]
	}
	if m.colors != nil {
		rec.color = m.colors[idx]
	}
	if m.forceVectors != nil {
		rec.force = m.forceVectors[idx]
	}
	return rec
}

// removeAtom tombstones the atom's UID and swap-compacts the per-atom
// arrays. When the removed slot is not the last one, the last atom's values
// relocate into it, every bond pair referencing the moved atom is rewritten
// (and re-canonicalized), and the moved atom's UID is rebound to its new
// index. The caller must have removed the atom's own bonds first.
func (m *Molecule) removeAtom(idx int) {
	last := len(m.atomicNumbers) - 1
	m.atomIDs.retire(m.atomUIDs[idx])
	if idx != last {
		m.atomicNumbers[idx] = m.atomicNumbers[last]
		if m.positions != nil {
			m.positions[idx] = m.positions[last]
		}
		if m.hybridizations != nil {
			m.hybridizations[idx] = m.hybridizations[last]
		}
		if m.formalCharges != nil {
			m.formalCharges[idx] = m.formalCharges[last]
		}
		if m.colors != nil {
			m.colors[idx] = m.colors[last]
		}
		if m.forceVectors != nil {
			m.forceVectors[idx] = m.forceVectors[last]
		}
		for i := range m.bondPairs {
			m.bondPairs[i] = rewriteBondAtom(m.bondPairs[i], last, idx)
		}
		movedUID := m.atomUIDs[last]
		m.atomIDs.rebind(movedUID, idx)
		m.atomUIDs[idx] = movedUID
	}
	m.atomicNumbers = m.atomicNumbers[:last]
	m.atomUIDs = m.atomUIDs[:last]
	if m.positions != nil {
		m.positions = m.positions[:last]
	}
	if m.hybridizations != nil {
		m.hybridizations = m.hybridizations[:last]
	}
	if m.formalCharges != nil {
		m.formalCharges = m.formalCharges[:last]
	}
	if m.colors != nil {
		m.colors = m.colors[:last]
	}
	if m.forceVectors != nil {
		m.forceVectors = m.forceVectors[:last]
	}
	m.graphDirty = true
}

// restoreAtom is the exact inverse of removeAtom: it re-appends the captured
// attribute values, swaps the relocated atom (if removal had moved one) back
// to the end, rewrites its bond pairs to their prior indices, and restores
// the pre-removal UID mapping for both elements.
func (m *Molecule) restoreAtom(idx int, uid UID, rec atomRecord) {
	last := len(m.atomicNumbers)
	m.atomicNumbers = append(m.atomicNumbers, rec.z)
	m.atomUIDs = append(m.atomUIDs, uid)
	if m.positions != nil {
		m.positions = append(m.positions, rec.pos)
	}
	if m.hybridizations != nil {
		m.hybridizations = append(m.hybridizations, rec.hyb)
	}
	if m.formalCharges != nil {
		m.formalCharges = append(m.formalCharges, rec.charge)
	}
	if m.colors != nil {
		m.colors = append(m.colors, rec.color)
	}
	if m.forceVectors != nil {
		m.forceVectors = append(m.forceVectors, rec.force)
	}
	if idx != last {
		m.atomicNumbers[idx], m.atomicNumbers[last] = m.atomicNumbers[last], m.atomicNumbers[idx]
		if m.positions != nil {
			m.positions[idx], m.positions[last] = m.positions[last], m.positions[idx]
		}
		if m.hybridizations != nil {
			m.hybridizations[idx], m.hybridizations[last] = m.hybridizations[last], m.hybridizations[idx]
		}
		if m.formalCharges != nil {
			m.formalCharges[idx], m.formalCharges[last] = m.formalCharges[last], m.formalCharges[idx]
		}
		if m.colors != nil {
			m.colors[idx], m.colors[last] = m.colors[last], m.colors[idx]
		}
		if m.forceVectors != nil {
			m.forceVectors[idx], m.forceVectors[last] = m.forceVectors[last], m.forceVectors[idx]
		}
		// Bonds referencing idx belong to the atom that removal relocated
		// there; point them back at its original index.
		for i := range m.bondPairs {
			m.bondPairs[i] = rewriteBondAtom(m.bondPairs[i], idx, last)
		}
		movedUID := m.atomUIDs[idx]
		m.atomIDs.rebind(movedUID, last)
		m.atomUIDs[idx], m.atomUIDs[last] = m.atomUIDs[last], m.atomUIDs[idx]
	}
	m.atomIDs.rebind(uid, idx)
	m.graphDirty = true
}

// addBond appends a bond. The pair must already be canonical and reference
// live atoms. UID semantics match addAtom.
func (m *Molecule) addBond(pair BondPair, order uint8, uid UID) int {
	idx := len(m.bondPairs)
	if uid == InvalidUID {
		uid = m.bondIDs.issue(idx)
	} else {
		m.bondIDs.rebind(uid, idx)
	}
	m.bondPairs = append(m.bondPairs, pair)
	m.bondOrders = append(m.bondOrders, order)
	m.bondUIDs = append(m.bondUIDs, uid)
	m.graphDirty = true
	return idx
}

// removeBond swap-compacts the per-bond arrays, mirroring removeAtom.
func (m *Molecule) removeBond(idx int) {
	last := len(m.bondPairs) - 1
	m.bondIDs.retire(m.bondUIDs[idx])
	if idx != last {
		m.bondPairs[idx] = m.bondPairs[last]
		m.bondOrders[idx] = m.bondOrders[last]
		movedUID := m.bondUIDs[last]
		m.bondIDs.rebind(movedUID, idx)
		m.bondUIDs[idx] = movedUID
	}
	m.bondPairs = m.bondPairs[:last]
	m.bondOrders = m.bondOrders[:last]
	m.bondUIDs = m.bondUIDs[:last]
	m.graphDirty = true
}

// restoreBond is the exact inverse of removeBond, restoring the removed
// bond's compact index and the relocated bond's prior index and UID mapping.
func (m *Molecule) restoreBond(idx int, uid UID, pair BondPair, order uint8) {
	last := len(m.bondPairs)
	m.bondPairs = append(m.bondPairs, pair)
	m.bondOrders = append(m.bondOrders, order)
	m.bondUIDs = append(m.bondUIDs, uid)
	if idx != last {
		m.bondPairs[idx], m.bondPairs[last] = m.bondPairs[last], m.bondPairs[idx]
		m.bondOrders[idx], m.bondOrders[last] = m.bondOrders[last], m.bondOrders[idx]
		movedUID := m.bondUIDs[idx]
		m.bondIDs.rebind(movedUID, last)
		m.bondUIDs[idx], m.bondUIDs[last] = m.bondUIDs[last], m.bondUIDs[idx]
	}
	m.bondIDs.rebind(uid, idx)
	m.graphDirty = true
}

// Clone returns a deep copy sharing no storage with the original. Used for
// whole-molecule replace snapshots.
func (m *Molecule) Clone() *Molecule {
	out := &Molecule{
		atomicNumbers:  cloneSlice(m.atomicNumbers),
		positions:      cloneSlice(m.positions),
		hybridizations: cloneSlice(m.hybridizations),
		formalCharges:  cloneSlice(m.formalCharges),
		colors:         cloneSlice(m.colors),
		forceVectors:   cloneSlice(m.forceVectors),
		atomUIDs:       cloneSlice(m.atomUIDs),
		atomIDs:        m.atomIDs.clone(),
		bondPairs:      cloneSlice(m.bondPairs),
		bondOrders:     cloneSlice(m.bondOrders),
		bondUIDs:       cloneSlice(m.bondUIDs),
		bondIDs:        m.bondIDs.clone(),
		graphDirty:     m.graphDirty,
	}
	if m.cell != nil {
		cell := *m.cell
		out.cell = &cell
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
