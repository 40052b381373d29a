package mol

// command is one exactly-invertible unit of mutation. apply executes the
// edit against the store; revert must leave the store equivalent, field for
// field, to its state immediately before apply.
//
// The set of implementations below is closed. Commands run on a linear
// history, so UID resolution inside apply/revert cannot fail; a failure
// would mean the log and the store have diverged, which is a bug, and the
// helpers panic rather than continue on corrupt state.
type command interface {
	kind() string
	apply(m *Molecule)
	revert(m *Molecule)
}

// merger is the optional capability implemented only by the coalescible
// command kinds: single-atom position, whole-array positions, single-bond
// order, and per-atom force vector.
type merger interface {
	command
	mergeEnabled() bool
	mergeWith(other command) bool
}

// mergeState carries the per-command merge flag, fixed at construction from
// the editor's interaction state. Both the top-of-log command and the
// incoming one must have it set for coalescing to happen.
type mergeState struct {
	canMerge bool
}

func (s mergeState) mergeEnabled() bool { return s.canMerge }

func atomIndexOf(m *Molecule, uid UID) int {
	idx, ok := m.atomIDs.resolve(uid)
	if !ok {
		panic("mol: command references retired atom uid")
	}
	return idx
}

func bondIndexOf(m *Molecule, uid UID) int {
	idx, ok := m.bondIDs.resolve(uid)
	if !ok {
		panic("mol: command references retired bond uid")
	}
	return idx
}

// addAtomCmd appends one atom. The first apply issues the UID; re-apply
// after an undo rebinds that same UID, so redo restores identity exactly.
type addAtomCmd struct {
	atomicNumber uint8
	uid          UID
}

func (c *addAtomCmd) kind() string { return "add_atom" }

func (c *addAtomCmd) apply(m *Molecule) {
	idx := m.addAtom(c.atomicNumber, c.uid)
	c.uid = m.atomUIDs[idx]
}

func (c *addAtomCmd) revert(m *Molecule) {
	m.removeAtom(atomIndexOf(m, c.uid))
}

// removeAtomCmd captures the atom's pre-removal attribute values and UID so
// revert can restore them (and any relocation the removal caused) exactly.
type removeAtomCmd struct {
	idx int
	uid UID
	rec atomRecord
}

func (c *removeAtomCmd) kind() string { return "remove_atom" }

func (c *removeAtomCmd) apply(m *Molecule) {
	m.removeAtom(c.idx)
}

func (c *removeAtomCmd) revert(m *Molecule) {
	m.restoreAtom(c.idx, c.uid, c.rec)
}

type setAtomicNumberCmd struct {
	uid      UID
	old, new uint8
}

func (c *setAtomicNumberCmd) kind() string { return "set_atomic_number" }

func (c *setAtomicNumberCmd) apply(m *Molecule) {
	m.atomicNumbers[atomIndexOf(m, c.uid)] = c.new
}

func (c *setAtomicNumberCmd) revert(m *Molecule) {
	m.atomicNumbers[atomIndexOf(m, c.uid)] = c.old
}

type setAtomicNumbersCmd struct {
	old, new []uint8
}

func (c *setAtomicNumbersCmd) kind() string { return "set_atomic_numbers" }

func (c *setAtomicNumbersCmd) apply(m *Molecule) {
	m.atomicNumbers = cloneSlice(c.new)
}

func (c *setAtomicNumbersCmd) revert(m *Molecule) {
	m.atomicNumbers = cloneSlice(c.old)
}

// setPositionCmd holds a growable list of (uid, old, new) triples. Merging
// a later single-atom move either overwrites the new value of an existing
// triple or appends a first-touch triple; old values are never overwritten,
// so revert always lands on the pre-gesture baseline.
type setPositionCmd struct {
	mergeState
	uids      []UID
	old       []Vector3
	new       []Vector3
	allocated bool
}

func (c *setPositionCmd) kind() string { return "set_position" }

func (c *setPositionCmd) apply(m *Molecule) {
	if m.positions == nil {
		m.positions = make([]Vector3, len(m.atomicNumbers))
	}
	for i, uid := range c.uids {
		m.positions[atomIndexOf(m, uid)] = c.new[i]
	}
}

func (c *setPositionCmd) revert(m *Molecule) {
	for i, uid := range c.uids {
		m.positions[atomIndexOf(m, uid)] = c.old[i]
	}
	if c.allocated {
		m.positions = nil
	}
}

func (c *setPositionCmd) mergeWith(other command) bool {
	o, ok := other.(*setPositionCmd)
	if !ok {
		return false
	}
	for i, uid := range o.uids {
		if at := indexOfUID(c.uids, uid); at >= 0 {
			c.new[at] = o.new[i]
		} else {
			c.uids = append(c.uids, uid)
			c.old = append(c.old, o.old[i])
			c.new = append(c.new, o.new[i])
		}
	}
	return true
}

// setPositionsCmd replaces the whole position array; merging keeps the old
// array and adopts the newcomer's after state.
type setPositionsCmd struct {
	mergeState
	old, new []Vector3
}

func (c *setPositionsCmd) kind() string { return "set_positions" }

func (c *setPositionsCmd) apply(m *Molecule) {
	m.positions = cloneSlice(c.new)
}

func (c *setPositionsCmd) revert(m *Molecule) {
	m.positions = cloneSlice(c.old)
}

func (c *setPositionsCmd) mergeWith(other command) bool {
	o, ok := other.(*setPositionsCmd)
	if !ok {
		return false
	}
	c.new = o.new
	return true
}

type setHybridizationCmd struct {
	uid       UID
	old, new  Hybridization
	allocated bool
}

func (c *setHybridizationCmd) kind() string { return "set_hybridization" }

func (c *setHybridizationCmd) apply(m *Molecule) {
	if m.hybridizations == nil {
		m.hybridizations = make([]Hybridization, len(m.atomicNumbers))
	}
	m.hybridizations[atomIndexOf(m, c.uid)] = c.new
}

func (c *setHybridizationCmd) revert(m *Molecule) {
	m.hybridizations[atomIndexOf(m, c.uid)] = c.old
	if c.allocated {
		m.hybridizations = nil
	}
}

type setFormalChargeCmd struct {
	uid       UID
	old, new  int8
	allocated bool
}

func (c *setFormalChargeCmd) kind() string { return "set_formal_charge" }

func (c *setFormalChargeCmd) apply(m *Molecule) {
	if m.formalCharges == nil {
		m.formalCharges = make([]int8, len(m.atomicNumbers))
	}
	m.formalCharges[atomIndexOf(m, c.uid)] = c.new
}

func (c *setFormalChargeCmd) revert(m *Molecule) {
	m.formalCharges[atomIndexOf(m, c.uid)] = c.old
	if c.allocated {
		m.formalCharges = nil
	}
}

type setColorCmd struct {
	uid       UID
	old, new  Color
	allocated bool
}

func (c *setColorCmd) kind() string { return "set_color" }

func (c *setColorCmd) apply(m *Molecule) {
	if m.colors == nil {
		m.colors = make([]Color, len(m.atomicNumbers))
	}
	m.colors[atomIndexOf(m, c.uid)] = c.new
}

func (c *setColorCmd) revert(m *Molecule) {
	m.colors[atomIndexOf(m, c.uid)] = c.old
	if c.allocated {
		m.colors = nil
	}
}

// setForceVectorCmd mirrors setPositionCmd over the force-vector array.
type setForceVectorCmd struct {
	mergeState
	uids      []UID
	old       []Vector3
	new       []Vector3
	allocated bool
}

func (c *setForceVectorCmd) kind() string { return "set_force_vector" }

func (c *setForceVectorCmd) apply(m *Molecule) {
	if m.forceVectors == nil {
		m.forceVectors = make([]Vector3, len(m.atomicNumbers))
	}
	for i, uid := range c.uids {
		m.forceVectors[atomIndexOf(m, uid)] = c.new[i]
	}
}

func (c *setForceVectorCmd) revert(m *Molecule) {
	for i, uid := range c.uids {
		m.forceVectors[atomIndexOf(m, uid)] = c.old[i]
	}
	if c.allocated {
		m.forceVectors = nil
	}
}

func (c *setForceVectorCmd) mergeWith(other command) bool {
	o, ok := other.(*setForceVectorCmd)
	if !ok {
		return false
	}
	for i, uid := range o.uids {
		if at := indexOfUID(c.uids, uid); at >= 0 {
			c.new[at] = o.new[i]
		} else {
			c.uids = append(c.uids, uid)
			c.old = append(c.old, o.old[i])
			c.new = append(c.new, o.new[i])
		}
	}
	return true
}

type addBondCmd struct {
	pair  BondPair
	order uint8
	uid   UID
}

func (c *addBondCmd) kind() string { return "add_bond" }

func (c *addBondCmd) apply(m *Molecule) {
	idx := m.addBond(c.pair, c.order, c.uid)
	c.uid = m.bondUIDs[idx]
}

func (c *addBondCmd) revert(m *Molecule) {
	m.removeBond(bondIndexOf(m, c.uid))
}

type removeBondCmd struct {
	idx   int
	uid   UID
	pair  BondPair
	order uint8
}

func (c *removeBondCmd) kind() string { return "remove_bond" }

func (c *removeBondCmd) apply(m *Molecule) {
	m.removeBond(c.idx)
}

func (c *removeBondCmd) revert(m *Molecule) {
	m.restoreBond(c.idx, c.uid, c.pair, c.order)
}

// setBondOrderCmd coalesces only with itself on the same bond; a merge
// attempt for a different bond is rejected and logs a separate entry.
type setBondOrderCmd struct {
	mergeState
	uid      UID
	old, new uint8
}

func (c *setBondOrderCmd) kind() string { return "set_bond_order" }

func (c *setBondOrderCmd) apply(m *Molecule) {
	m.bondOrders[bondIndexOf(m, c.uid)] = c.new
}

func (c *setBondOrderCmd) revert(m *Molecule) {
	m.bondOrders[bondIndexOf(m, c.uid)] = c.old
}

func (c *setBondOrderCmd) mergeWith(other command) bool {
	o, ok := other.(*setBondOrderCmd)
	if !ok || o.uid != c.uid {
		return false
	}
	c.new = o.new
	return true
}

type setBondOrdersCmd struct {
	old, new []uint8
}

func (c *setBondOrdersCmd) kind() string { return "set_bond_orders" }

func (c *setBondOrdersCmd) apply(m *Molecule) {
	m.bondOrders = cloneSlice(c.new)
}

func (c *setBondOrdersCmd) revert(m *Molecule) {
	m.bondOrders = cloneSlice(c.old)
}

type setBondPairCmd struct {
	uid      UID
	old, new BondPair
}

func (c *setBondPairCmd) kind() string { return "set_bond_pair" }

func (c *setBondPairCmd) apply(m *Molecule) {
	m.bondPairs[bondIndexOf(m, c.uid)] = c.new
	m.graphDirty = true
}

func (c *setBondPairCmd) revert(m *Molecule) {
	m.bondPairs[bondIndexOf(m, c.uid)] = c.old
	m.graphDirty = true
}

type setBondPairsCmd struct {
	old, new []BondPair
}

func (c *setBondPairsCmd) kind() string { return "set_bond_pairs" }

func (c *setBondPairsCmd) apply(m *Molecule) {
	m.bondPairs = cloneSlice(c.new)
	m.graphDirty = true
}

func (c *setBondPairsCmd) revert(m *Molecule) {
	m.bondPairs = cloneSlice(c.old)
	m.graphDirty = true
}

type addUnitCellCmd struct {
	cell UnitCell
}

func (c *addUnitCellCmd) kind() string { return "add_unit_cell" }

func (c *addUnitCellCmd) apply(m *Molecule) {
	cell := c.cell
	m.cell = &cell
}

func (c *addUnitCellCmd) revert(m *Molecule) {
	m.cell = nil
}

type removeUnitCellCmd struct {
	cell UnitCell
}

func (c *removeUnitCellCmd) kind() string { return "remove_unit_cell" }

func (c *removeUnitCellCmd) apply(m *Molecule) {
	m.cell = nil
}

func (c *removeUnitCellCmd) revert(m *Molecule) {
	cell := c.cell
	m.cell = &cell
}

// replaceMoleculeCmd swaps the whole molecule value between two snapshots.
// It is the only multi-field atomic unit the log offers.
type replaceMoleculeCmd struct {
	prev, next *Molecule
}

func (c *replaceMoleculeCmd) kind() string { return "replace_molecule" }

func (c *replaceMoleculeCmd) apply(m *Molecule) {
	*m = *c.next.Clone()
}

func (c *replaceMoleculeCmd) revert(m *Molecule) {
	*m = *c.prev.Clone()
}

func indexOfUID(uids []UID, uid UID) int {
	for i, u := range uids {
		if u == uid {
			return i
		}
	}
	return -1
}
