package mol

import (
	"fmt"

	"github.com/dvasquez/sketchem/internal/metrics"
)

// Editor is the request surface for discrete, undoable edits against one
// molecule. Each operation validates its references, builds a command that
// captures the prior state, applies it, and records it on the undo log.
//
// Between BeginInteraction and EndInteraction the editor is in merging
// mode: commands of the coalescible kinds fold into the entry at the top of
// the log instead of creating new entries, so a whole drag gesture undoes
// as one step. Aborting a gesture is just Undo of its single coalesced
// entry before EndInteraction.
//
// The editor is not internally synchronized; all calls must come from one
// owner at a time (see Session).
type Editor struct {
	mol         *Molecule
	log         CommandLog
	interactive bool
	label       string
	logger      Logger
	notif       *NotificationManager
}

// NewEditor creates an editor over a fresh empty molecule.
func NewEditor() *Editor {
	return &Editor{mol: NewMolecule(), logger: NewNoOpLogger()}
}

// NewEditorFor creates an editor that edits the given molecule in place.
func NewEditorFor(m *Molecule) *Editor {
	return &Editor{mol: m, logger: NewNoOpLogger()}
}

// Molecule returns the edited molecule for read access.
func (e *Editor) Molecule() *Molecule { return e.mol }

// SetLogger replaces the editor's logger. A nil logger resets to no-op.
func (e *Editor) SetLogger(l Logger) {
	if l == nil {
		l = NewNoOpLogger()
	}
	e.logger = l
}

// SetNotificationManager wires the editor to an event fan-out. Every apply,
// undo and redo is broadcast to the manager's notifiers.
func (e *Editor) SetNotificationManager(nm *NotificationManager) { e.notif = nm }

// SetLabel tags the editor's events with a session name.
func (e *Editor) SetLabel(label string) { e.label = label }

// BeginInteraction enters merging mode.
func (e *Editor) BeginInteraction() {
	e.interactive = true
	e.logger.Debugf("interaction begin: session=%s", e.label)
}

// EndInteraction leaves merging mode.
func (e *Editor) EndInteraction() {
	e.interactive = false
	e.logger.Debugf("interaction end: session=%s", e.label)
}

// Interactive reports whether the editor is in merging mode.
func (e *Editor) Interactive() bool { return e.interactive }

// AddAtom appends a new atom with the given atomic number and returns its
// stable UID.
func (e *Editor) AddAtom(atomicNumber uint8) UID {
	cmd := &addAtomCmd{atomicNumber: atomicNumber, uid: InvalidUID}
	e.push(cmd)
	return cmd.uid
}

// RemoveAtom removes the atom with the given UID. Its incident bonds are
// removed first, each as its own log entry; there is no macro grouping, so
// every step is individually undoable and bond pairs always reference live
// atoms.
func (e *Editor) RemoveAtom(uid UID) error {
	idx, err := e.atomIndex(uid, "remove_atom")
	if err != nil {
		return err
	}
	// Collect the incident bonds by UID up front: bond removal swap-compacts
	// the bond arrays, so indices move, but UIDs stay resolvable.
	bonds := e.mol.BondsOf(idx)
	bondUIDs := make([]UID, len(bonds))
	for i, b := range bonds {
		bondUIDs[i] = e.mol.bondUIDs[b]
	}
	for _, buid := range bondUIDs {
		bidx, ok := e.mol.bondIDs.resolve(buid)
		if !ok {
			continue
		}
		e.pushRemoveBond(bidx)
	}
	e.push(&removeAtomCmd{idx: idx, uid: uid, rec: e.mol.captureAtom(idx)})
	return nil
}

// SetAtomicNumber changes one atom's element.
func (e *Editor) SetAtomicNumber(uid UID, z uint8) error {
	idx, err := e.atomIndex(uid, "set_atomic_number")
	if err != nil {
		return err
	}
	e.push(&setAtomicNumberCmd{uid: uid, old: e.mol.atomicNumbers[idx], new: z})
	return nil
}

// SetAtomicNumbers replaces the whole atomic-number array.
func (e *Editor) SetAtomicNumbers(zs []uint8) error {
	if len(zs) != e.mol.AtomCount() {
		return e.reject("set_atomic_numbers", ErrLengthMismatch)
	}
	e.push(&setAtomicNumbersCmd{old: cloneSlice(e.mol.atomicNumbers), new: cloneSlice(zs)})
	return nil
}

// SetPosition moves one atom. Coalescible during an interaction.
func (e *Editor) SetPosition(uid UID, pos Vector3) error {
	idx, err := e.atomIndex(uid, "set_position")
	if err != nil {
		return err
	}
	allocated := e.mol.positions == nil
	var old Vector3
	if !allocated {
		old = e.mol.positions[idx]
	}
	e.push(&setPositionCmd{
		mergeState: mergeState{canMerge: e.interactive},
		uids:       []UID{uid},
		old:        []Vector3{old},
		new:        []Vector3{pos},
		allocated:  allocated,
	})
	return nil
}

// SetPositions replaces the whole position array. Coalescible during an
// interaction.
func (e *Editor) SetPositions(ps []Vector3) error {
	if len(ps) != e.mol.AtomCount() {
		return e.reject("set_positions", ErrLengthMismatch)
	}
	e.push(&setPositionsCmd{
		mergeState: mergeState{canMerge: e.interactive},
		old:        cloneSlice(e.mol.positions),
		new:        cloneSlice(ps),
	})
	return nil
}

// SetHybridization sets one atom's hybridization state.
func (e *Editor) SetHybridization(uid UID, h Hybridization) error {
	idx, err := e.atomIndex(uid, "set_hybridization")
	if err != nil {
		return err
	}
	allocated := e.mol.hybridizations == nil
	var old Hybridization
	if !allocated {
		old = e.mol.hybridizations[idx]
	}
	e.push(&setHybridizationCmd{uid: uid, old: old, new: h, allocated: allocated})
	return nil
}

// SetFormalCharge sets one atom's signed formal charge.
func (e *Editor) SetFormalCharge(uid UID, charge int8) error {
	idx, err := e.atomIndex(uid, "set_formal_charge")
	if err != nil {
		return err
	}
	allocated := e.mol.formalCharges == nil
	var old int8
	if !allocated {
		old = e.mol.formalCharges[idx]
	}
	e.push(&setFormalChargeCmd{uid: uid, old: old, new: charge, allocated: allocated})
	return nil
}

// SetColor sets one atom's RGB color.
func (e *Editor) SetColor(uid UID, c Color) error {
	idx, err := e.atomIndex(uid, "set_color")
	if err != nil {
		return err
	}
	allocated := e.mol.colors == nil
	var old Color
	if !allocated {
		old = e.mol.colors[idx]
	}
	e.push(&setColorCmd{uid: uid, old: old, new: c, allocated: allocated})
	return nil
}

// SetForceVector sets one atom's force vector. Coalescible during an
// interaction, the way positions are.
func (e *Editor) SetForceVector(uid UID, f Vector3) error {
	idx, err := e.atomIndex(uid, "set_force_vector")
	if err != nil {
		return err
	}
	allocated := e.mol.forceVectors == nil
	var old Vector3
	if !allocated {
		old = e.mol.forceVectors[idx]
	}
	e.push(&setForceVectorCmd{
		mergeState: mergeState{canMerge: e.interactive},
		uids:       []UID{uid},
		old:        []Vector3{old},
		new:        []Vector3{f},
		allocated:  allocated,
	})
	return nil
}

// AddBond creates a bond between two atoms and returns its UID. The stored
// pair is canonical regardless of argument order.
func (e *Editor) AddBond(a, b UID, order uint8) (UID, error) {
	ai, err := e.atomIndex(a, "add_bond")
	if err != nil {
		return InvalidUID, err
	}
	bi, err := e.atomIndex(b, "add_bond")
	if err != nil {
		return InvalidUID, err
	}
	if ai == bi {
		return InvalidUID, e.reject("add_bond", ErrSelfBond)
	}
	cmd := &addBondCmd{pair: MakeBondPair(ai, bi), order: order, uid: InvalidUID}
	e.push(cmd)
	return cmd.uid, nil
}

// RemoveBond removes the bond with the given UID.
func (e *Editor) RemoveBond(uid UID) error {
	idx, err := e.bondIndex(uid, "remove_bond")
	if err != nil {
		return err
	}
	e.pushRemoveBond(idx)
	return nil
}

// SetBondOrder changes one bond's order. Coalescible during an interaction,
// but only with edits to the same bond.
func (e *Editor) SetBondOrder(uid UID, order uint8) error {
	idx, err := e.bondIndex(uid, "set_bond_order")
	if err != nil {
		return err
	}
	e.push(&setBondOrderCmd{
		mergeState: mergeState{canMerge: e.interactive},
		uid:        uid,
		old:        e.mol.bondOrders[idx],
		new:        order,
	})
	return nil
}

// SetBondOrders replaces the whole bond-order array.
func (e *Editor) SetBondOrders(orders []uint8) error {
	if len(orders) != e.mol.BondCount() {
		return e.reject("set_bond_orders", ErrLengthMismatch)
	}
	e.push(&setBondOrdersCmd{old: cloneSlice(e.mol.bondOrders), new: cloneSlice(orders)})
	return nil
}

// SetBondPair rewires one bond to a new pair of atoms.
func (e *Editor) SetBondPair(uid, a, b UID) error {
	idx, err := e.bondIndex(uid, "set_bond_pair")
	if err != nil {
		return err
	}
	ai, err := e.atomIndex(a, "set_bond_pair")
	if err != nil {
		return err
	}
	bi, err := e.atomIndex(b, "set_bond_pair")
	if err != nil {
		return err
	}
	if ai == bi {
		return e.reject("set_bond_pair", ErrSelfBond)
	}
	e.push(&setBondPairCmd{uid: uid, old: e.mol.bondPairs[idx], new: MakeBondPair(ai, bi)})
	return nil
}

// SetBondPairs replaces the whole bond-pair array. Pairs are given as atom
// compact indices; each is validated and stored canonically.
func (e *Editor) SetBondPairs(pairs []BondPair) error {
	if len(pairs) != e.mol.BondCount() {
		return e.reject("set_bond_pairs", ErrLengthMismatch)
	}
	next := make([]BondPair, len(pairs))
	for i, p := range pairs {
		if p.First < 0 || p.First >= e.mol.AtomCount() || p.Second < 0 || p.Second >= e.mol.AtomCount() {
			return e.reject("set_bond_pairs", fmt.Errorf("pair %d: %w", i, ErrInvalidReference))
		}
		if p.First == p.Second {
			return e.reject("set_bond_pairs", fmt.Errorf("pair %d: %w", i, ErrSelfBond))
		}
		next[i] = MakeBondPair(p.First, p.Second)
	}
	e.push(&setBondPairsCmd{old: cloneSlice(e.mol.bondPairs), new: next})
	return nil
}

// AddUnitCell attaches a unit cell. Fails if one is already attached.
func (e *Editor) AddUnitCell(cell UnitCell) error {
	if e.mol.cell != nil {
		return e.reject("add_unit_cell", ErrUnitCellExists)
	}
	e.push(&addUnitCellCmd{cell: cell})
	return nil
}

// RemoveUnitCell detaches the unit cell. Fails if none is attached.
func (e *Editor) RemoveUnitCell() error {
	if e.mol.cell == nil {
		return e.reject("remove_unit_cell", ErrNoUnitCell)
	}
	e.push(&removeUnitCellCmd{cell: *e.mol.cell})
	return nil
}

// ReplaceMolecule swaps the whole molecule for the given one as a single
// undoable step. Used for bulk operations simplest expressed as old
// molecule to new molecule.
func (e *Editor) ReplaceMolecule(next *Molecule) {
	e.push(&replaceMoleculeCmd{prev: e.mol.Clone(), next: next.Clone()})
}

// Undo reverts the most recent entry. Returns false at the start of the log.
func (e *Editor) Undo() bool {
	var kind string
	if e.log.canUndo() {
		kind = e.log.entries[e.log.cursor-1].kind()
	}
	if !e.log.undo(e.mol) {
		return false
	}
	metrics.UndoOps.Inc()
	metrics.UndoDepth.Set(float64(e.log.depth()))
	e.logger.Debugf("undo: session=%s kind=%s", e.label, kind)
	e.emit("undo", kind, false)
	return true
}

// Redo re-applies the entry ahead of the cursor. Returns false at the end.
func (e *Editor) Redo() bool {
	var kind string
	if e.log.canRedo() {
		kind = e.log.entries[e.log.cursor].kind()
	}
	if !e.log.redo(e.mol) {
		return false
	}
	metrics.RedoOps.Inc()
	metrics.UndoDepth.Set(float64(e.log.depth()))
	e.logger.Debugf("redo: session=%s kind=%s", e.label, kind)
	e.emit("redo", kind, false)
	return true
}

func (e *Editor) CanUndo() bool { return e.log.canUndo() }
func (e *Editor) CanRedo() bool { return e.log.canRedo() }

// UndoDepth returns the number of entries behind the cursor.
func (e *Editor) UndoDepth() int { return e.log.depth() }

func (e *Editor) pushRemoveBond(idx int) {
	e.push(&removeBondCmd{
		idx:   idx,
		uid:   e.mol.bondUIDs[idx],
		pair:  e.mol.bondPairs[idx],
		order: e.mol.bondOrders[idx],
	})
}

func (e *Editor) push(cmd command) {
	merged := e.log.push(e.mol, cmd)
	metrics.EditsApplied.WithLabelValues(cmd.kind()).Inc()
	if merged {
		metrics.EditsMerged.WithLabelValues(cmd.kind()).Inc()
	}
	metrics.UndoDepth.Set(float64(e.log.depth()))
	e.logger.Debugf("edit: session=%s kind=%s merged=%t atoms=%d bonds=%d",
		e.label, cmd.kind(), merged, e.mol.AtomCount(), e.mol.BondCount())
	e.emit("apply", cmd.kind(), merged)
}

func (e *Editor) emit(op, kind string, merged bool) {
	if e.notif == nil {
		return
	}
	e.notif.Broadcast(newEditEvent(e.label, op, kind, merged, e.mol))
}

func (e *Editor) atomIndex(uid UID, kind string) (int, error) {
	idx, ok := e.mol.atomIDs.resolve(uid)
	if !ok {
		return 0, e.reject(kind, fmt.Errorf("atom uid %d: %w", uid, ErrInvalidReference))
	}
	return idx, nil
}

func (e *Editor) bondIndex(uid UID, kind string) (int, error) {
	idx, ok := e.mol.bondIDs.resolve(uid)
	if !ok {
		return 0, e.reject(kind, fmt.Errorf("bond uid %d: %w", uid, ErrInvalidReference))
	}
	return idx, nil
}

func (e *Editor) reject(kind string, err error) error {
	metrics.EditsRejected.WithLabelValues(kind).Inc()
	e.logger.Warnf("edit rejected: session=%s kind=%s error=%v", e.label, kind, err)
	return err
}
