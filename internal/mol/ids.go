package mol

// idTable maps stable UIDs to compact indices for one element kind.
// The slot for a UID is allocated once and never reused: removal tombstones
// the slot, and only an undo of that removal may bind it again. The inverse
// mapping (index to UID) lives in the molecule's parallel UID arrays.
//
// Only the molecule's add/remove/restore paths mutate the table.
type idTable struct {
	index []int
}

// issue allocates a fresh UID bound to the given compact index.
func (t *idTable) issue(idx int) UID {
	t.index = append(t.index, idx)
	return UID(len(t.index) - 1)
}

// resolve returns the current compact index for uid, or false if the UID
// was never issued or has been retired.
func (t *idTable) resolve(uid UID) (int, bool) {
	if uid < 0 || int(uid) >= len(t.index) {
		return 0, false
	}
	idx := t.index[uid]
	if idx == invalidIndex {
		return 0, false
	}
	return idx, true
}

// retire tombstones uid. The slot is kept so the UID is never handed out
// again for an unrelated element.
func (t *idTable) retire(uid UID) {
	t.index[uid] = invalidIndex
}

// rebind points uid at a new compact index. Used when swap-compaction
// relocates an element and when undo restores a removed one.
func (t *idTable) rebind(uid UID, idx int) {
	t.index[uid] = idx
}

func (t *idTable) clone() idTable {
	if t.index == nil {
		return idTable{}
	}
	out := make([]int, len(t.index))
	copy(out, t.index)
	return idTable{index: out}
}
