package mol

// CommandLog is a linear undo/redo stack. entries[:cursor] are the applied
// commands; entries[cursor:] is the redo tail. Pushing after an undo severs
// the tail — history never branches.
type CommandLog struct {
	entries []command
	cursor  int
}

// push applies cmd and records it. When both cmd and the command just below
// the cursor are merge-enabled and the latter accepts the fold, cmd's delta
// is absorbed into the existing entry and cmd itself is discarded; push then
// reports true. A rejected merge is not an error, just a separate entry.
func (l *CommandLog) push(m *Molecule, cmd command) bool {
	cmd.apply(m)
	l.entries = l.entries[:l.cursor]
	if l.cursor > 0 {
		if top, ok := l.entries[l.cursor-1].(merger); ok && top.mergeEnabled() {
			if in, ok := cmd.(merger); ok && in.mergeEnabled() && top.mergeWith(cmd) {
				return true
			}
		}
	}
	l.entries = append(l.entries, cmd)
	l.cursor++
	return false
}

// undo reverts the command at the cursor and steps back. No-op at the start.
func (l *CommandLog) undo(m *Molecule) bool {
	if l.cursor == 0 {
		return false
	}
	l.cursor--
	l.entries[l.cursor].revert(m)
	return true
}

// redo re-applies the command just ahead of the cursor. No-op at the end.
func (l *CommandLog) redo(m *Molecule) bool {
	if l.cursor == len(l.entries) {
		return false
	}
	l.entries[l.cursor].apply(m)
	l.cursor++
	return true
}

func (l *CommandLog) canUndo() bool { return l.cursor > 0 }
func (l *CommandLog) canRedo() bool { return l.cursor < len(l.entries) }

// depth returns the number of commands currently behind the cursor.
func (l *CommandLog) depth() int { return l.cursor }

// size returns the total number of committed entries, redo tail included.
func (l *CommandLog) size() int { return len(l.entries) }
