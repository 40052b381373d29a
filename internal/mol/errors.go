package mol

import "errors"

var (
	// ErrInvalidReference is returned when an edit names a tombstoned UID
	// or an out-of-range index. The mutation is refused and state is left
	// untouched.
	ErrInvalidReference = errors.New("invalid atom or bond reference")

	// ErrLengthMismatch is returned by bulk setters when the replacement
	// array's length does not match the current element count.
	ErrLengthMismatch = errors.New("array length does not match element count")

	// ErrSelfBond is returned when both bond endpoints are the same atom.
	ErrSelfBond = errors.New("bond endpoints must be distinct atoms")

	// ErrUnitCellExists is returned by AddUnitCell when a cell is attached.
	ErrUnitCellExists = errors.New("molecule already has a unit cell")

	// ErrNoUnitCell is returned by RemoveUnitCell when no cell is attached.
	ErrNoUnitCell = errors.New("molecule has no unit cell")
)
