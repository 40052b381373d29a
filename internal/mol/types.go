package mol

// UID is a stable identifier for an atom or a bond. It survives removals,
// undo and redo, independent of the element's current compact index.
type UID int

// InvalidUID marks a UID that does not (or no longer does) refer to anything.
const InvalidUID UID = -1

// invalidIndex is the tombstone value in the uid tables.
const invalidIndex = -1

// Vector3 is a 3D position, displacement or force.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Color is an RGB atom color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hybridization describes an atom's orbital hybridization state.
type Hybridization int8

const (
	HybridizationUnknown Hybridization = iota
	HybridizationSP
	HybridizationSP2
	HybridizationSP3
	HybridizationSP3D
	HybridizationSP3D2
)

// BondPair is an ordered pair of atom compact indices with First <= Second.
type BondPair struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

// MakeBondPair builds a canonical bond pair: the lower index always comes
// first, so any two atoms produce the same pair regardless of argument order.
func MakeBondPair(a, b int) BondPair {
	if a < b {
		return BondPair{First: a, Second: b}
	}
	return BondPair{First: b, Second: a}
}

// Contains reports whether the pair references the given atom index.
func (p BondPair) Contains(idx int) bool {
	return p.First == idx || p.Second == idx
}

// Other returns the pair's endpoint that is not idx.
func (p BondPair) Other(idx int) int {
	if p.First == idx {
		return p.Second
	}
	return p.First
}

// rewriteBondAtom replaces endpoint `from` with `to` and re-canonicalizes.
func rewriteBondAtom(p BondPair, from, to int) BondPair {
	if p.First == from {
		p.First = to
	} else if p.Second == from {
		p.Second = to
	}
	return MakeBondPair(p.First, p.Second)
}

// UnitCell is the molecule's optional periodic cell, given by its three
// axis vectors. It is exclusively owned: present or absent, never partial.
type UnitCell struct {
	A Vector3 `json:"a"`
	B Vector3 `json:"b"`
	C Vector3 `json:"c"`
}
