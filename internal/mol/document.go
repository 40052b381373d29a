package mol

import (
	"encoding/json"
	"fmt"
	"io"
)

// MoleculeDocument is the JSON wire form of a molecule. Atoms are listed in
// compact-index order; bond pairs reference those list positions. Optional
// per-atom fields are pointers so an absent field stays absent through a
// round trip instead of collapsing to the zero value.
type MoleculeDocument struct {
	Name     string           `json:"name,omitempty"`
	Atoms    []AtomConfig     `json:"atoms"`
	Bonds    []BondConfig     `json:"bonds,omitempty"`
	UnitCell *UnitCellConfig  `json:"unitCell,omitempty"`
}

// AtomConfig describes one atom in a document.
type AtomConfig struct {
	AtomicNumber  uint8       `json:"atomicNumber"`
	Position      *Vector3    `json:"position,omitempty"`
	Hybridization *int8       `json:"hybridization,omitempty"`
	FormalCharge  *int8       `json:"formalCharge,omitempty"`
	Color         *Color      `json:"color,omitempty"`
	Force         *Vector3    `json:"force,omitempty"`
}

// BondConfig describes one bond by the list positions of its endpoints.
type BondConfig struct {
	A     int   `json:"a"`
	B     int   `json:"b"`
	Order uint8 `json:"order"`
}

// UnitCellConfig describes the three lattice vectors of a unit cell.
type UnitCellConfig struct {
	A Vector3 `json:"a"`
	B Vector3 `json:"b"`
	C Vector3 `json:"c"`
}

// DecodeDocument reads a MoleculeDocument from JSON.
func DecodeDocument(r io.Reader) (*MoleculeDocument, error) {
	var doc MoleculeDocument
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode molecule document: %w", err)
	}
	return &doc, nil
}

// EncodeDocument writes a MoleculeDocument as indented JSON.
func EncodeDocument(w io.Writer, doc *MoleculeDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode molecule document: %w", err)
	}
	return nil
}

// BuildMolecule materializes a validated document as a fresh molecule.
// Atom list positions become compact indices, so bond references in the
// document carry over directly. Optional arrays are allocated only when at
// least one atom sets the field.
func BuildMolecule(doc *MoleculeDocument) (*Molecule, error) {
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	m := NewMolecule()
	m.hybridizations = optionalArray(doc.Atoms, func(a AtomConfig) bool { return a.Hybridization != nil }, m.hybridizations)
	m.formalCharges = optionalArray(doc.Atoms, func(a AtomConfig) bool { return a.FormalCharge != nil }, m.formalCharges)
	m.colors = optionalArray(doc.Atoms, func(a AtomConfig) bool { return a.Color != nil }, m.colors)
	m.forceVectors = optionalArray(doc.Atoms, func(a AtomConfig) bool { return a.Force != nil }, m.forceVectors)

	for _, a := range doc.Atoms {
		idx := m.addAtom(a.AtomicNumber, InvalidUID)
		if a.Position != nil {
			m.positions[idx] = *a.Position
		}
		if a.Hybridization != nil {
			m.hybridizations[idx] = Hybridization(*a.Hybridization)
		}
		if a.FormalCharge != nil {
			m.formalCharges[idx] = *a.FormalCharge
		}
		if a.Color != nil {
			m.colors[idx] = *a.Color
		}
		if a.Force != nil {
			m.forceVectors[idx] = *a.Force
		}
	}
	for _, b := range doc.Bonds {
		m.addBond(MakeBondPair(b.A, b.B), b.Order, InvalidUID)
	}
	if doc.UnitCell != nil {
		m.cell = &UnitCell{A: doc.UnitCell.A, B: doc.UnitCell.B, C: doc.UnitCell.C}
	}
	return m, nil
}

// optionalArray pre-allocates an optional per-atom array when any atom in
// the document sets the field, and leaves it untracked otherwise.
func optionalArray[T any](atoms []AtomConfig, set func(AtomConfig) bool, cur []T) []T {
	for _, a := range atoms {
		if set(a) {
			return []T{}
		}
	}
	return cur
}

// Document exports the molecule's current state as a wire document.
// Untracked optional arrays export as absent fields.
func (m *Molecule) Document(name string) *MoleculeDocument {
	doc := &MoleculeDocument{
		Name:  name,
		Atoms: make([]AtomConfig, m.AtomCount()),
	}
	for i := range doc.Atoms {
		doc.Atoms[i].AtomicNumber = m.atomicNumbers[i]
		if m.positions != nil {
			p := m.positions[i]
			doc.Atoms[i].Position = &p
		}
		if m.hybridizations != nil {
			h := int8(m.hybridizations[i])
			doc.Atoms[i].Hybridization = &h
		}
		if m.formalCharges != nil {
			c := m.formalCharges[i]
			doc.Atoms[i].FormalCharge = &c
		}
		if m.colors != nil {
			c := m.colors[i]
			doc.Atoms[i].Color = &c
		}
		if m.forceVectors != nil {
			f := m.forceVectors[i]
			doc.Atoms[i].Force = &f
		}
	}
	if m.BondCount() > 0 {
		doc.Bonds = make([]BondConfig, m.BondCount())
		for i, p := range m.bondPairs {
			doc.Bonds[i] = BondConfig{A: p.First, B: p.Second, Order: m.bondOrders[i]}
		}
	}
	if m.cell != nil {
		doc.UnitCell = &UnitCellConfig{A: m.cell.A, B: m.cell.B, C: m.cell.C}
	}
	return doc
}
