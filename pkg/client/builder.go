package client

import (
	"github.com/dvasquez/sketchem/internal/mol"
)

// MoleculeBuilder provides a fluent API for building molecule documents.
// Use it to describe atoms, bonds and an optional unit cell, then seed a
// session with the result via CreateSession or ReplaceDocument.
type MoleculeBuilder struct {
	name  string
	atoms []*AtomBuilder
	bonds []mol.BondConfig
	cell  *mol.UnitCellConfig
}

// NewMolecule creates a new molecule builder with the given name.
func NewMolecule(name string) *MoleculeBuilder {
	return &MoleculeBuilder{
		name:  name,
		atoms: make([]*AtomBuilder, 0),
		bonds: make([]mol.BondConfig, 0),
	}
}

// Atom adds an atom definition to the molecule. Atoms are numbered in the
// order they are added; Bond references those numbers.
func (mb *MoleculeBuilder) Atom(ab *AtomBuilder) *MoleculeBuilder {
	mb.atoms = append(mb.atoms, ab)
	return mb
}

// Bond connects two atoms by their list positions with the given order.
func (mb *MoleculeBuilder) Bond(a, b int, order uint8) *MoleculeBuilder {
	mb.bonds = append(mb.bonds, mol.BondConfig{A: a, B: b, Order: order})
	return mb
}

// UnitCell attaches a unit cell with the three lattice vectors.
func (mb *MoleculeBuilder) UnitCell(a, b, c mol.Vector3) *MoleculeBuilder {
	mb.cell = &mol.UnitCellConfig{A: a, B: b, C: c}
	return mb
}

// Build converts the builder to a MoleculeDocument that can be sent
// to a server or materialized locally.
func (mb *MoleculeBuilder) Build() *mol.MoleculeDocument {
	atoms := make([]mol.AtomConfig, 0, len(mb.atoms))
	for _, ab := range mb.atoms {
		atoms = append(atoms, ab.Build())
	}

	return &mol.MoleculeDocument{
		Name:     mb.name,
		Atoms:    atoms,
		Bonds:    mb.bonds,
		UnitCell: mb.cell,
	}
}

// AtomBuilder provides a fluent API for describing one atom.
type AtomBuilder struct {
	cfg mol.AtomConfig
}

// NewAtom creates an atom builder for the given atomic number.
func NewAtom(atomicNumber uint8) *AtomBuilder {
	return &AtomBuilder{cfg: mol.AtomConfig{AtomicNumber: atomicNumber}}
}

// At sets the atom's 3D position.
func (ab *AtomBuilder) At(x, y, z float64) *AtomBuilder {
	ab.cfg.Position = &mol.Vector3{X: x, Y: y, Z: z}
	return ab
}

// Charge sets the atom's signed formal charge.
func (ab *AtomBuilder) Charge(charge int8) *AtomBuilder {
	ab.cfg.FormalCharge = &charge
	return ab
}

// Hybridization sets the atom's hybridization state.
func (ab *AtomBuilder) Hybridization(h mol.Hybridization) *AtomBuilder {
	v := int8(h)
	ab.cfg.Hybridization = &v
	return ab
}

// Color sets the atom's display color.
func (ab *AtomBuilder) Color(r, g, b uint8) *AtomBuilder {
	ab.cfg.Color = &mol.Color{R: r, G: g, B: b}
	return ab
}

// Force sets the atom's force vector.
func (ab *AtomBuilder) Force(x, y, z float64) *AtomBuilder {
	ab.cfg.Force = &mol.Vector3{X: x, Y: y, Z: z}
	return ab
}

// Build converts the builder to an AtomConfig.
func (ab *AtomBuilder) Build() mol.AtomConfig {
	return ab.cfg
}
