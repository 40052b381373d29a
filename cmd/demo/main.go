package main

import (
	"fmt"
	"os"

	"github.com/dvasquez/sketchem/internal/mol"
	"github.com/dvasquez/sketchem/pkg/client"
)

// Builds an ethanol skeleton with the document builder, then walks an
// editor through a drag gesture and the undo history. Runs entirely
// in-process; no server needed.
func main() {
	doc := client.NewMolecule("ethanol").
		Atom(client.NewAtom(6).At(0, 0, 0)).
		Atom(client.NewAtom(6).At(1.54, 0, 0).Hybridization(mol.HybridizationSP3)).
		Atom(client.NewAtom(8).At(2.31, 1.16, 0).Charge(0)).
		Bond(0, 1, 1).
		Bond(1, 2, 1).
		Build()

	m, err := mol.BuildMolecule(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building molecule: %v\n", err)
		os.Exit(1)
	}

	ed := mol.NewEditorFor(m)
	fmt.Printf("Loaded %s: atoms=%d bonds=%d\n", doc.Name, m.AtomCount(), m.BondCount())

	// Add a hydrogen on the oxygen
	h := ed.AddAtom(1)
	o := m.AtomUID(2)
	if _, err := ed.AddBond(o, h, 1); err != nil {
		fmt.Fprintf(os.Stderr, "error bonding hydrogen: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Added hydroxyl hydrogen: atoms=%d bonds=%d depth=%d\n",
		m.AtomCount(), m.BondCount(), ed.UndoDepth())

	// Drag the hydrogen into place; the whole gesture is one undo step
	ed.BeginInteraction()
	for i := 1; i <= 4; i++ {
		t := float64(i) / 4
		pos := mol.Vector3{X: 2.31 + 0.66*t, Y: 1.16 + 0.53*t, Z: 0}
		if err := ed.SetPosition(h, pos); err != nil {
			fmt.Fprintf(os.Stderr, "error moving atom: %v\n", err)
			os.Exit(1)
		}
	}
	ed.EndInteraction()
	fmt.Printf("Drag finished: depth=%d (gesture coalesced)\n", ed.UndoDepth())

	// Walk back through the history and forward again
	for ed.Undo() {
	}
	fmt.Printf("After full undo: atoms=%d bonds=%d\n", m.AtomCount(), m.BondCount())
	for ed.Redo() {
	}
	fmt.Printf("After full redo: atoms=%d bonds=%d\n", m.AtomCount(), m.BondCount())

	idx, _ := m.AtomIndex(h)
	fmt.Printf("Hydrogen ended at %v\n", m.Position(idx))
}
