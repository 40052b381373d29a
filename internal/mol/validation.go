package mol

import (
	"fmt"
	"strings"
)

// ValidationError collects multiple validation issues
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid document: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "document validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

const maxAtomicNumber = 118

// ValidateDocument performs comprehensive validation of a MoleculeDocument
func ValidateDocument(doc *MoleculeDocument) error {
	err := &ValidationError{}

	for i, a := range doc.Atoms {
		prefix := fmt.Sprintf("atom at index %d", i)
		if a.AtomicNumber == 0 || a.AtomicNumber > maxAtomicNumber {
			err.Add(fmt.Sprintf("%s: atomic number %d out of range 1-%d", prefix, a.AtomicNumber, maxAtomicNumber))
		}
		if a.Hybridization != nil {
			h := Hybridization(*a.Hybridization)
			if h < HybridizationUnknown || h > HybridizationSP3D2 {
				err.Add(fmt.Sprintf("%s: unknown hybridization %d", prefix, *a.Hybridization))
			}
		}
	}

	for i, b := range doc.Bonds {
		prefix := fmt.Sprintf("bond at index %d", i)
		if b.A < 0 || b.A >= len(doc.Atoms) {
			err.Add(fmt.Sprintf("%s: endpoint %d does not reference an atom", prefix, b.A))
		}
		if b.B < 0 || b.B >= len(doc.Atoms) {
			err.Add(fmt.Sprintf("%s: endpoint %d does not reference an atom", prefix, b.B))
		}
		if b.A == b.B {
			err.Add(fmt.Sprintf("%s: bond joins atom %d to itself", prefix, b.A))
		}
	}

	if err.HasIssues() {
		return err
	}
	return nil
}
