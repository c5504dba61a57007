// Package catalog holds the fixed Module 1 assembly catalog. Parts rows come
// from an embedded tabular source keyed by assembly number; the six
// human-meaningful spec fields per assembly are asserted directly in a
// parallel table (the parts data alone does not reliably yield them).
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/sai-aps/quotematch/internal/domain"
)

//go:embed data/module1.csv
var module1CSV []byte

// assemblySpecs is the declared spec table. Declaration order matters: it is
// the tie-break order for closest-match ranking, so keep it stable.
var assemblySpecs = []domain.AssemblyRecord{
	{
		AssemblyNumber:  "123456-0100-101",
		Height:          "90",
		Width:           "40",
		Depth:           "60",
		BreakerType:     "ABB SACE Emax 6.2",
		BreakerQuantity: 1,
		Mount:           domain.MountFixed,
		Access:          domain.AccessFrontAndRear,
		Project:         "UL891-S41A Section 101",
	},
	{
		AssemblyNumber:  "123456-0100-102",
		Height:          "90",
		Width:           "40",
		Depth:           "60",
		BreakerType:     "ABB SACE Emax 2.2",
		BreakerQuantity: 3,
		Mount:           domain.MountFixed,
		Access:          domain.AccessFrontAndRear,
		Project:         "UL891-S41A Section 102",
	},
	{
		AssemblyNumber:  "123456-0100-103",
		Height:          "90",
		Width:           "40",
		Depth:           "60",
		BreakerType:     "ABB SACE Emax 2.2",
		BreakerQuantity: 2,
		Mount:           domain.MountFixed,
		Access:          domain.AccessFrontAndRear,
		Project:         "UL891-S41A Section 103",
	},
	{
		AssemblyNumber:  "123456-0100-201",
		Height:          "90",
		Width:           "40",
		Depth:           "60",
		BreakerType:     "ABB SACE Emax 6.2",
		BreakerQuantity: 1,
		Mount:           domain.MountDrawout,
		Access:          domain.AccessFrontOnly,
		Project:         "UL891-S41B Section 101",
	},
	{
		AssemblyNumber:  "123456-0100-202",
		Height:          "90",
		Width:           "40",
		Depth:           "60",
		BreakerType:     "ABB SACE Emax 2.2",
		BreakerQuantity: 1,
		Mount:           domain.MountDrawout,
		Access:          domain.AccessFrontOnly,
		Project:         "UL891-S41B Section 102",
	},
	{
		AssemblyNumber:  "123456-0100-203",
		Height:          "90",
		Width:           "40",
		Depth:           "60",
		BreakerType:     "ABB SACE Emax 2.2",
		BreakerQuantity: 2,
		Mount:           domain.MountDrawout,
		Access:          domain.AccessFrontOnly,
		Project:         "UL891-S41B Section 103",
	},
	{
		AssemblyNumber:   "123456-0100-204",
		Height:           "90",
		Width:            "42",
		Depth:            "60",
		BreakerType:      "ABB SACE Tmax",
		MultipleBreakers: true,
		Mount:            domain.MountFixed,
		Access:           domain.AccessFrontOnly,
		Project:          "UL891-S41B Section 104",
	},
	{
		AssemblyNumber:  "123456-0100-301",
		Height:          "90",
		Width:           "30",
		Depth:           "48",
		BreakerType:     "ABB SACE Emax 2.2",
		BreakerQuantity: 1,
		Mount:           domain.MountDrawout,
		Access:          domain.AccessFrontAndRear,
		Project:         "UL891-S4S1 Section 101",
	},
	{
		AssemblyNumber:   "123456-0100-302",
		Height:           "90",
		Width:            "42",
		Depth:            "48",
		BreakerType:      "ABB SACE Tmax",
		MultipleBreakers: true,
		Mount:            domain.MountFixed,
		Access:           domain.AccessFrontAndRear,
		Project:          "UL891-S4S1 Section 102",
	},
	{
		AssemblyNumber:   "123456-0100-401",
		Height:           "78",
		Width:            "42",
		Depth:            "33",
		BreakerType:      "Square D",
		MultipleBreakers: true,
		Mount:            domain.MountFixed,
		Access:           domain.AccessFrontOnly,
		Project:          "400kW GVX Section 101",
	},
}

// Catalog is the immutable assembly catalog, built once at startup and
// injected into the matcher and BOM service.
type Catalog struct {
	ids   []string
	specs map[string]domain.AssemblyRecord
	parts map[string][]domain.Component
}

// New builds the catalog from the embedded parts table and the spec table.
// Any inconsistency is a startup failure.
func New() (*Catalog, error) {
	parts, err := loadParts(module1CSV)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	c := &Catalog{
		specs: make(map[string]domain.AssemblyRecord, len(assemblySpecs)),
		parts: parts,
	}

	for _, spec := range assemblySpecs {
		if _, dup := c.specs[spec.AssemblyNumber]; dup {
			return nil, fmt.Errorf("catalog: duplicate assembly number %s", spec.AssemblyNumber)
		}
		if _, ok := parts[spec.AssemblyNumber]; !ok {
			return nil, fmt.Errorf("catalog: assembly %s has no parts rows", spec.AssemblyNumber)
		}
		c.specs[spec.AssemblyNumber] = spec
		c.ids = append(c.ids, spec.AssemblyNumber)
	}

	for num := range parts {
		if _, ok := c.specs[num]; !ok {
			return nil, fmt.Errorf("catalog: parts rows for unknown assembly %s", num)
		}
	}

	return c, nil
}

// loadParts parses the embedded CSV and groups components by assembly number,
// preserving row order within each assembly.
func loadParts(data []byte) (map[string][]domain.Component, error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse parts table: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("parts table is empty")
	}

	parts := make(map[string][]domain.Component)
	for i, row := range records[1:] {
		if len(row) != 5 {
			return nil, fmt.Errorf("parts table row %d: want 5 columns, got %d", i+2, len(row))
		}

		seq, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("parts table row %d: bad sequence %q", i+2, row[1])
		}
		qty, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("parts table row %d: bad quantity %q", i+2, row[3])
		}

		parts[row[0]] = append(parts[row[0]], domain.Component{
			PartNumber:  row[2],
			Description: row[4],
			Quantity:    qty,
			Sequence:    seq,
		})
	}

	return parts, nil
}

// IDs returns every assembly number in declaration order
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Get returns the spec record for an assembly number
func (c *Catalog) Get(assemblyNumber string) (domain.AssemblyRecord, bool) {
	spec, ok := c.specs[assemblyNumber]
	return spec, ok
}

// Parts returns the ordered component list for an assembly number
func (c *Catalog) Parts(assemblyNumber string) ([]domain.Component, bool) {
	rows, ok := c.parts[assemblyNumber]
	if !ok {
		return nil, false
	}
	out := make([]domain.Component, len(rows))
	copy(out, rows)
	return out, true
}

// Len returns the number of assemblies
func (c *Catalog) Len() int {
	return len(c.ids)
}

// TrainingText renders the spec table as the reference document injected into
// the extraction prompt, one assembly per block in declaration order.
func (c *Catalog) TrainingText() string {
	var b strings.Builder
	b.WriteString("MODULE 1 ASSEMBLY REFERENCE\n\n")

	for _, id := range c.ids {
		spec := c.specs[id]

		quantity := strconv.Itoa(spec.BreakerQuantity)
		if spec.MultipleBreakers {
			quantity = "multiple"
		}

		fmt.Fprintf(&b, "Assembly %s (%s):\n", id, spec.Project)
		fmt.Fprintf(&b, "  Dimensions: %s\"H x %s\"W x %s\"D\n", spec.Height, spec.Width, spec.Depth)
		fmt.Fprintf(&b, "  Breaker: %s, quantity %s\n", spec.BreakerType, quantity)
		fmt.Fprintf(&b, "  Mount: %s, Access: %s\n\n", spec.Mount, spec.Access)
	}

	return b.String()
}
