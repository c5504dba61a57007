package usecase

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sai-aps/quotematch/internal/catalog"
	"github.com/sai-aps/quotematch/internal/domain"
)

// bomExportHeader is the flat export column set. Consumers parse this form by
// position, so order and names are a compatibility contract. The sequence
// column is intentionally absent: the flat form has always dropped it.
var bomExportHeader = []string{"Item", "Part Number", "Description", "Quantity"}

// BOMService resolves assembly numbers to their bill of materials
type BOMService struct {
	catalog *catalog.Catalog
}

// NewBOMService creates a BOM service over the given catalog
func NewBOMService(cat *catalog.Catalog) *BOMService {
	return &BOMService{catalog: cat}
}

// Generate returns the full BOM for an assembly number. Unknown numbers
// return an AssemblyNotFoundError carrying the complete valid-id list.
func (s *BOMService) Generate(assemblyNumber string) (*domain.BOM, error) {
	spec, ok := s.catalog.Get(assemblyNumber)
	if !ok {
		return nil, &domain.AssemblyNotFoundError{
			AssemblyNumber:      assemblyNumber,
			AvailableAssemblies: s.catalog.IDs(),
		}
	}

	components, _ := s.catalog.Parts(assemblyNumber)

	return &domain.BOM{
		AssemblyNumber: assemblyNumber,
		Project:        spec.Project,
		Specifications: spec,
		TotalParts:     len(components),
		Components:     components,
	}, nil
}

// ExportCSV writes the flat tabular BOM form. Commas inside fields become
// semicolons and newlines become spaces before writing, so the output never
// needs quoting.
func (s *BOMService) ExportCSV(w io.Writer, bom *domain.BOM) error {
	if bom == nil {
		return domain.ErrInvalidRequest
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(bomExportHeader); err != nil {
		return fmt.Errorf("write bom header: %w", err)
	}

	for i, comp := range bom.Components {
		row := []string{
			strconv.Itoa(i + 1),
			sanitizeCSVField(comp.PartNumber),
			sanitizeCSVField(comp.Description),
			strconv.Itoa(comp.Quantity),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write bom row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseCSV reads the flat export form back into components. Sequence numbers
// are not present in the flat form and come back zero.
func ParseCSV(r io.Reader) ([]domain.Component, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read bom header: %w", err)
	}
	if len(header) != len(bomExportHeader) {
		return nil, fmt.Errorf("bom header has %d columns, want %d", len(header), len(bomExportHeader))
	}
	for i, name := range bomExportHeader {
		if header[i] != name {
			return nil, fmt.Errorf("bom header column %d is %q, want %q", i, header[i], name)
		}
	}

	var components []domain.Component
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bom row: %w", err)
		}

		qty, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("bom row %s: bad quantity %q", row[0], row[3])
		}

		components = append(components, domain.Component{
			PartNumber:  row[1],
			Description: row[2],
			Quantity:    qty,
		})
	}

	return components, nil
}

func sanitizeCSVField(s string) string {
	s = strings.ReplaceAll(s, ",", ";")
	return strings.ReplaceAll(s, "\n", " ")
}
