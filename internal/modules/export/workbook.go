package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/checklist"
)

const (
	SheetIdentification = "Identification"
	SheetChecklist      = "Checklist"
)

var checklistHeader = []string{"Section", "Point de contrôle", "Verdict", "Commentaire", "Mots barrés"}

// Workbook renders a record and its checklist as an XLSX file.
func Workbook(rec inspection.Record, sheet *checklist.Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetIdentification)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetChecklist); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeIdentification(f, rec, headerStyle); err != nil {
		return nil, err
	}
	if err := writeChecklist(f, sheet, headerStyle); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func identificationRows(rec inspection.Record) [][2]string {
	signed := ""
	if rec.SignedAt != nil {
		signed = rec.SignedAt.Format("02/01/2006 15:04")
	}
	return [][2]string{
		{"Type d'équipement", rec.EquipmentType},
		{"Référence interne", rec.ReferenceInterne},
		{"Produit", rec.TypeEquipement},
		{"Numéro de série", rec.NumeroSerie},
		{"Numéro de série (torse)", rec.NumeroSerieTop},
		{"Numéro de série (cuissard)", rec.NumeroSerieCuissard},
		{"Fabricant", rec.Fabricant},
		{"Date de fabrication", rec.DateFabrication},
		{"Date d'achat", rec.DateAchat},
		{"Date de contrôle", rec.DateControle},
		{"Prochaine inspection", rec.DateProchaineInspection},
		{"Normes", rec.Normes},
		{"Normes du certificat", rec.NormesCertificat},
		{"Documents de référence", rec.DocumentsReference},
		{"Signataire", rec.Signataire},
		{"Certificat de contrôle", rec.CertificateURL},
		{"Signé le", signed},
		{"État", string(rec.Etat)},
	}
}

func writeIdentification(f *excelize.File, rec inspection.Record, headerStyle int) error {
	for i, row := range identificationRows(rec) {
		r := i + 1
		if err := f.SetCellValue(SheetIdentification, fmt.Sprintf("A%d", r), row[0]); err != nil {
			return fmt.Errorf("failed to set label cell: %w", err)
		}
		if err := f.SetCellValue(SheetIdentification, fmt.Sprintf("B%d", r), row[1]); err != nil {
			return fmt.Errorf("failed to set value cell: %w", err)
		}
	}
	last := len(identificationRows(rec))
	if err := f.SetCellStyle(SheetIdentification, "A1", fmt.Sprintf("A%d", last), headerStyle); err != nil {
		return fmt.Errorf("failed to set label style: %w", err)
	}
	if err := f.SetColWidth(SheetIdentification, "A", "A", 30); err != nil {
		return err
	}
	return f.SetColWidth(SheetIdentification, "B", "B", 60)
}

func writeChecklist(f *excelize.File, sheet *checklist.Sheet, headerStyle int) error {
	for col, h := range checklistHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(SheetChecklist, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetChecklist, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	if sheet == nil {
		return nil
	}
	tmpl := sheet.Template()
	row := 2
	for _, st := range sheet.State() {
		section, leaf, _ := st.Path.Split()
		title, label := section, leaf
		verdict := st.Leaf.Verdict.Label()
		if st.Path.IsHistory() {
			title, label, verdict = "Antécédents du produit", "Commentaire", ""
		} else {
			if sec, ok := tmpl.Section(section); ok {
				title = sec.Title
			}
			if spec, ok := tmpl.Leaf(st.Path); ok {
				label = spec.Label
			}
		}
		values := []any{title, label, verdict, st.Leaf.Comment, strings.Join(st.Struck, ", ")}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetChecklist, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		row++
	}
	if err := f.SetColWidth(SheetChecklist, "A", "B", 35); err != nil {
		return err
	}
	return f.SetColWidth(SheetChecklist, "D", "E", 40)
}
