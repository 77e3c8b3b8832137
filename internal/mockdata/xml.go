package mockdata

import (
	"encoding/xml"
	"fmt"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
)

type templateDoc struct {
	XMLName    xml.Name        `xml:"coaTemplate"`
	PartNumber string          `xml:"partNumber,attr"`
	PlantID    string          `xml:"plantId,attr,omitempty"`
	HINTL      bool            `xml:"humanInTheLoop,attr"`
	Fields     []templateField `xml:"fields>field"`
}

type templateField struct {
	Name string `xml:"name,attr"`
	Unit string `xml:"unit,attr,omitempty"`
	Min  string `xml:"min,attr,omitempty"`
	Max  string `xml:"max,attr,omitempty"`
}

var sampleFields = []templateField{
	{Name: "lot_number"},
	{Name: "manufacture_date"},
	{Name: "purity", Unit: "%", Min: "99.0"},
	{Name: "moisture", Unit: "%", Max: "0.5"},
	{Name: "density", Unit: "g/cm3", Min: "2.60", Max: "2.80"},
}

// TemplateXML renders the extraction template document seeded for t.
func TemplateXML(t model.Template) ([]byte, error) {
	doc := templateDoc{
		PartNumber: t.PartNumber,
		PlantID:    t.PlantID,
		HINTL:      t.HINTLEnabled,
		Fields:     sampleFields,
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", t.ID, err)
	}
	return append([]byte(xml.Header), out...), nil
}
