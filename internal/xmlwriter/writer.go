// =============================================================================
// ibankit - XML Writer Module
// =============================================================================
//
// This module renders a validation report as XML and can emit the matching
// XSD so downstream systems can validate what they receive.
//
// XML STRUCTURE:
//
//   <validationReport runId="..." source="payroll" generatedAt="...">
//     <summary total="3" valid="2" invalid="1" warnings="1"/>
//     <record n="1" row="2" valid="true">
//       <id>INV-001</id>
//       <iban country="DE" bankCode="37040044" accountNumber="0532013000">DE89370400440532013000</iban>
//       <bic bankCode="COBA" country="DE">COBADEFFXXX</bic>
//     </record>
//     <record n="2" row="3" valid="false">
//       <iban>DE00370400440532013000</iban>
//       <finding severity="ERROR" field="iban" rule="invalid_check_digit">...</finding>
//     </record>
//   </validationReport>
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/ginjaninja78/ibankit/internal/types"
)

// Namespace is the target namespace of the report schema.
const Namespace = "urn:ibankit:validation-report:1"

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation. Empty writes compact XML.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration writes <?xml version="1.0" encoding="UTF-8"?>.
	// Default: true
	IncludeXMLDeclaration bool

	// IncludeNamespace sets xmlns on the root element.
	// Default: true
	IncludeNamespace bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		IncludeNamespace:      true,
	}
}

// =============================================================================
// DOCUMENT MODEL
// =============================================================================

type reportElement struct {
	XMLName     xml.Name        `xml:"validationReport"`
	Xmlns       string          `xml:"xmlns,attr,omitempty"`
	RunID       string          `xml:"runId,attr"`
	SourceFile  string          `xml:"sourceFile,attr"`
	Source      string          `xml:"source,attr,omitempty"`
	GeneratedAt string          `xml:"generatedAt,attr"`
	Summary     summaryElement  `xml:"summary"`
	Records     []recordElement `xml:"record"`
}

type summaryElement struct {
	Total    int `xml:"total,attr"`
	Valid    int `xml:"valid,attr"`
	Invalid  int `xml:"invalid,attr"`
	Warnings int `xml:"warnings,attr"`
}

type recordElement struct {
	N        int              `xml:"n,attr"`
	Row      int              `xml:"row,attr"`
	Valid    bool             `xml:"valid,attr"`
	ID       string           `xml:"id,omitempty"`
	IBAN     *ibanElement     `xml:"iban,omitempty"`
	BIC      *bicElement      `xml:"bic,omitempty"`
	Findings []findingElement `xml:"finding"`
}

type ibanElement struct {
	Country       string `xml:"country,attr,omitempty"`
	BankCode      string `xml:"bankCode,attr,omitempty"`
	BranchCode    string `xml:"branchCode,attr,omitempty"`
	AccountNumber string `xml:"accountNumber,attr,omitempty"`
	Value         string `xml:",chardata"`
}

type bicElement struct {
	BankCode string `xml:"bankCode,attr,omitempty"`
	Country  string `xml:"country,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type findingElement struct {
	Severity string `xml:"severity,attr"`
	Field    string `xml:"field,attr"`
	Rule     string `xml:"rule,attr"`
	Message  string `xml:",chardata"`
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate renders a report as an XML document.
//
// PARAMETERS:
//   - report: The validation report. Summary should be current.
//   - opts: Formatting options.
//
// RETURNS:
//   - The XML document as a byte slice.
//   - An error if marshaling fails.
//
// Records are numbered from 1 in report order; "row" keeps the input row.
// Decomposed fields are only present for identifiers that parsed, otherwise
// the raw input is written so the report shows what was rejected.
func Generate(report *types.Report, opts GenerateOptions) ([]byte, error) {
	doc := reportElement{
		RunID:       report.RunID,
		SourceFile:  report.SourceFile,
		Source:      report.SourceCode,
		GeneratedAt: report.GeneratedAt.UTC().Format(time.RFC3339),
		Summary: summaryElement{
			Total:    report.Summary.Total,
			Valid:    report.Summary.Valid,
			Invalid:  report.Summary.Invalid,
			Warnings: report.Summary.Warnings,
		},
		Records: make([]recordElement, 0, len(report.Results)),
	}
	if opts.IncludeNamespace {
		doc.Xmlns = Namespace
	}

	for i, res := range report.Results {
		doc.Records = append(doc.Records, buildRecord(i+1, res))
	}

	var buffer bytes.Buffer
	if opts.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}

	encoder := xml.NewEncoder(&buffer)
	if opts.Indent != "" {
		encoder.Indent("", opts.Indent)
	}
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	buffer.WriteString("\n")

	return buffer.Bytes(), nil
}

// buildRecord converts one result to its element.
func buildRecord(n int, res types.RecordResult) recordElement {
	rec := recordElement{
		N:     n,
		Row:   res.Record.RowNumber,
		Valid: res.Valid,
		ID:    res.Record.ID,
	}

	switch {
	case res.IBAN != "":
		rec.IBAN = &ibanElement{
			Country:       res.Country,
			BankCode:      res.BankCode,
			BranchCode:    res.BranchCode,
			AccountNumber: res.AccountNumber,
			Value:         res.IBAN,
		}
	case res.Record.IBAN != "":
		rec.IBAN = &ibanElement{Value: res.Record.IBAN}
	}

	switch {
	case res.BIC != "":
		rec.BIC = &bicElement{BankCode: res.BICBank, Country: res.BICCountry, Value: res.BIC}
	case res.Record.BIC != "":
		rec.BIC = &bicElement{Value: res.Record.BIC}
	}

	for _, f := range res.Findings {
		rec.Findings = append(rec.Findings, findingElement{
			Severity: f.Severity,
			Field:    f.Field,
			Rule:     f.Rule,
			Message:  f.Message,
		})
	}

	return rec
}

// =============================================================================
// XSD GENERATION
// =============================================================================

// GenerateXSD returns the schema of the documents Generate produces with
// IncludeNamespace set.
func GenerateXSD() []byte {
	var buffer bytes.Buffer

	buffer.WriteString(xml.Header)
	fmt.Fprintf(&buffer, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="%[1]s"
           xmlns="%[1]s"
           elementFormDefault="qualified">
`, Namespace)

	buffer.WriteString(`
  <xs:simpleType name="severityType">
    <xs:restriction base="xs:string">
      <xs:enumeration value="ERROR"/>
      <xs:enumeration value="WARNING"/>
    </xs:restriction>
  </xs:simpleType>

  <xs:complexType name="ibanType">
    <xs:simpleContent>
      <xs:extension base="xs:string">
        <xs:attribute name="country" type="xs:string"/>
        <xs:attribute name="bankCode" type="xs:string"/>
        <xs:attribute name="branchCode" type="xs:string"/>
        <xs:attribute name="accountNumber" type="xs:string"/>
      </xs:extension>
    </xs:simpleContent>
  </xs:complexType>

  <xs:complexType name="bicType">
    <xs:simpleContent>
      <xs:extension base="xs:string">
        <xs:attribute name="bankCode" type="xs:string"/>
        <xs:attribute name="country" type="xs:string"/>
      </xs:extension>
    </xs:simpleContent>
  </xs:complexType>

  <xs:complexType name="findingType">
    <xs:simpleContent>
      <xs:extension base="xs:string">
        <xs:attribute name="severity" type="severityType" use="required"/>
        <xs:attribute name="field" type="xs:string" use="required"/>
        <xs:attribute name="rule" type="xs:string" use="required"/>
      </xs:extension>
    </xs:simpleContent>
  </xs:complexType>

  <xs:complexType name="recordType">
    <xs:sequence>
      <xs:element name="id" type="xs:string" minOccurs="0"/>
      <xs:element name="iban" type="ibanType" minOccurs="0"/>
      <xs:element name="bic" type="bicType" minOccurs="0"/>
      <xs:element name="finding" type="findingType" minOccurs="0" maxOccurs="unbounded"/>
    </xs:sequence>
    <xs:attribute name="n" type="xs:positiveInteger" use="required"/>
    <xs:attribute name="row" type="xs:nonNegativeInteger" use="required"/>
    <xs:attribute name="valid" type="xs:boolean" use="required"/>
  </xs:complexType>

  <xs:complexType name="summaryType">
    <xs:attribute name="total" type="xs:nonNegativeInteger" use="required"/>
    <xs:attribute name="valid" type="xs:nonNegativeInteger" use="required"/>
    <xs:attribute name="invalid" type="xs:nonNegativeInteger" use="required"/>
    <xs:attribute name="warnings" type="xs:nonNegativeInteger" use="required"/>
  </xs:complexType>

  <xs:element name="validationReport">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="summary" type="summaryType"/>
        <xs:element name="record" type="recordType" minOccurs="0" maxOccurs="unbounded"/>
      </xs:sequence>
      <xs:attribute name="runId" type="xs:string" use="required"/>
      <xs:attribute name="sourceFile" type="xs:string" use="required"/>
      <xs:attribute name="source" type="xs:string"/>
      <xs:attribute name="generatedAt" type="xs:dateTime" use="required"/>
    </xs:complexType>
  </xs:element>

</xs:schema>
`)

	return buffer.Bytes()
}
