// Package pdf renders laudos periciais to PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/odontoforense/odonto-legal-api/models"
)

const fontFamily = "Helvetica"

// RenderLaudo renders the laudo and its caso metadata to a PDF document. An
// unsigned laudo renders with an explicit unsigned marker in the signature
// block rather than failing.
func RenderLaudo(laudo *models.Laudo, caso *models.Caso) ([]byte, error) {
	if laudo == nil {
		return nil, fmt.Errorf("laudo is nil")
	}
	if caso == nil {
		return nil, fmt.Errorf("caso is nil")
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(14, 14, 14)
	doc.SetAutoPageBreak(true, 14)
	doc.SetTitle("Laudo Pericial Odontológico", true)
	// Portuguese accents fit the cp1252 core fonts
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()

	doc.SetFont(fontFamily, "B", 16)
	doc.CellFormat(0, 9, tr("Laudo Pericial Odontológico"), "", 1, "L", false, 0, "")
	doc.SetFont(fontFamily, "", 10)
	doc.SetTextColor(60, 60, 60)
	doc.CellFormat(0, 6, tr(fmt.Sprintf("Gerado em: %s", time.Now().Format("02/01/2006 15:04"))), "", 1, "L", false, 0, "")
	doc.Ln(2)

	sectionTitle(doc, tr, "1. Identificação")
	kv(doc, tr, "Laudo", laudo.Titulo)
	kv(doc, tr, "Caso", caso.Titulo)
	kv(doc, tr, "Responsável", caso.Responsavel)
	kv(doc, tr, "Status do caso", caso.Status)
	kv(doc, tr, "Data de abertura", caso.DataAbertura)
	kv(doc, tr, "Local", caso.Local)
	if laudo.EvidenciaID != "" {
		kv(doc, tr, "Evidência", laudo.EvidenciaID)
	}
	doc.Ln(2)

	sectionTitle(doc, tr, "2. Descrição")
	doc.SetFont(fontFamily, "", 10)
	doc.SetTextColor(20, 20, 20)
	texto := strings.TrimSpace(laudo.Texto)
	if texto == "" {
		texto = "(sem conteúdo)"
	}
	doc.MultiCell(0, 5.2, tr(texto), "", "L", false)
	doc.Ln(4)

	sectionTitle(doc, tr, "3. Assinatura")
	if laudo.Assinado {
		kv(doc, tr, "Assinado por", laudo.AssinadoPor)
		if laudo.AssinadoEm > 0 {
			kv(doc, tr, "Assinado em", laudo.AssinadoEm.Time().Format("02/01/2006 15:04"))
		}
		doc.SetFont(fontFamily, "I", 8)
		doc.SetTextColor(90, 90, 90)
		doc.MultiCell(0, 4.5, tr("Token de assinatura: "+laudo.SignatureToken), "", "L", false)
	} else {
		doc.SetFont(fontFamily, "B", 11)
		doc.SetTextColor(160, 30, 30)
		doc.CellFormat(0, 6, tr("NÃO ASSINADO"), "", 1, "L", false, 0, "")
		doc.SetFont(fontFamily, "", 9)
		doc.SetTextColor(90, 90, 90)
		doc.MultiCell(0, 4.5, tr("Este documento foi gerado antes da assinatura do laudo e não possui validade pericial."), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func sectionTitle(doc *gofpdf.Fpdf, tr func(string) string, title string) {
	doc.SetFont(fontFamily, "B", 12)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(0, 7, tr(title), "", 1, "L", false, 0, "")
	doc.SetDrawColor(200, 200, 200)
	doc.Line(doc.GetX(), doc.GetY(), 200, doc.GetY())
	doc.Ln(2)
}

func kv(doc *gofpdf.Fpdf, tr func(string) string, key, value string) {
	if strings.TrimSpace(value) == "" {
		value = "-"
	}
	doc.SetFont(fontFamily, "B", 10)
	doc.SetTextColor(30, 30, 30)
	doc.CellFormat(42, 5.2, tr(key+":"), "", 0, "L", false, 0, "")
	doc.SetFont(fontFamily, "", 10)
	doc.SetTextColor(20, 20, 20)
	doc.MultiCell(0, 5.2, tr(value), "", "L", false)
}
