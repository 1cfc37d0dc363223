package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontoforense/odonto-legal-api/models"
	"github.com/odontoforense/odonto-legal-api/pdf"
)

func testCaso() *models.Caso {
	return &models.Caso{
		ID:          "caso-1",
		Titulo:      "Caso Teste",
		Status:      models.CaseStatusInProgress,
		Responsavel: "Perito A",
		Local:       "Local X",
	}
}

func TestRenderLaudo_Unsigned(t *testing.T) {
	laudo := &models.Laudo{
		ID:     "laudo-1",
		CaseID: "caso-1",
		Titulo: "Laudo pericial",
		Texto:  "Exame odontolegal do periciado.",
	}

	doc, err := pdf.RenderLaudo(laudo, testCaso())
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
	assert.Greater(t, len(doc), 1000)
}

func TestRenderLaudo_Signed(t *testing.T) {
	laudo := &models.Laudo{
		ID:             "laudo-1",
		CaseID:         "caso-1",
		Titulo:         "Laudo pericial",
		Texto:          "Exame odontolegal do periciado.",
		Assinado:       true,
		AssinadoPor:    "Perito A",
		AssinadoEm:     primitive.NewDateTimeFromTime(time.Now()),
		SignatureToken: "eyJhbGciOiJIUzI1NiJ9.payload.sig",
	}

	doc, err := pdf.RenderLaudo(laudo, testCaso())
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestRenderLaudo_EmptyBody(t *testing.T) {
	laudo := &models.Laudo{ID: "laudo-1", CaseID: "caso-1", Titulo: "Laudo pericial"}

	doc, err := pdf.RenderLaudo(laudo, testCaso())
	assert.NoError(t, err)
	assert.NotEmpty(t, doc)
}

func TestRenderLaudo_NilInputs(t *testing.T) {
	_, err := pdf.RenderLaudo(nil, testCaso())
	assert.Error(t, err)

	_, err = pdf.RenderLaudo(&models.Laudo{ID: "laudo-1"}, nil)
	assert.Error(t, err)
}
