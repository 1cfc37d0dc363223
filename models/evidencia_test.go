package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validEvidencia() Evidencia {
	return Evidencia{
		Titulo:      "Radiografia panorâmica",
		Descricao:   "Radiografia da arcada superior",
		Tipo:        EvidenceTypeImage,
		ColetadoPor: "Perito A",
		DataColeta:  "2025-03-10",
		Local:       "IML Central",
	}
}

func TestEvidenciaValidate(t *testing.T) {
	e := validEvidencia()
	assert.NoError(t, e.Validate())
}

func TestEvidenciaValidateMissingTitulo(t *testing.T) {
	e := validEvidencia()
	e.Titulo = " "
	err := e.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "titulo")
}

func TestEvidenciaValidateMissingFields(t *testing.T) {
	for _, mutate := range []func(*Evidencia){
		func(e *Evidencia) { e.Descricao = "" },
		func(e *Evidencia) { e.Tipo = "" },
		func(e *Evidencia) { e.ColetadoPor = "" },
		func(e *Evidencia) { e.DataColeta = "" },
		func(e *Evidencia) { e.Local = "" },
	} {
		e := validEvidencia()
		mutate(&e)
		assert.Error(t, e.Validate())
	}
}

func TestEvidenciaValidateUnknownTipo(t *testing.T) {
	e := validEvidencia()
	e.Tipo = "video"
	assert.Error(t, e.Validate())
}
