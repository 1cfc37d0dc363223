package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Evidence type values.
const (
	EvidenceTypeImage    = "imagem"
	EvidenceTypeDocument = "documento"
)

// Evidencia holds the structure for the evidencias collection in mongo.
type Evidencia struct {
	ID          string             `json:"_id" bson:"_id"`
	CaseID      string             `json:"casoID" bson:"casoID"`
	Titulo      string             `json:"titulo" bson:"titulo"`
	Descricao   string             `json:"descricao" bson:"descricao"`
	Tipo        string             `json:"tipo" bson:"tipo"`
	ColetadoPor string             `json:"coletadoPor" bson:"coletadoPor"`
	DataColeta  string             `json:"dataColeta" bson:"dataColeta"`
	Local       string             `json:"local" bson:"local"`
	ImagemURL   string             `json:"imagemURL" bson:"imagemURL"`
	CriadoEm    primitive.DateTime `json:"criadoEm" bson:"criadoEm"`
}

// Validate checks the required evidencia fields. All of titulo, descricao,
// tipo, coletadoPor, dataColeta and local must be present before persisting.
func (e *Evidencia) Validate() error {
	type req struct {
		name, value string
	}
	for _, f := range []req{
		{"titulo", e.Titulo},
		{"descricao", e.Descricao},
		{"tipo", e.Tipo},
		{"coletadoPor", e.ColetadoPor},
		{"dataColeta", e.DataColeta},
		{"local", e.Local},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}
	if e.Tipo != EvidenceTypeImage && e.Tipo != EvidenceTypeDocument {
		return fmt.Errorf("tipo must be %q or %q", EvidenceTypeImage, EvidenceTypeDocument)
	}
	return nil
}
