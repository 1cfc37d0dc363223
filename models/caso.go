package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Case status values as stored in mongo and in the local case list.
const (
	CaseStatusInProgress = "em_andamento"
	CaseStatusConcluded  = "concluido"
	CaseStatusArchived   = "arquivado"
)

// Caso holds the structure for the caso collection in mongo. It is the root
// aggregate: every periciado, evidencia and perito belongs to exactly one caso
// by its identifier.
type Caso struct {
	ID           string             `json:"_id" bson:"_id"`
	Titulo       string             `json:"titulo" bson:"titulo"`
	Descricao    string             `json:"descricao" bson:"descricao"`
	Responsavel  string             `json:"responsavel" bson:"responsavel"`
	Status       string             `json:"status" bson:"status"`
	DataAbertura string             `json:"dataAbertura" bson:"dataAbertura"`
	Local        string             `json:"local" bson:"local"`
	Sexo         string             `json:"sexo" bson:"sexo"`
	Version      int64              `json:"version" bson:"version"`
	Vitimas      []Periciado        `json:"vitimas" bson:"vitimas"`
	Evidencias   []Evidencia        `json:"evidencias" bson:"evidencias"`
	Peritos      []Perito           `json:"peritos" bson:"peritos"`
	CreatedAt    primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt    primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// Normalize replaces absent nested collections with empty slices. Stored
// records can predate these fields, and the frontend requires the data
// elements to exist, so every load path runs this before handing a Caso out.
func (c *Caso) Normalize() {
	if c.Vitimas == nil {
		c.Vitimas = []Periciado{}
	}
	if c.Evidencias == nil {
		c.Evidencias = []Evidencia{}
	}
	if c.Peritos == nil {
		c.Peritos = []Perito{}
	}
}

// ValidCaseStatus reports whether s is one of the known status values.
func ValidCaseStatus(s string) bool {
	switch s {
	case CaseStatusInProgress, CaseStatusConcluded, CaseStatusArchived:
		return true
	}
	return false
}
