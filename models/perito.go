package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Perito holds the structure for the peritos collection in mongo. A perito is
// a forensic expert assigned to a caso.
type Perito struct {
	ID            string             `json:"_id" bson:"_id"`
	CaseID        string             `json:"casoID" bson:"casoID"`
	Nome          string             `json:"nome" bson:"nome"`
	Especialidade string             `json:"especialidade" bson:"especialidade"`
	Registro      string             `json:"registro" bson:"registro"`
	DataInicio    string             `json:"dataInicio" bson:"dataInicio"`
	DataFim       string             `json:"dataFim" bson:"dataFim"`
	CreatedAt     primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
