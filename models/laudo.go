package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Laudo holds the structure for the laudos collection in mongo. A laudo is a
// signable report tied to a caso and optionally to one of its evidencias.
//
// Assinado is a one-way flag: once true it is never transitioned back through
// any exposed operation. SignatureToken carries the HS256 token generated at
// signing time, embedding the signer and a digest of the body text.
type Laudo struct {
	ID             string             `json:"_id" bson:"_id"`
	CaseID         string             `json:"casoID" bson:"casoID"`
	EvidenciaID    string             `json:"evidenciaID,omitempty" bson:"evidenciaID,omitempty"`
	Titulo         string             `json:"titulo" bson:"titulo"`
	Texto          string             `json:"texto" bson:"texto"`
	AssinadoPor    string             `json:"assinadoPor" bson:"assinadoPor"`
	Assinado       bool               `json:"assinado" bson:"assinado"`
	SignatureToken string             `json:"signatureToken,omitempty" bson:"signatureToken,omitempty"`
	PDFDisponivel  bool               `json:"pdfDisponivel" bson:"pdfDisponivel"`
	CriadoEm       primitive.DateTime `json:"criadoEm" bson:"criadoEm"`
	AssinadoEm     primitive.DateTime `json:"assinadoEm,omitempty" bson:"assinadoEm,omitempty"`
}
