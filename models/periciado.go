package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Periciado holds the structure for the periciados collection in mongo.
// A periciado (victim / examined person) is owned by exactly one caso via
// CaseID, never by container reference.
type Periciado struct {
	ID             string             `json:"_id" bson:"_id"`
	CaseID         string             `json:"casoID" bson:"casoID"`
	Nome           string             `json:"nome" bson:"nome"`
	DataNascimento string             `json:"dataNascimento" bson:"dataNascimento"`
	Sexo           string             `json:"sexo" bson:"sexo"`
	Etnia          string             `json:"etnia" bson:"etnia"`
	Endereco       string             `json:"endereco" bson:"endereco"`
	CPF            string             `json:"cpf" bson:"cpf"`
	Odontograma    []OdontogramaItem  `json:"odontograma" bson:"odontograma"`
	CreatedAt      primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt      primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// NormalizeCPF strips everything but digits from a CPF value. The result is
// only submittable when it is exactly 11 digits long.
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateCPF normalizes and validates a CPF, returning the normalized value.
// Validation happens before any storage or network call.
func ValidateCPF(cpf string) (string, error) {
	n := NormalizeCPF(cpf)
	if len(n) != 11 {
		return "", fmt.Errorf("cpf must contain exactly 11 digits, got %d", len(n))
	}
	return n, nil
}

// Validate checks the required periciado fields and normalizes the CPF.
func (p *Periciado) Validate() error {
	if strings.TrimSpace(p.Nome) == "" {
		return fmt.Errorf("nome is required")
	}
	n, err := ValidateCPF(p.CPF)
	if err != nil {
		return err
	}
	p.CPF = n
	return nil
}
