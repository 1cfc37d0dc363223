package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCPF(t *testing.T) {
	assert.Equal(t, "12345678901", NormalizeCPF("123.456.789-01"))
	assert.Equal(t, "12345678901", NormalizeCPF("12345678901"))
	assert.Equal(t, "123", NormalizeCPF("1a2b3c"))
	assert.Equal(t, "", NormalizeCPF("abc"))
}

func TestValidateCPF(t *testing.T) {
	n, err := ValidateCPF("123.456.789-01")
	assert.NoError(t, err)
	assert.Equal(t, "12345678901", n)

	_, err = ValidateCPF("123456789")
	assert.Error(t, err)

	_, err = ValidateCPF("123456789012")
	assert.Error(t, err)

	_, err = ValidateCPF("")
	assert.Error(t, err)
}

func TestPericiadoValidate(t *testing.T) {
	p := Periciado{Nome: "Fulano de Tal", CPF: "123.456.789-01"}
	assert.NoError(t, p.Validate())
	assert.Equal(t, "12345678901", p.CPF)

	p = Periciado{CPF: "12345678901"}
	assert.Error(t, p.Validate())

	p = Periciado{Nome: "Fulano", CPF: "123"}
	assert.Error(t, p.Validate())
}
