package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
)

func TestReadServices_ConEncabezadoYFilasVacias(t *testing.T) {
	in := "codigo,nombre,ubicacion\nSEC-GOB,Secretaría de Gobierno,Piso 2\n\nHAC,Hacienda\n"
	rows, err := readServices(strings.NewReader(in), ',', false)
	require.NoError(t, err)
	assert.Equal(t, []dto.CreateServiceRequest{
		{Code: "SEC-GOB", Name: "Secretaría de Gobierno", Location: "Piso 2"},
		{Code: "HAC", Name: "Hacienda"},
	}, rows)
}

func TestReadServices_Latin1(t *testing.T) {
	// "Educación" en ISO-8859-1: ó = 0xF3.
	in := []byte("EDU;Educaci\xf3n;Sede norte\n")
	rows, err := readServices(bytes.NewReader(in), ';', true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Educación", rows[0].Name)
	assert.Equal(t, "Sede norte", rows[0].Location)
}

func TestReadServices_FilaIncompleta(t *testing.T) {
	_, err := readServices(strings.NewReader("SOLO\n"), ',', false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = readServices(strings.NewReader("X, \n"), ',', false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
