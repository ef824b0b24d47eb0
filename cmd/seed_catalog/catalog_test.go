package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadCatalog_Latin1(t *testing.T) {
	src := "codigo;nombre;barcode;tarifa;serial\n" +
		"T-01;Tóner negro;7701234;450,50;N\n" +
		"C-01;Copiadora A3;;1000;S\n" +
		";sin código;;;\n"
	raw, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(src))
	require.NoError(t, err)

	rows, err := readCatalog(bytes.NewReader(raw), true)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Tóner negro", rows[0].name)
	require.NotNil(t, rows[0].rate)
	assert.Equal(t, "450.50", rows[0].rate.StringFixed(2))
	assert.False(t, rows[0].requiresSerial)
	assert.True(t, rows[1].requiresSerial)
}

func TestReadCatalog_Errores(t *testing.T) {
	_, err := readCatalog(strings.NewReader("codigo;nombre\n"), false)
	assert.Error(t, err)

	_, err = readCatalog(strings.NewReader("codigo;nombre;barcode;tarifa;serial\nA;x;;abc;N\n"), false)
	assert.ErrorContains(t, err, "tarifa")

	_, err = readCatalog(strings.NewReader("codigo;nombre;barcode;tarifa;serial\nA;x;;;N\nA;y;;;N\n"), false)
	assert.ErrorContains(t, err, "repetido")
}

func TestWriteSeed(t *testing.T) {
	rows, err := readCatalog(strings.NewReader(
		"codigo;nombre;barcode;tarifa;serial\nT-01;O'Brien toner;77;;N\n"), false)
	require.NoError(t, err)

	var a, b bytes.Buffer
	require.NoError(t, writeSeed(&a, rows))
	require.NoError(t, writeSeed(&b, rows))

	out := a.String()
	assert.Equal(t, out, b.String(), "mismos códigos, mismos IDs")
	assert.Contains(t, out, "'O''Brien toner'")
	assert.Contains(t, out, "'77', NULL, false")
}
