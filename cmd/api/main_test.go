package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerMiddleware_ArchivoAusenteNoRegistra(t *testing.T) {
	mw, ok := swaggerMiddleware(filepath.Join(t.TempDir(), "no-existe.json"))

	assert.False(t, ok, "sin archivo de especificación no debe registrarse el middleware")
	assert.Nil(t, mw)
}

func TestSwaggerMiddleware_ArchivoPresenteRegistra(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swagger.json")
	spec := `{"swagger":"2.0","info":{"title":"test","version":"1.0"},"paths":{}}`
	require.NoError(t, os.WriteFile(path, []byte(spec), 0o644))

	mw, ok := swaggerMiddleware(path)

	assert.True(t, ok)
	assert.NotNil(t, mw)
}

func TestSwaggerMiddleware_EspecificacionEmbarcada(t *testing.T) {
	// El archivo servido en producción vive junto al binario; debe existir en
	// el árbol y registrarse sin panic.
	mw, ok := swaggerMiddleware("../../docs/swagger.json")

	require.True(t, ok, "docs/swagger.json debe estar versionado")
	assert.NotNil(t, mw)
}
