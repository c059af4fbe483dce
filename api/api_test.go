package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)

	pathItem := doc.Paths.Find("/api/rental")
	require.NotNil(t, pathItem)
	require.NotNil(t, pathItem.Post)
	assert.Equal(t, "submitRental", pathItem.Post.OperationID)

	schema := doc.Components.Schemas["RentalRequest"].Value
	assert.ElementsMatch(t, []string{"name", "email"}, schema.Required)
}
