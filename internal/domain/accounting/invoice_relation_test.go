package accounting

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmops/backend/internal/domain/shared"
)

func TestNewInvoiceRelation(t *testing.T) {
	sourceID := uuid.New()
	targetID := uuid.New()

	t.Run("creates directed relation", func(t *testing.T) {
		rel, err := NewInvoiceRelation(sourceID, targetID, RelationCorrection)

		require.NoError(t, err)
		assert.Equal(t, sourceID, rel.SourceID)
		assert.Equal(t, targetID, rel.TargetID)
		assert.Equal(t, RelationCorrection, rel.Type)
	})

	t.Run("rejects self relation", func(t *testing.T) {
		_, err := NewInvoiceRelation(sourceID, sourceID, RelationDuplicate)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "SELF_RELATION", domainErr.Code)
	})

	t.Run("rejects nil invoice", func(t *testing.T) {
		_, err := NewInvoiceRelation(uuid.Nil, targetID, RelationRelated)
		assert.Error(t, err)
	})

	t.Run("rejects unknown relation type", func(t *testing.T) {
		_, err := NewInvoiceRelation(sourceID, targetID, RelationType("FRIENDS"))
		assert.Error(t, err)
	})
}
