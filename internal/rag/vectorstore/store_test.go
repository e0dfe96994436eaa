package vectorstore

import (
	"testing"

	"policyrag/internal/domain/policymodel"

	"github.com/stretchr/testify/require"
)

func TestPointIDDeterministic(t *testing.T) {
	a := PointID("access-policy.pdf", 3)
	b := PointID("access-policy.pdf", 3)
	require.Equal(t, a, b)
	require.NotEqual(t, a, PointID("access-policy.pdf", 4))
	require.NotEqual(t, a, PointID("other.pdf", 3))
}

func TestPointIDIsUUID(t *testing.T) {
	id := PointID("doc", 0)
	require.Len(t, id, 36)
	require.Equal(t, byte('5'), id[14], "point ids are name-based v5 UUIDs")
}

func TestRecordFor(t *testing.T) {
	doc := policymodel.Document{
		Id:   "access-policy.pdf",
		Name: "Access Policy",
		Meta: policymodel.PolicyMeta{PolicyType: "access", Version: "2.1", Jurisdiction: "EU"},
	}
	chunk := policymodel.Chunk{
		DocumentId: "access-policy.pdf",
		Index:      2,
		Text:       "Passwords must be rotated.",
		PageFirst:  3,
		PageLast:   4,
		Roles:      []string{"employee"},
		Vector:     []float32{0.1, 0.2},
	}

	rec := RecordFor(doc, chunk)
	require.Equal(t, PointID("access-policy.pdf", 2), rec.Id)
	require.Equal(t, chunk.Vector, rec.Vector)
	require.Equal(t, "Access Policy", rec.Payload.DocumentName)
	require.Equal(t, "2.1", rec.Payload.Version)
	require.Equal(t, 3, rec.Payload.PageFirst)
	require.Equal(t, []string{"employee"}, rec.Payload.Roles)
}
