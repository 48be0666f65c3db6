package service

import (
	"testing"

	"github.com/haierkeys/collab-doc-service/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestAccessPolicy(t *testing.T) {
	doc := &domain.Document{
		ID:            1,
		OwnerUID:      10,
		Collaborators: []int64{20},
	}

	tests := []struct {
		name      string
		uid       int64
		canRead   bool
		canWrite  bool
		canDelete bool
		canManage bool
	}{
		{"owner", 10, true, true, true, true},
		{"collaborator", 20, true, true, false, false},
		{"stranger", 30, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.canRead, CanRead(doc, tt.uid))
			assert.Equal(t, tt.canWrite, CanWrite(doc, tt.uid))
			assert.Equal(t, tt.canDelete, CanDelete(doc, tt.uid))
			assert.Equal(t, tt.canManage, CanManageCollaborators(doc, tt.uid))
		})
	}
}

func TestAccessPolicyNilDocument(t *testing.T) {
	assert.False(t, CanRead(nil, 10))
	assert.False(t, CanWrite(nil, 10))
	assert.False(t, CanDelete(nil, 10))
	assert.False(t, CanManageCollaborators(nil, 10))
}
