package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentCollaborators(t *testing.T) {
	doc := &Document{ID: 1, OwnerUID: 10}

	assert.False(t, doc.HasCollaborator(20))

	assert.True(t, doc.AddCollaborator(20))
	assert.True(t, doc.HasCollaborator(20))

	// 重复添加与所有者添加均被拒绝
	assert.False(t, doc.AddCollaborator(20))
	assert.False(t, doc.AddCollaborator(10))
	assert.Len(t, doc.Collaborators, 1)

	assert.True(t, doc.RemoveCollaborator(20))
	assert.False(t, doc.RemoveCollaborator(20))
	assert.Empty(t, doc.Collaborators)
}
