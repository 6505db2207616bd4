package workspace

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	ownerID := uuid.New()

	t.Run("creates active project", func(t *testing.T) {
		project, err := NewProject(ownerID, "my-app", "A web app")

		require.NoError(t, err)
		assert.Equal(t, ownerID, project.OwnerID)
		assert.Equal(t, "my-app", project.Name)
		assert.Equal(t, ProjectStatusActive, project.Status)
		assert.True(t, project.IsWritable())
	})

	t.Run("trims name and description", func(t *testing.T) {
		project, err := NewProject(ownerID, "  my-app  ", "  desc  ")

		require.NoError(t, err)
		assert.Equal(t, "my-app", project.Name)
		assert.Equal(t, "desc", project.Description)
	})

	t.Run("fails with nil owner", func(t *testing.T) {
		_, err := NewProject(uuid.Nil, "my-app", "")
		assert.Error(t, err)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProject(ownerID, "   ", "")
		assert.Error(t, err)
	})

	t.Run("fails with oversized name", func(t *testing.T) {
		_, err := NewProject(ownerID, strings.Repeat("x", 101), "")
		assert.Error(t, err)
	})
}

func TestProjectArchive(t *testing.T) {
	project, err := NewProject(uuid.New(), "my-app", "")
	require.NoError(t, err)

	require.NoError(t, project.Archive())
	assert.Equal(t, ProjectStatusArchived, project.Status)
	assert.False(t, project.IsWritable())
	assert.Error(t, project.Archive())

	require.NoError(t, project.Unarchive())
	assert.Equal(t, ProjectStatusActive, project.Status)
	assert.True(t, project.IsWritable())
	assert.Error(t, project.Unarchive())
}

func TestProjectSandboxDir(t *testing.T) {
	project, err := NewProject(uuid.New(), "my-app", "")
	require.NoError(t, err)

	assert.Equal(t, project.ID.String(), project.SandboxDir())
	assert.NotContains(t, project.SandboxDir(), "/")
}

func TestNewCollaboration(t *testing.T) {
	projectID := uuid.New()
	userID := uuid.New()

	t.Run("creates editor membership", func(t *testing.T) {
		collab, err := NewCollaboration(projectID, userID, RoleEditor)

		require.NoError(t, err)
		assert.Equal(t, RoleEditor, collab.Role)
		assert.True(t, collab.CanWrite())
		assert.False(t, collab.CanManageMembers())
	})

	t.Run("creates viewer membership", func(t *testing.T) {
		collab, err := NewCollaboration(projectID, userID, RoleViewer)

		require.NoError(t, err)
		assert.False(t, collab.CanWrite())
	})

	t.Run("rejects direct owner grant", func(t *testing.T) {
		_, err := NewCollaboration(projectID, userID, RoleOwner)
		assert.Error(t, err)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewCollaboration(projectID, userID, CollaborationRole("admin"))
		assert.Error(t, err)
	})

	t.Run("owner membership has full permissions", func(t *testing.T) {
		collab := NewOwnerCollaboration(projectID, userID)

		assert.Equal(t, RoleOwner, collab.Role)
		assert.True(t, collab.CanWrite())
		assert.True(t, collab.CanManageMembers())
	})
}

func TestCollaborationChangeRole(t *testing.T) {
	projectID := uuid.New()
	userID := uuid.New()

	t.Run("editor to viewer", func(t *testing.T) {
		collab, err := NewCollaboration(projectID, userID, RoleEditor)
		require.NoError(t, err)

		require.NoError(t, collab.ChangeRole(RoleViewer))
		assert.Equal(t, RoleViewer, collab.Role)
	})

	t.Run("owner cannot be demoted", func(t *testing.T) {
		collab := NewOwnerCollaboration(projectID, userID)

		assert.Error(t, collab.ChangeRole(RoleEditor))
		assert.Equal(t, RoleOwner, collab.Role)
	})

	t.Run("cannot promote to owner", func(t *testing.T) {
		collab, err := NewCollaboration(projectID, userID, RoleEditor)
		require.NoError(t, err)

		assert.Error(t, collab.ChangeRole(RoleOwner))
	})
}
