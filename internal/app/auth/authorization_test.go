package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
)

func TestCanModify(t *testing.T) {
	owner := &models.User{ID: 1, Role: models.RoleUser}
	other := &models.User{ID: 2, Role: models.RoleUser}
	admin := &models.User{ID: 3, Role: models.RoleAdmin}
	announcement := &models.Announcement{ID: 10, CreatedBy: owner.ID}

	tests := []struct {
		name string
		user *models.User
		want bool
	}{
		{name: "owner", user: owner, want: true},
		{name: "admin", user: admin, want: true},
		{name: "other user", user: other, want: false},
		{name: "anonymous", user: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModify(tt.user, announcement))
		})
	}
}

func TestRequireModify(t *testing.T) {
	announcement := &models.Announcement{CreatedBy: 1}

	err := RequireModify(&models.User{ID: 2, Role: models.RoleUser}, announcement, "")

	assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))
	assert.Equal(t, "You do not have permission to modify this resource", err.Error())
	assert.NoError(t, RequireModify(&models.User{ID: 1}, announcement, "nope"))
}
