package service

import "github.com/Rengoky/Base-for-films/internal/httpapi/models"

// CanModify reports whether the actor may update or delete a resource owned
// by ownerID. Owners act on their own records; moderators and admins act on
// anyone's.
func CanModify(actorID, actorRole, ownerID string) bool {
	if actorID == ownerID {
		return true
	}
	return actorRole == models.RoleModerator || actorRole == models.RoleAdmin
}
