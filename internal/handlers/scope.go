package handlers

import (
	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
)

const unlinkedMessage = "No martial artist profile is linked to your account. " +
	"Ask an administrator to link your user account to your martial artist record."

// Scope captures the uniform visibility rule: staff with no linked
// martial artist see everything, a caller with a linked record sees only
// records related to it, and everyone else sees an empty result with an
// explanatory message.
type Scope struct {
	User    *models.User
	Artist  *models.MartialArtist // nil unless the account is linked
	All     bool                  // staff-wide view
	Message string
}

func ScopeFor(user *models.User) Scope {
	sc := Scope{User: user}
	if user == nil {
		sc.Message = unlinkedMessage
		return sc
	}
	var ma models.MartialArtist
	err := db.Conn().Where("user_id = ?", user.ID).First(&ma).Error
	switch {
	case err == nil:
		sc.Artist = &ma
		sc.Message = "Your records (" + ma.DisplayName() + ")."
	case user.IsStaff:
		sc.All = true
		sc.Message = "All records (staff view)."
	default:
		sc.Message = unlinkedMessage
	}
	return sc
}
