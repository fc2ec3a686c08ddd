package handlers

import (
	"net/http"
	"strings"
)

type Flash struct {
	Kind string // "ok" or "error"
	Text string
}

var okText = map[string]string{
	"saved":             "Saved.",
	"deleted":           "Deleted.",
	"created":           "Created.",
	"signed_up":         "Account created successfully!",
	"logged_out":        "You have been logged out successfully.",
	"comment_pending":   "Your comment was submitted and is awaiting moderation.",
	"comments_approved": "Selected comments approved.",
	"linked":            "User account linked.",
	"unlinked":          "User account unlinked.",
	"image_uploaded":    "Image uploaded.",
}

var errText = map[string]string{
	"missing":        "Required fields are missing.",
	"invalid_email":  "Invalid email address.",
	"bad_login":      "Username and password did not match.",
	"in_use":         "That value is already in use.",
	"has_ranks":      "Cannot delete: ranks have been awarded for this rank type.",
	"user_not_found": "No user account with that username.",
	"user_linked":    "That user account is already linked to another martial artist.",
	"bad_upload":     "Could not read the uploaded image.",
}

// MakeFlash turns ?ok= / ?error= query keys into a banner message. Unknown
// keys fall through as literal text so redirects can carry ad-hoc messages.
func MakeFlash(r *http.Request) *Flash {
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("error")); raw != "" {
		if t, ok := errText[strings.ToLower(raw)]; ok {
			return &Flash{Kind: "error", Text: t}
		}
		return &Flash{Kind: "error", Text: raw}
	}
	if raw := strings.TrimSpace(q.Get("ok")); raw != "" {
		if t, ok := okText[strings.ToLower(raw)]; ok {
			return &Flash{Kind: "ok", Text: t}
		}
		return &Flash{Kind: "ok", Text: raw}
	}
	return nil
}
