package handler

// RegisterProfileRequest is the payload for POST /profiles. Bio travels as
// base64 in JSON since it is a binary blob, not text.
type RegisterProfileRequest struct {
	Name            string   `json:"name"`
	Bio             []byte   `json:"bio"`
	ExperienceYears int      `json:"experience_years"`
	Certifications  []string `json:"certifications"`
	IsAvailable     bool     `json:"is_available"`
}

// AddCertificationRequest is the payload for POST /profiles/me/certifications.
type AddCertificationRequest struct {
	Certification string `json:"certification"`
}

// UpdateReputationRequest is the payload for POST /profiles/{identity}/reputation.
// ScoreAdd and ReviewAdd are signed in the wire shape so out-of-range values
// are rejected explicitly instead of wrapping.
type UpdateReputationRequest struct {
	ScoreAdd  int64 `json:"score_add"`
	ReviewAdd int64 `json:"review_add"`
}

// TransferAdminRequest is the payload for POST /platform/admin.
type TransferAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

// SetReputationUpdaterRequest is the payload for PUT /platform/reputation-updater.
// An empty updater clears the delegate.
type SetReputationUpdaterRequest struct {
	Updater string `json:"updater"`
}

// SetPausedRequest is the payload for PUT /platform/pause.
type SetPausedRequest struct {
	Paused bool `json:"paused"`
}
