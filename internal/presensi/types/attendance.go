package types

// CheckInRequest is the JSON form of a check-in. Multipart check-ins carry
// the same fields as form values next to the "image" file part.
type CheckInRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// SessionSummary is the externally visible projection of a session.
// Timestamps are formatted in the reference zone; CheckOut is null while the
// session is open.
type SessionSummary struct {
	ID         int64    `json:"id"`
	UserID     int64    `json:"userId"`
	Name       string   `json:"name,omitempty"`
	CheckIn    string   `json:"checkIn"`
	CheckOut   *string  `json:"checkOut"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	ProofPhoto string   `json:"proofPhoto,omitempty"`
}

type SessionResponse struct {
	Message string         `json:"message"`
	Data    SessionSummary `json:"data"`
}

// EditSessionRequest overwrites the supplied timestamps (ISO-8601).
type EditSessionRequest struct {
	CheckIn  *string `json:"checkIn" validate:"omitempty,iso8601"`
	CheckOut *string `json:"checkOut" validate:"omitempty,iso8601"`
}
