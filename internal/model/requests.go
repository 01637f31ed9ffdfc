package model

// LoginRequest is the payload for authenticating a session.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session token and the sanitized user.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ReviewInput is an optional review attached when returning a book.
type ReviewInput struct {
	Rating    int    `json:"rating"`
	Content   string `json:"content"`
	Recommend bool   `json:"recommend"`
}

// ReturnRequest is the payload for returning a borrowed book.
type ReturnRequest struct {
	Location string       `json:"location"`
	Review   *ReviewInput `json:"review,omitempty"`
}

// ToggleResponse reports the new state of a reserve or favorite toggle.
type ToggleResponse struct {
	Active bool `json:"active"`
}

// CreateAnnouncementRequest is the payload for posting an announcement.
type CreateAnnouncementRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Pinned  bool   `json:"pinned"`
}

// CreateInquiryRequest is the payload for opening an inquiry.
type CreateInquiryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AnswerInquiryRequest is the payload for answering an inquiry.
type AnswerInquiryRequest struct {
	Answer string `json:"answer"`
}

// GoalRequest is the payload for setting a yearly reading goal.
type GoalRequest struct {
	Year    int `json:"year"`
	Target  int `json:"target"`
	Current int `json:"current"`
}

// Staff reports whether the role carries admin capabilities.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleSysAdmin
}
