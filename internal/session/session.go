package session

// User is the minimal identity kept alongside the tokens.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Session holds the tokens and identity for the single signed-in account.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         User
}

// State is the OTP sub-flow state.
type State int

const (
	// StateIdle: no OTP flow in progress.
	StateIdle State = iota
	// StateOTPPending: signup succeeded, email verification outstanding.
	// Only VerifyOTP and ResendOTP are legal here.
	StateOTPPending
	// StateVerified: the email was verified; the caller routes to login.
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOTPPending:
		return "otp_pending"
	case StateVerified:
		return "verified"
	default:
		return "unknown"
	}
}
