package user

const SliceName = "user"

const (
	ActionLoginWithEmail  = "user/loginWithEmail"
	ActionLoginWithGoogle = "user/loginWithGoogle"
	ActionLoginWithToken  = "user/loginWithToken"
	ActionRegisterUser    = "user/registerUser"
	ActionClearErrors     = "user/clearErrors"
)

// Navigation targets
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Toast and fallback messages
const (
	MsgRegistered     = "Registration complete!"
	MsgRegisterFailed = "Registration failed"
	MsgLoginFailed    = "Login failed"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	Token string `json:"token"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}
