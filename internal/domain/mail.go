package domain

const (
	MailTypeCreateUser         = "create_user"
	MailTypeResetPassword      = "reset_password"
	MailTypeChangeEmail        = "change_email"
	MailTypeAdminResetPassword = "admin_reset_password"
	MailTypePostulationStatus  = "postulation_status"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ChangeEmailMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type AdminResetPasswordMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type PostulationStatusMailData struct {
	FullName  string            `json:"fullName"`
	WorkName  string            `json:"workName"`
	Status    PostulationStatus `json:"status"`
	StartDate string            `json:"startDate"`
	EndDate   string            `json:"endDate"`
}
