package models

type User struct {
	Sub         string `json:"sub"`
	Iss         string `json:"iss"`
	Username    string `json:"name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// SignerName is the identity written onto a signed certificate.
func (u *User) SignerName() string {
	if u == nil {
		return ""
	}
	for _, v := range []string{u.DisplayName, u.Username, u.Email, u.Sub} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (u *User) MatchesUser(iss, sub string) bool {
	return u != nil && u.Iss == iss && u.Sub == sub
}
