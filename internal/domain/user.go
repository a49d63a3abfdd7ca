package domain

import "time"

// User representa la cuenta persistida de un usuario.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Firstname     string    `json:"firstname"`
	Lastname      string    `json:"lastname"`
	SignupDate    time.Time `json:"signupdate"`
	LastLoginDate time.Time `json:"lastlogindate"`
}

// Profile es la proyección pública de un usuario para listados.
type Profile struct {
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Identity es la identidad resuelta que viaja dentro de una sesión.
type Identity struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}
