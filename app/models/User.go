package models

type User struct {
	Id       string `pg:",pk"`
	Email    string `pg:",unique"`
	Password string `json:"-"`
}

type UserDto struct {
	Email string `json:"email"`
	Pass  string `json:"pass"`
}
