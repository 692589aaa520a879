package user

type UserOption func(*User)

func WithName(name string) UserOption {
	return func(u *User) {
		u.Name = name
	}
}

func WithMobile(mobile string) UserOption {
	return func(u *User) {
		u.Mobile = mobile
	}
}

func WithEmail(email string) UserOption {
	return func(u *User) {
		u.Email = NormalizeEmail(email)
	}
}
