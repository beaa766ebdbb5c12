package validation

import "strings"

// PostForm is the create/edit form. Content is trimmed before validation so
// whitespace-only submissions count as empty.
type PostForm struct {
	Content string `validate:"required"`
}

var postMessages = map[string]string{
	"Content.required": "This field is required.",
}

func NewPostForm(content string) PostForm {
	return PostForm{Content: strings.TrimSpace(content)}
}

func (f PostForm) Validate() FieldErrors {
	return Struct(f, postMessages)
}

type SignupForm struct {
	Username  string `validate:"required,max=150,username"`
	Password1 string `validate:"required,min=8,notnumeric,nefield=Username"`
	Password2 string `validate:"required,eqfield=Password1"`
}

var signupMessages = map[string]string{
	"Username.required":    "This field is required.",
	"Username.max":         "Ensure this value has at most 150 characters.",
	"Username.username":    "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.",
	"Password1.required":   "This field is required.",
	"Password1.min":        "This password is too short. It must contain at least 8 characters.",
	"Password1.notnumeric": "This password is entirely numeric.",
	"Password1.nefield":    "The password is too similar to the username.",
	"Password2.required":   "This field is required.",
	"Password2.eqfield":    "The two password fields didn't match.",
}

func NewSignupForm(username, password1, password2 string) SignupForm {
	return SignupForm{
		Username:  strings.TrimSpace(username),
		Password1: password1,
		Password2: password2,
	}
}

func (f SignupForm) Validate() FieldErrors {
	return Struct(f, signupMessages)
}

type LoginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

var loginMessages = map[string]string{
	"Username.required": "This field is required.",
	"Password.required": "This field is required.",
}

func (f LoginForm) Validate() FieldErrors {
	return Struct(f, loginMessages)
}
