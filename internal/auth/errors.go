package auth

import "errors"

var ErrEmailInUse = errors.New("email address is already in use")
