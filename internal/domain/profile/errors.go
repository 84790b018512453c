package profile

import "errors"

var ErrAvatarDisabled = errors.New("avatar storage is not configured")
