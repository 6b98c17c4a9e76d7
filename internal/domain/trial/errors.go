package trial

import "errors"

// ErrDecode indicates the stored file is not a readable image.
var ErrDecode = errors.New("image decode failed")
