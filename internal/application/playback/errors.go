package playback

import "errors"

// ErrDesync is logged when a frame did not run exactly one simulation step
// during a session. The session is stopped rather than recorded or played
// out of step.
var ErrDesync = errors.New("simulation desync")
