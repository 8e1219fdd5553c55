package adminserver

// StatusRequest carries no fields; Status always reports the full
// picture. It exists as a named type because grpc's unary handler
// signature requires a request message even for parameterless calls.
type StatusRequest struct{}

// StatusResponse mirrors the numbers an operator watching a real MDS's
// journal would want at a glance: how far the trim tail has advanced,
// how far the write head has advanced, and whether the log is capped.
type StatusResponse struct {
	TrimPosition int64 `json:"trim_position"`
	TailPosition int64 `json:"tail_position"`
	Capped       bool  `json:"capped"`
}

// ForceExpireRequest asks the trimmer to run one extra step
// immediately rather than waiting for its next scheduled tick.
type ForceExpireRequest struct {
	MaxEntries int `json:"max_entries"`
}

// ForceExpireResponse reports how many entries the forced step
// actually managed to trim.
type ForceExpireResponse struct {
	Trimmed int `json:"trimmed"`
}
