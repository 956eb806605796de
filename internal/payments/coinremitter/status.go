package coinremitter

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusExpired   Status = "expired"
)

// Status hanya bergerak maju; self-loop berarti "tidak berubah".
var validNext = map[Status]map[Status]bool{
	StatusWaiting:   {StatusWaiting: true, StatusPending: true, StatusConfirmed: true, StatusExpired: true},
	StatusPending:   {StatusPending: true, StatusConfirmed: true, StatusExpired: true},
	StatusConfirmed: {},
	StatusExpired:   {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusExpired
}
