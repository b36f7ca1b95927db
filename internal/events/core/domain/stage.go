package domain

// Stage is a state of one relay request. Stages only move forward; any
// failure jumps straight to StageFailed.
type Stage int

const (
	StageReceived Stage = iota
	StageExtracting
	StageNormalizing
	StageHashing
	StageValidating
	StageBuildingPayload
	StageForwarding
	StageCompleted
	StageFailed
)

var stageNames = [...]string{
	StageReceived:        "received",
	StageExtracting:      "extracting",
	StageNormalizing:     "normalizing",
	StageHashing:         "hashing",
	StageValidating:      "validating",
	StageBuildingPayload: "building_payload",
	StageForwarding:      "forwarding",
	StageCompleted:       "completed",
	StageFailed:          "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Terminal reports whether no further transition is allowed.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}
